package httpx

import (
    "strings"

    "dqx0.com/go/tinyhttpd/httpx/internal/http1"
)

// Header is an ordered list of raw "Name: value" lines. Lookups split a
// line at its first colon and compare names case-insensitively.
type Header []string

// Get returns the trimmed value of the first line named key, or "".
func (h Header) Get(key string) string {
    v, _ := http1.HeaderValue(h, key)
    return v
}

// Lookup is like Get but also reports whether the header was present.
func (h Header) Lookup(key string) (string, bool) {
    return http1.HeaderValue(h, key)
}

func (h *Header) Add(key, value string) {
    *h = append(*h, key+": "+value)
}

func (h *Header) Set(key, value string) {
    h.Del(key)
    h.Add(key, value)
}

func (h *Header) Del(key string) {
    if h == nil {
        return
    }
    kept := (*h)[:0]
    for _, line := range *h {
        k, _, _ := strings.Cut(line, ":")
        if strings.EqualFold(strings.TrimSpace(k), key) {
            continue
        }
        kept = append(kept, line)
    }
    *h = kept
}
