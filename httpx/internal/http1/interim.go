package http1

import (
	"bufio"
	"fmt"
	"strings"
)

// WriteContinue writes an interim 100 Continue response.
func WriteContinue(bw *bufio.Writer) error {
	_, err := fmt.Fprint(bw, "HTTP/1.1 100 Continue\r\n\r\n")
	return err
}

// ExpectsContinue reports whether the client is waiting for a 100
// Continue before it sends a body.
func (pr *ParsedRequest) ExpectsContinue() bool {
	if pr.ContentLength <= 0 {
		return false
	}
	v, ok := HeaderValue(pr.Header, "Expect")
	return ok && strings.EqualFold(v, "100-continue")
}

// SanitizeHeaderValue removes CR/LF and control chars except HTAB.
func SanitizeHeaderValue(v string) string {
	if v == "" {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
