package httpx

import (
    "strconv"

    "dqx0.com/go/tinyhttpd/httpx/internal/http1"
)

// Response is the outcome a Handler produces for one request.
type Response struct {
    StatusCode  int
    ContentType string
    Body        []byte
    // Encoding is the Content-Encoding applied to Body, if any.
    Encoding    string
}

// StatusText returns the reason phrase for the codes this package emits
// and "" for everything else.
func StatusText(code int) string {
    return http1.StatusText(code)
}

// headerLines builds the entity headers for r. Content-Type and
// Content-Length go out together, only when there is a body or an
// encoding; Content-Encoding follows whenever one was applied.
func (r *Response) headerLines() []string {
    var lines []string
    if len(r.Body) > 0 || r.Encoding != "" {
        ct := r.ContentType
        if ct == "" {
            ct = "text/plain"
        }
        lines = append(lines,
            "Content-Type: "+ct,
            "Content-Length: "+strconv.Itoa(len(r.Body)))
    }
    if r.Encoding != "" {
        lines = append(lines, "Content-Encoding: "+r.Encoding)
    }
    return lines
}

// NotFound is the empty 404 outcome.
func NotFound() *Response {
    return &Response{StatusCode: 404}
}
