package http1

import (
	"bufio"
	"fmt"
)

// WriteResponse writes status line, header lines, a blank line and body.
// Header lines are given without their CRLF. A non-empty body is
// followed by one extra CRLF.
func WriteResponse(bw *bufio.Writer, status int, reason string, hdr []string, body []byte) error {
	if reason == "" {
		reason = StatusText(status)
	}
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, reason); err != nil {
		return err
	}
	for _, line := range hdr {
		if _, err := bw.WriteString(SanitizeHeaderValue(line)); err != nil {
			return err
		}
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// StatusText covers the codes the server emits; anything else is "".
func StatusText(code int) string {
	switch code {
	case 100:
		return "Continue"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 404:
		return "Not Found"
	default:
		return ""
	}
}
