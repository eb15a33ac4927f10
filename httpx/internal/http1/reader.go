package http1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrDecode           = errors.New("http1: request head is not valid UTF-8")
	ErrHeaderTooLarge   = errors.New("http1: request head too large")
	ErrBodyTooLarge     = errors.New("http1: request body too large")
	ErrBadContentLength = errors.New("http1: invalid Content-Length")
)

var headTerminator = []byte("\r\n\r\n")

// ParsedRequest is a minimal representation parsed from the wire.
// Header keeps the raw "Name: value" lines in arrival order.
type ParsedRequest struct {
	Method        string
	RequestURI    string
	Proto         string
	Header        []string
	ContentLength int64 // -1 when no Content-Length header was sent
	Body          []byte
}

type Reader struct {
	BR             *bufio.Reader
	MaxHeaderBytes int
	MaxBodyBytes   int64
}

// ReadRequest reads the head and then the body of one request.
func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	pr, err := r.ReadHead()
	if err != nil {
		return nil, err
	}
	if err := r.ReadBody(pr); err != nil {
		return nil, err
	}
	return pr, nil
}

// ReadHead consumes everything up to and including the first CRLF CRLF
// and parses the request line and header lines. It returns io.EOF if the
// peer closed before sending a single byte.
func (r *Reader) ReadHead() (*ParsedRequest, error) {
	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(head) {
		return nil, ErrDecode
	}
	lines := strings.Split(string(head), "\r\n")
	pr := &ParsedRequest{ContentLength: -1}
	parts := strings.Split(lines[0], " ")
	pr.Method = parts[0]
	if len(parts) > 1 {
		pr.RequestURI = parts[1]
	}
	if len(parts) > 2 {
		pr.Proto = parts[2]
	}
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		pr.Header = append(pr.Header, line)
	}
	if v, ok := HeaderValue(pr.Header, "Content-Length"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadContentLength, v)
		}
		if r.MaxBodyBytes > 0 && n > r.MaxBodyBytes {
			return nil, ErrBodyTooLarge
		}
		pr.ContentLength = n
	}
	return pr, nil
}

// ReadBody reads exactly pr.ContentLength bytes into pr.Body. Without a
// Content-Length the body is empty.
func (r *Reader) ReadBody(pr *ParsedRequest) error {
	if pr.ContentLength <= 0 {
		return nil
	}
	body := make([]byte, pr.ContentLength)
	if _, err := io.ReadFull(r.BR, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	pr.Body = body
	return nil
}

// readHead returns the head without its terminating CRLF CRLF.
func (r *Reader) readHead() ([]byte, error) {
	var buf []byte
	for {
		chunk, err := r.BR.ReadSlice('\n')
		buf = append(buf, chunk...)
		if r.MaxHeaderBytes > 0 && len(buf) > r.MaxHeaderBytes {
			return nil, ErrHeaderTooLarge
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if bytes.HasSuffix(buf, headTerminator) {
			return buf[:len(buf)-len(headTerminator)], nil
		}
	}
}

// HeaderValue finds the first header line whose name matches key
// case-insensitively and returns its trimmed value.
func HeaderValue(lines []string, key string) (string, bool) {
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
