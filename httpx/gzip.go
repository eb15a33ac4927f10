package httpx

import (
	"bytes"
	"compress/gzip"
	"strings"
)

// AcceptsGzip reports whether an Accept-Encoding value lists the exact,
// case-sensitive token "gzip". Quality parameters are not interpreted.
func AcceptsGzip(acceptEncoding string) bool {
	for _, tok := range strings.Split(acceptEncoding, ",") {
		if strings.TrimSpace(tok) == "gzip" {
			return true
		}
	}
	return false
}

// GzipBytes compresses p into a gzip container at the default level.
func GzipBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeGzip compresses r.Body in place and marks r.Encoding when the
// request advertises gzip. It leaves r untouched otherwise.
func EncodeGzip(req *Request, r *Response) error {
	if !AcceptsGzip(req.Header.Get("Accept-Encoding")) {
		return nil
	}
	z, err := GzipBytes(r.Body)
	if err != nil {
		return err
	}
	r.Body = z
	r.Encoding = "gzip"
	return nil
}
