package http1

import (
	"bufio"
	"bytes"
	"testing"
)

func writeResp(t *testing.T, status int, hdr []string, body []byte) string {
	t.Helper()
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := WriteResponse(bw, status, "", hdr, body); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return buf.String()
}

func TestWriteResponse_WithBody(t *testing.T) {
	got := writeResp(t, 200, []string{"Content-Type: text/plain", "Content-Length: 3"}, []byte("abc"))
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc\r\n"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestWriteResponse_Empty(t *testing.T) {
	if got := writeResp(t, 201, nil, nil); got != "HTTP/1.1 201 Created\r\n\r\n" {
		t.Fatalf("got %q", got)
	}
	if got := writeResp(t, 404, nil, nil); got != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteResponse_SanitizesHeaderLines(t *testing.T) {
	got := writeResp(t, 200, []string{"X-Evil: a\r\nInjected: b"}, nil)
	if got != "HTTP/1.1 200 OK\r\nX-Evil: aInjected: b\r\n\r\n" {
		t.Fatalf("got %q", got)
	}
}

func TestStatusText(t *testing.T) {
	cases := map[int]string{200: "OK", 201: "Created", 404: "Not Found", 500: "", 302: ""}
	for code, want := range cases {
		if got := StatusText(code); got != want {
			t.Fatalf("StatusText(%d)=%q, want %q", code, got, want)
		}
	}
}

func TestWriteContinue(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := WriteContinue(bw); err != nil {
		t.Fatal(err)
	}
	bw.Flush()
	if buf.String() != "HTTP/1.1 100 Continue\r\n\r\n" {
		t.Fatalf("got %q", buf.String())
	}
}
