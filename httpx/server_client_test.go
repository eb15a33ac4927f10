package httpx

import (
	"bufio"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"dqx0.com/go/tinyhttpd/internal/obs"
)

func startServer(t *testing.T, h Handler, cfg func(*Server)) (*Server, string, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{Handler: h}
	if cfg != nil {
		cfg(s)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()
	t.Cleanup(func() { _ = s.Close() })
	return s, ln.Addr().String(), done
}

// dialAndRead writes raw and reads until the server closes.
func dialAndRead(addr, raw string) (string, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(c, raw); err != nil {
		return "", err
	}
	b, err := io.ReadAll(c)
	return string(b), err
}

func rawRoundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	out, err := dialAndRead(addr, raw)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	return out
}

type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestServerClient_GET(t *testing.T) {
	h := HandlerFunc(func(r *Request) *Response {
		return &Response{StatusCode: 200, ContentType: "text/plain", Body: []byte("ok")}
	})
	_, addr, _ := startServer(t, h, nil)

	c := &Client{}
	res, err := c.Get(addr, "/")
	if err != nil {
		t.Fatalf("client get: %v", err)
	}
	if res.StatusCode != 200 || res.Status != "OK" {
		t.Fatalf("status=%d %q", res.StatusCode, res.Status)
	}
	if string(res.Body) != "ok" {
		t.Fatalf("body=%q", res.Body)
	}
	if got := res.Header.Get("Content-Length"); got != "2" {
		t.Fatalf("Content-Length=%q", got)
	}
}

func TestServer_RequestFieldsReachHandler(t *testing.T) {
	got := make(chan *Request, 1)
	h := HandlerFunc(func(r *Request) *Response {
		got <- r
		return &Response{StatusCode: 201}
	})
	_, addr, _ := startServer(t, h, nil)
	out := rawRoundTrip(t, addr, "PUT /files/x HTTP/1.1\r\nHost: x\r\nContent-Length: 4\r\n\r\nbody")
	if out != "HTTP/1.1 201 Created\r\n\r\n" {
		t.Fatalf("response=%q", out)
	}
	r := <-got
	if r.Method != "PUT" || r.Path != "/files/x" || r.Proto != "HTTP/1.1" || string(r.Body) != "body" {
		t.Fatalf("request=%+v", r)
	}
	if r.Header.Get("host") != "x" || r.ID == "" || r.RemoteAddr == "" {
		t.Fatalf("request=%+v", r)
	}
}

func TestServer_NilHandlerAndNilResponse(t *testing.T) {
	_, addr, _ := startServer(t, nil, nil)
	if out := rawRoundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n"); out != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Fatalf("nil handler: %q", out)
	}
	_, addr, _ = startServer(t, HandlerFunc(func(*Request) *Response { return nil }), nil)
	if out := rawRoundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n"); out != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Fatalf("nil response: %q", out)
	}
}

func TestServer_DecodeErrorClosesWithoutResponse(t *testing.T) {
	m := obs.NewMemMeter()
	called := false
	h := HandlerFunc(func(*Request) *Response { called = true; return &Response{StatusCode: 200} })
	_, addr, _ := startServer(t, h, func(s *Server) { s.Meter = m })
	out := rawRoundTrip(t, addr, "GET /\xff\xfe HTTP/1.1\r\n\r\n")
	if out != "" {
		t.Fatalf("expected no response, got %q", out)
	}
	if called {
		t.Fatal("handler ran for undecodable request")
	}
	if got := m.CounterValue("httpx_server_errors_total", obs.Label{Key: "stage", Value: "read"}); got != 1 {
		t.Fatalf("read errors=%v", got)
	}
}

func TestServer_ExpectContinue(t *testing.T) {
	h := HandlerFunc(func(r *Request) *Response {
		return &Response{StatusCode: 200, ContentType: "text/plain", Body: r.Body}
	})
	_, addr, _ := startServer(t, h, nil)

	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	io.WriteString(c, "POST /up HTTP/1.1\r\nHost: x\r\nExpect: 100-continue\r\nContent-Length: 3\r\n\r\n")
	br := bufio.NewReader(c)
	interim := make([]byte, len("HTTP/1.1 100 Continue\r\n\r\n"))
	if _, err := io.ReadFull(br, interim); err != nil {
		t.Fatalf("read interim: %v", err)
	}
	if string(interim) != "HTTP/1.1 100 Continue\r\n\r\n" {
		t.Fatalf("interim=%q", interim)
	}
	io.WriteString(c, "abc")
	rest, _ := io.ReadAll(br)
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc\r\n"
	if string(rest) != want {
		t.Fatalf("final=%q", rest)
	}
}

func TestClient_SkipsInterimResponse(t *testing.T) {
	h := HandlerFunc(func(r *Request) *Response {
		return &Response{StatusCode: 200, ContentType: "text/plain", Body: r.Body}
	})
	_, addr, _ := startServer(t, h, nil)
	c := &Client{}
	res, err := c.Do(addr, &Request{Method: "POST", Path: "/", Header: Header{"Expect: 100-continue"}, Body: []byte("payload")})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.StatusCode != 200 || string(res.Body) != "payload" {
		t.Fatalf("status=%d body=%q", res.StatusCode, res.Body)
	}
}

func TestServer_Metrics(t *testing.T) {
	m := obs.NewMemMeter()
	h := HandlerFunc(func(*Request) *Response { return &Response{StatusCode: 200} })
	_, addr, _ := startServer(t, h, func(s *Server) { s.Meter = m })
	rawRoundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n")
	if got := m.CounterValue("httpx_server_requests_total", obs.Label{Key: "method", Value: "GET"}); got != 1 {
		t.Fatalf("requests=%v", got)
	}
	if got := m.CounterValue("httpx_server_responses_total", obs.Label{Key: "status", Value: "200"}); got != 1 {
		t.Fatalf("responses=%v", got)
	}
	if got := m.CounterValue("httpx_server_connections_total"); got != 1 {
		t.Fatalf("connections=%v", got)
	}
	_, hist := m.Snapshot()
	key := obs.SeriesKey("httpx_server_request_duration_seconds",
		obs.Label{Key: "method", Value: "GET"}, obs.Label{Key: "status", Value: "200"})
	if hist[key].Count != 1 {
		t.Fatalf("duration histogram=%+v", hist)
	}
}

// A slow handler on one connection must not hold up another connection.
func TestServer_ConnectionsAreIndependent(t *testing.T) {
	release := make(chan struct{})
	h := HandlerFunc(func(r *Request) *Response {
		switch r.Path {
		case "/slow":
			select {
			case <-release:
			case <-time.After(5 * time.Second):
				return &Response{StatusCode: 404}
			}
		case "/fast":
			close(release)
		}
		return &Response{StatusCode: 200}
	})
	_, addr, _ := startServer(t, h, nil)

	slow := make(chan string, 1)
	go func() {
		out, _ := dialAndRead(addr, "GET /slow HTTP/1.1\r\n\r\n")
		slow <- out
	}()
	time.Sleep(50 * time.Millisecond)
	if out := rawRoundTrip(t, addr, "GET /fast HTTP/1.1\r\n\r\n"); out != "HTTP/1.1 200 OK\r\n\r\n" {
		t.Fatalf("fast=%q", out)
	}
	if out := <-slow; out != "HTTP/1.1 200 OK\r\n\r\n" {
		t.Fatalf("slow=%q", out)
	}
}

func TestServer_CloseStopsServe(t *testing.T) {
	s, _, done := startServer(t, nil, nil)
	time.Sleep(20 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrServerClosed) {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestServer_ServeAfterClose(t *testing.T) {
	s := &Server{}
	s.Close()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Serve(ln); !errors.Is(err, ErrServerClosed) {
		t.Fatalf("err=%v", err)
	}
}

func TestServer_LogsReadFailures(t *testing.T) {
	var sb syncBuffer
	lg := obs.StdLogger{L: log.New(&sb, "", 0), Min: obs.Debug}
	_, addr, _ := startServer(t, nil, func(s *Server) { s.Logger = lg; s.MaxHeaderBytes = 16 })
	// The server may reset the connection; only the log line matters.
	_, _ = dialAndRead(addr, "GET /a-rather-long-path HTTP/1.1\r\n\r\n")
	time.Sleep(20 * time.Millisecond)
	if !strings.Contains(sb.String(), "head too large") {
		t.Fatalf("log=%q", sb.String())
	}
}
