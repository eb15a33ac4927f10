package httpx

import (
    "bufio"
    "errors"
    "io"
    "net"
    "strconv"
    "sync"
    "time"

    "dqx0.com/go/tinyhttpd/httpx/internal/http1"
    "dqx0.com/go/tinyhttpd/internal/obs"
)

// DefaultAddr is the loopback address ListenAndServe binds when Addr is empty.
const DefaultAddr = "127.0.0.1:4221"

type Handler interface {
    ServeHTTP(*Request) *Response
}

type HandlerFunc func(*Request) *Response

func (f HandlerFunc) ServeHTTP(r *Request) *Response {
    return f(r)
}

// Server accepts connections and answers exactly one request on each.
// There is no keep-alive: the connection is closed once the response is
// flushed.
type Server struct {
    Addr           string
    Handler        Handler
    // ReadTimeout and WriteTimeout are disabled when zero.
    ReadTimeout    time.Duration
    WriteTimeout   time.Duration
    MaxHeaderBytes int
    MaxBodyBytes   int64

    Logger obs.Logger
    Meter  obs.Meter

    mu     sync.Mutex
    ln     net.Listener
    closed bool
}

func (s *Server) ListenAndServe() error {
    addr := s.Addr
    if addr == "" {
        addr = DefaultAddr
    }
    ln, err := net.Listen("tcp", addr)
    if err != nil {
        return err
    }
    s.logf(obs.Info, "listening on %s", ln.Addr())
    return s.Serve(ln)
}

// Serve runs the accept loop on l and spawns one goroutine per
// connection. Accept errors are logged and the loop keeps going; it only
// returns once l is closed.
func (s *Server) Serve(l net.Listener) error {
    s.mu.Lock()
    if s.closed {
        s.mu.Unlock()
        _ = l.Close()
        return ErrServerClosed
    }
    s.ln = l
    s.mu.Unlock()
    defer l.Close()

    var backoff time.Duration
    for {
        c, err := l.Accept()
        if err != nil {
            if s.isClosed() {
                return ErrServerClosed
            }
            if errors.Is(err, net.ErrClosed) {
                return err
            }
            s.logf(obs.Error, "accept: %v", err)
            s.metricCounter("httpx_server_errors_total", 1, obs.Label{Key: "stage", Value: "accept"})
            if backoff == 0 {
                backoff = 5 * time.Millisecond
            } else {
                backoff *= 2
            }
            if backoff > time.Second {
                backoff = time.Second
            }
            time.Sleep(backoff)
            continue
        }
        backoff = 0
        s.metricCounter("httpx_server_connections_total", 1)
        go s.serveConn(c)
    }
}

// Close stops the accept loop. Connections already being served run to
// completion.
func (s *Server) Close() error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.closed = true
    if s.ln == nil {
        return nil
    }
    return s.ln.Close()
}

func (s *Server) isClosed() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.closed
}

func (s *Server) serveConn(c net.Conn) {
    defer c.Close()
    start := time.Now()
    id := genID()
    br := bufio.NewReader(c)
    bw := bufio.NewWriter(c)

    if s.ReadTimeout > 0 {
        _ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
    }
    rr := &http1.Reader{BR: br, MaxHeaderBytes: s.headerLimit(), MaxBodyBytes: s.bodyLimit()}
    pr, err := rr.ReadHead()
    if err != nil {
        s.readFailed(id, c, err)
        return
    }
    // Clients such as curl hold the body back until they see this.
    if pr.ExpectsContinue() {
        err := http1.WriteContinue(bw)
        if err == nil {
            err = bw.Flush()
        }
        if err != nil {
            s.writeFailed(id, err)
            return
        }
    }
    if err := rr.ReadBody(pr); err != nil {
        s.readFailed(id, c, err)
        return
    }

    r := &Request{
        Method:     pr.Method,
        Path:       pr.RequestURI,
        Proto:      pr.Proto,
        Header:     Header(pr.Header),
        Body:       pr.Body,
        RemoteAddr: c.RemoteAddr().String(),
        ID:         id,
    }
    s.metricCounter("httpx_server_requests_total", 1, obs.Label{Key: "method", Value: r.Method})

    h := s.Handler
    if h == nil {
        h = HandlerFunc(func(*Request) *Response { return NotFound() })
    }
    res := h.ServeHTTP(r)
    if res == nil {
        res = NotFound()
    }

    if s.WriteTimeout > 0 {
        _ = c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
    }
    if err := http1.WriteResponse(bw, res.StatusCode, StatusText(res.StatusCode), res.headerLines(), res.Body); err != nil {
        s.writeFailed(id, err)
        return
    }
    if err := bw.Flush(); err != nil {
        s.writeFailed(id, err)
        return
    }

    status := strconv.Itoa(res.StatusCode)
    s.metricCounter("httpx_server_responses_total", 1, obs.Label{Key: "status", Value: status})
    s.metricHistogram("httpx_server_request_duration_seconds", time.Since(start).Seconds(),
        obs.Label{Key: "method", Value: r.Method}, obs.Label{Key: "status", Value: status})
    s.logf(obs.Debug, "conn=%s %s %s %s -> %d (%d bytes)", id, r.RemoteAddr, r.Method, r.Path, res.StatusCode, len(res.Body))
}

func (s *Server) readFailed(id string, c net.Conn, err error) {
    if err == io.EOF {
        s.logf(obs.Debug, "conn=%s %s closed before sending a request", id, c.RemoteAddr())
        return
    }
    s.logf(obs.Warn, "conn=%s %s read request: %v", id, c.RemoteAddr(), err)
    s.metricCounter("httpx_server_errors_total", 1, obs.Label{Key: "stage", Value: "read"})
}

func (s *Server) writeFailed(id string, err error) {
    s.logf(obs.Warn, "conn=%s write response: %v", id, err)
    s.metricCounter("httpx_server_errors_total", 1, obs.Label{Key: "stage", Value: "write"})
}

func (s *Server) headerLimit() int {
    if s.MaxHeaderBytes <= 0 {
        return 8 << 10
    }
    return s.MaxHeaderBytes
}

func (s *Server) bodyLimit() int64 {
    if s.MaxBodyBytes <= 0 {
        return 10 << 20
    }
    return s.MaxBodyBytes
}

func (s *Server) logf(level obs.Level, format string, args ...interface{}) {
    obs.OrNop(s.Logger).Logf(level, format, args...)
}

func (s *Server) metricCounter(name string, value float64, labels ...obs.Label) {
    s.getMeter().Counter(name, value, labels...)
}

func (s *Server) metricHistogram(name string, value float64, labels ...obs.Label) {
    s.getMeter().Histogram(name, value, labels...)
}

func (s *Server) getMeter() obs.Meter {
    if s.Meter != nil {
        return s.Meter
    }
    return obs.NopMeter{}
}
