package httpx

import (
    "bufio"
    "fmt"
    "io"
    "net"
    "strconv"
    "strings"
    "time"
)

// Client is a one-shot HTTP/1.1 client: every Do dials, writes a single
// request, reads the response and closes the connection. It is meant for
// tests and smoke checks against Server.
type Client struct {
    // Timeout bounds dial plus round trip. Zero means 10s.
    Timeout        time.Duration
    MaxHeaderBytes int
}

// ClientResponse is a fully read response.
type ClientResponse struct {
    Proto      string
    StatusCode int
    Status     string
    Header     Header
    Body       []byte
}

func (c *Client) Get(addr, path string) (*ClientResponse, error) {
    return c.Do(addr, &Request{Method: "GET", Path: path})
}

func (c *Client) Post(addr, path string, body []byte) (*ClientResponse, error) {
    return c.Do(addr, &Request{Method: "POST", Path: path, Body: body})
}

// Do sends r to addr. Host and Content-Length are filled in when r does
// not carry them.
func (c *Client) Do(addr string, r *Request) (*ClientResponse, error) {
    if r == nil {
        return nil, fmt.Errorf("httpx: nil request")
    }
    timeout := c.Timeout
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    conn, err := net.DialTimeout("tcp", addr, timeout)
    if err != nil {
        return nil, err
    }
    defer conn.Close()
    _ = conn.SetDeadline(time.Now().Add(timeout))

    bw := bufio.NewWriter(conn)
    if err := writeRequest(bw, addr, r); err != nil {
        return nil, err
    }
    if err := bw.Flush(); err != nil {
        return nil, err
    }
    return c.readResponse(bufio.NewReader(conn))
}

func writeRequest(bw *bufio.Writer, addr string, r *Request) error {
    method, path, proto := r.Method, r.Path, r.Proto
    if method == "" {
        method = "GET"
    }
    if path == "" {
        path = "/"
    }
    if proto == "" {
        proto = "HTTP/1.1"
    }
    h := append(Header(nil), r.Header...)
    if _, ok := h.Lookup("Host"); !ok {
        h.Add("Host", addr)
    }
    if _, ok := h.Lookup("Content-Length"); !ok && len(r.Body) > 0 {
        h.Add("Content-Length", strconv.Itoa(len(r.Body)))
    }
    if _, err := fmt.Fprintf(bw, "%s %s %s\r\n", method, path, proto); err != nil {
        return err
    }
    for _, line := range h {
        if _, err := fmt.Fprintf(bw, "%s\r\n", line); err != nil {
            return err
        }
    }
    if _, err := bw.WriteString("\r\n"); err != nil {
        return err
    }
    _, err := bw.Write(r.Body)
    return err
}

func (c *Client) readResponse(br *bufio.Reader) (*ClientResponse, error) {
    limit := c.MaxHeaderBytes
    if limit <= 0 {
        limit = 8 << 10
    }
    for {
        proto, code, reason, err := readStatusLine(br, limit)
        if err != nil {
            return nil, err
        }
        hdr, err := readHeaders(br, limit)
        if err != nil {
            return nil, err
        }
        // Interim responses carry no body.
        if code >= 100 && code < 200 {
            continue
        }
        res := &ClientResponse{Proto: proto, StatusCode: code, Status: reason, Header: hdr}
        if v, ok := hdr.Lookup("Content-Length"); ok {
            n, err := strconv.ParseInt(v, 10, 64)
            if err != nil || n < 0 {
                return nil, fmt.Errorf("%w: Content-Length %q", ErrProtocolViolation, v)
            }
            res.Body = make([]byte, n)
            if _, err := io.ReadFull(br, res.Body); err != nil {
                return nil, err
            }
            return res, nil
        }
        // No framing: the server closes after the response.
        rest, err := io.ReadAll(br)
        if err != nil {
            return nil, err
        }
        if len(rest) > 0 {
            res.Body = rest
        }
        return res, nil
    }
}

func readStatusLine(br *bufio.Reader, limit int) (proto string, code int, reason string, err error) {
    line, err := readLine(br, limit)
    if err != nil {
        return "", 0, "", err
    }
    parts := strings.SplitN(line, " ", 3)
    if len(parts) < 2 {
        return "", 0, "", ErrBadStatusLine
    }
    proto = parts[0]
    if !strings.HasPrefix(proto, "HTTP/1.") {
        return "", 0, "", ErrProtocolViolation
    }
    code, err = strconv.Atoi(parts[1])
    if err != nil {
        return "", 0, "", ErrBadStatusLine
    }
    if len(parts) == 3 {
        reason = parts[2]
    }
    return
}

func readHeaders(br *bufio.Reader, limit int) (Header, error) {
    var h Header
    for {
        line, err := readLine(br, limit)
        if err != nil {
            return nil, err
        }
        if line == "" {
            break
        }
        if strings.IndexByte(line, ':') <= 0 {
            return nil, ErrProtocolViolation
        }
        h = append(h, line)
    }
    return h, nil
}

func readLine(br *bufio.Reader, limit int) (string, error) {
    var sb strings.Builder
    for {
        b, err := br.ReadByte()
        if err != nil {
            if err == io.EOF && sb.Len() > 0 {
                err = io.ErrUnexpectedEOF
            }
            return "", err
        }
        if b == '\n' {
            break
        }
        if b != '\r' {
            sb.WriteByte(b)
        }
        if limit > 0 && sb.Len() > limit {
            return "", ErrHeaderTooLarge
        }
    }
    return sb.String(), nil
}
