// Package httpx is a small HTTP/1.1 server that answers exactly one
// request per TCP connection.
//
// The Server accepts connections and hands each one to its own
// goroutine, which reads the request head up to the blank line, reads a
// Content-Length framed body, asks the Handler for a Response and writes
// it back before closing the connection. There is no keep-alive, no
// chunked transfer coding and no TLS.
//
// Handlers return a Response value instead of writing to the socket:
//
//	s := &httpx.Server{Addr: "127.0.0.1:4221"}
//	s.Handler = httpx.HandlerFunc(func(r *httpx.Request) *httpx.Response {
//	    return &httpx.Response{StatusCode: 200, ContentType: "text/plain", Body: []byte("hello")}
//	})
//	if err := s.ListenAndServe(); err != nil { log.Fatal(err) }
//
// Content-Type and Content-Length are only sent when the body is
// non-empty or an encoding was applied. EncodeGzip compresses a Response
// when the request's Accept-Encoding lists the literal "gzip" token.
//
// Client is a one-shot counterpart used for tests and smoke checks:
//
//	c := &httpx.Client{}
//	res, err := c.Get("127.0.0.1:4221", "/echo/abc")
//	if err != nil { log.Fatal(err) }
//	fmt.Println(res.StatusCode, string(res.Body))
package httpx
