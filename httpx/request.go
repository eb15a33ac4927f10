package httpx

// Request represents one HTTP request read off a connection.
//
// Method and Path come from the request line only. Header holds the raw
// header lines in arrival order and Body the bytes that followed the
// blank line, framed by Content-Length.
type Request struct {
    Method     string
    Path       string
    Proto      string
    Header     Header
    Body       []byte
    // RemoteAddr is the peer address of the connection.
    RemoteAddr string
    // ID identifies the connection in logs.
    ID         string
}
