package httpx

import (
    "errors"

    "dqx0.com/go/tinyhttpd/httpx/internal/http1"
)

var (
    ErrServerClosed      = errors.New("httpx: server closed")
    ErrBadStatusLine     = errors.New("httpx: malformed status line")
    ErrProtocolViolation = errors.New("httpx: protocol violation")

    // Parse failures. All of them close the connection without a response.
    ErrDecode           = http1.ErrDecode
    ErrHeaderTooLarge   = http1.ErrHeaderTooLarge
    ErrBodyTooLarge     = http1.ErrBodyTooLarge
    ErrBadContentLength = http1.ErrBadContentLength
)
