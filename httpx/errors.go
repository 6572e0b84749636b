package httpx

import "errors"

var (
	ErrServerClosed   = errors.New("httpx: server closed")
	ErrAlreadyServing = errors.New("httpx: server already serving")
	ErrInvalidMethod  = errors.New("httpx: invalid method")
)
