package httpx

import (
	"context"
)

// Request represents a parsed HTTP request. It lives for one connection and
// handlers must not keep it, or anything reachable from it, after returning.
type Request struct {
	Method        Method
	// Path is the request-target without its query, with trailing slashes
	// trimmed unless it is exactly "/".
	Path          string
	RequestURI    string
	Proto         string
	Header        Header
	Query         Query
	Body          string
	RemoteAddr    string
	// ID is the server generated identifier for this request.
	ID            string
	// CorrelationID is a propagated ID from the peer (X-Request-Id).
	CorrelationID string
	// Trace is set when the peer sent a valid traceparent header.
	Trace         *Trace
	ctx           context.Context
}

// Context returns the request's context. If nil, returns Background.
// The server populates it with the request ID, the correlation ID and trace.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func WithContext(r *Request, ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}
