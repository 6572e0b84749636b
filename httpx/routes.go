package httpx

import "dqx0.com/go/routex/httpx/internal/http1"

// Handler answers one request. c is the server's passthrough value, cloned
// for this request when it implements Cloner.
type Handler[C any] interface {
	ServeHTTP(r *Request, c C) Response
}

type HandlerFunc[C any] func(r *Request, c C) Response

func (f HandlerFunc[C]) ServeHTTP(r *Request, c C) Response {
	return f(r, c)
}

// Cloner is implemented by passthrough values that need a fresh copy per
// request. Clone must be safe to call from several goroutines at once.
type Cloner[C any] interface {
	Clone() C
}

func duplicate[C any](c C) C {
	if cl, ok := any(c).(Cloner[C]); ok {
		return cl.Clone()
	}
	return c
}

// Routes maps dispatch keys to handlers. It is copied when a server is built,
// so changing it afterwards has no effect on that server.
type Routes[C any] map[Route]Handler[C]

// Handle registers h for method and path. The path is normalized the same
// way request paths are, so "/foo/" and "/foo" name the same route.
func (rs Routes[C]) Handle(method Method, path string, h Handler[C]) {
	rs[Route{Method: method, Path: http1.NormalizePath(path)}] = h
}

func (rs Routes[C]) HandleFunc(method Method, path string, f func(r *Request, c C) Response) {
	rs.Handle(method, path, HandlerFunc[C](f))
}

// freeze returns a normalized copy. When two keys normalize to the same
// route, either handler may win.
func (rs Routes[C]) freeze() map[Route]Handler[C] {
	m := make(map[Route]Handler[C], len(rs))
	for rt, h := range rs {
		if h == nil {
			continue
		}
		rt.Path = http1.NormalizePath(rt.Path)
		m[rt] = h
	}
	return m
}
