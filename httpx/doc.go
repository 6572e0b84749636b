// Package httpx is a minimal embeddable HTTP/1.1 server.
//
// A host program registers handlers by (method, path), optionally a
// fallback for unmatched requests, and a passthrough value handed to every
// handler. The server accepts connections on the calling goroutine and
// serves them on a fixed pool of workers: one request per connection, then
// the connection is closed.
//
// Highlights
//   - Routing: exact (method, path) lookup; trailing slashes are trimmed
//     from both registered and requested paths, "/" is kept.
//   - Parsing: verbatim header keys, verbatim query values (no
//     percent-decoding), Content-Length bodies only.
//   - Limits: header and body size caps, read/write deadlines, optional
//     bound on connections waiting for a worker.
//   - Isolation: a panicking handler yields a 500 and the worker carries on.
//   - Observability: plug-in Logger and Meter.
//
// Responses are written as "key:value\n" header lines closed by "\r\n",
// which lenient clients accept.
//
// Quick start:
//
//	routes := httpx.Routes[struct{}]{}
//	routes.HandleFunc(httpx.MethodGet, "/hello", func(r *httpx.Request, _ struct{}) httpx.Response {
//	    return httpx.Response200("hi")
//	})
//	s := httpx.NewServer("127.0.0.1", 8080, routes, nil, 4, struct{}{})
//	if err := s.Listen(); err != nil { log.Fatal(err) }
package httpx
