package httpx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"dqx0.com/go/routex/httpx/internal/http1"
	"dqx0.com/go/routex/internal/obs"
	"dqx0.com/go/routex/internal/pool"
)

const (
	defaultThreads           = 5
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultMaxBodyBytes      = 8 << 20

	lingerTimeout  = 500 * time.Millisecond
	lingerMaxBytes = 256 << 10
)

// Server accepts connections on one goroutine and serves each of them, one
// request per connection, on a fixed pool of Threads workers.
//
// The route table, the fallback and the passthrough value are fixed by
// NewServer and only read afterwards. Configuration fields must be set
// before Listen or Serve is called.
type Server[C any] struct {
	Address string
	Port    int
	Threads int

	// Zero disables the corresponding deadline.
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration

	MaxHeaderBytes int
	MaxBodyBytes   int64
	// MaxQueuedConns bounds accepted connections waiting for a worker.
	// Connections beyond it are closed without a response. Zero means
	// unbounded.
	MaxQueuedConns int

	Logger Logger
	Meter  Meter

	routes      map[Route]Handler[C]
	fallback    Handler[C]
	passthrough C

	mu     sync.Mutex
	ln     net.Listener
	pool   *pool.Pool
	closed bool
}

// NewServer builds a server for address:port. fallback may be nil, in which
// case unmatched requests get the built-in 404. threads <= 0 selects the
// default of 5 workers.
func NewServer[C any](address string, port int, routes Routes[C], fallback Handler[C], threads int, passthrough C) *Server[C] {
	if threads <= 0 {
		threads = defaultThreads
	}
	return &Server[C]{
		Address:           address,
		Port:              port,
		Threads:           threads,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		MaxBodyBytes:      defaultMaxBodyBytes,
		routes:            routes.freeze(),
		fallback:          fallback,
		passthrough:       passthrough,
	}
}

// Listen binds Address:Port and serves until the server is closed. A bind
// failure is returned immediately.
func (s *Server[C]) Listen() error {
	addr := net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpx: bind %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until Close or Shutdown, then returns
// ErrServerClosed. Accept errors are logged and retried with backoff. If l is
// closed from outside, Serve drains the connections already accepted and
// returns the accept error; the server can then Serve again.
func (s *Server[C]) Serve(l net.Listener) error {
	log := obs.OrNop(s.Logger)
	meter := obs.MeterOrNop(s.Meter)
	threads := s.Threads
	if threads <= 0 {
		threads = defaultThreads
	}
	p, err := pool.New(threads, s.MaxQueuedConns, log, meter)
	if err != nil {
		l.Close()
		return fmt.Errorf("httpx: starting workers: %w", err)
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		l.Close()
		p.Close()
		return ErrServerClosed
	case s.ln != nil:
		s.mu.Unlock()
		l.Close()
		p.Close()
		return ErrAlreadyServing
	}
	s.ln, s.pool = l, p
	s.mu.Unlock()
	defer s.release(l, p)

	log.Logf(obs.Info, "listening on http://%s", l.Addr())

	var tempDelay time.Duration // how long to sleep on accept failure
	for {
		c, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			meter.Counter("routex_accept_errors_total", 1)
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if max := 1 * time.Second; tempDelay > max {
				tempDelay = max
			}
			log.Logf(obs.Warn, "accept error: %v; retrying in %v", err, tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		routes, fallback, pass := s.routes, s.fallback, s.passthrough
		job := func() { s.serveConn(c, routes, fallback, pass) }
		if err := p.Execute(job); err != nil {
			log.Logf(obs.Warn, "dropping connection from %s: %v", c.RemoteAddr(), err)
			c.Close()
		}
	}
}

// release undoes what Serve set up. After Shutdown the pool belongs to
// Shutdown, which is already draining it.
func (s *Server[C]) release(l net.Listener, p *pool.Pool) {
	_ = l.Close()
	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.ln, s.pool = nil, nil
	}
	s.mu.Unlock()
	if !closed {
		_ = p.Close()
	}
}

// Addr returns the listener address, or nil before Serve has started.
func (s *Server[C]) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server[C]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Shutdown stops accepting connections and waits for the workers to finish
// every connection already accepted, or for ctx to be done.
func (s *Server[C]) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln, p := s.ln, s.pool
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if p == nil {
		return nil
	}
	obs.OrNop(s.Logger).Logf(obs.Info, "shutting down; %d connection(s) queued", p.Len())
	return p.Shutdown(ctx)
}

// Close is Shutdown without a deadline.
func (s *Server[C]) Close() error {
	return s.Shutdown(context.Background())
}

func (s *Server[C]) serveConn(c net.Conn, routes map[Route]Handler[C], fallback Handler[C], pass C) {
	defer c.Close()
	log := obs.OrNop(s.Logger)
	start := time.Now()

	if s.ReadHeaderTimeout > 0 {
		_ = c.SetReadDeadline(start.Add(s.ReadHeaderTimeout))
	}
	rr := &http1.Reader{
		BR:             bufio.NewReader(c),
		MaxHeaderBytes: s.MaxHeaderBytes,
		MaxBodyBytes:   s.MaxBodyBytes,
		BeforeBody: func() {
			if s.ReadTimeout > 0 {
				_ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
			}
		},
	}
	pr, err := rr.ReadRequest()
	if err != nil {
		log.Logf(obs.Debug, "bad request from %s: %v", c.RemoteAddr(), err)
		resp, reason := readErrorResponse(err)
		s.countBadRequest(reason)
		s.writeResponse(c, "-", resp, start)
		lingerClose(c)
		return
	}
	method := ParseMethod(pr.Method)
	if method == MethodInvalid {
		log.Logf(obs.Debug, "bad request from %s: %v", c.RemoteAddr(), fmt.Errorf("%w: %q", ErrInvalidMethod, pr.Method))
		s.countBadRequest("method")
		s.writeResponse(c, MethodInvalid.String(), badRequestResponse(), start)
		lingerClose(c)
		return
	}

	r := &Request{
		Method:     method,
		Path:       pr.Path,
		RequestURI: pr.RequestURI,
		Proto:      pr.Proto,
		Header:     Header(pr.Header),
		Query:      Query(pr.Query),
		Body:       pr.Body,
		RemoteAddr: c.RemoteAddr().String(),
		ID:         genID(),
	}
	if v, ok := r.Header.Fold("X-Request-Id"); ok {
		r.CorrelationID = v
	}
	r.Trace = traceFromHeader(r.Header)
	r.ctx = requestContext(r)
	if pr.BodyInvalid {
		log.Logf(obs.Warn, "request %s: body is not valid UTF-8, using empty body", r.ID)
	}

	h, ok := routes[Route{Method: method, Path: r.Path}]
	if !ok {
		h = fallback
	}
	var resp Response
	if h == nil {
		resp = notFoundResponse()
	} else {
		resp = s.invoke(h, r, duplicate(pass))
	}
	log.Logf(obs.Debug, "request %s: %s %s -> %d", r.ID, method, r.RequestURI, resp.StatusCode)
	s.writeResponse(c, method.String(), resp, start)
}

// invoke runs the handler and turns a panic into the built-in 500.
func (s *Server[C]) invoke(h Handler[C], r *Request, c C) (resp Response) {
	defer func() {
		if v := recover(); v != nil {
			obs.MeterOrNop(s.Meter).Counter("routex_handler_panics_total", 1)
			obs.OrNop(s.Logger).Logf(obs.Error, "request %s: handler for %s %s panicked: %v\n%s", r.ID, r.Method, r.Path, v, debug.Stack())
			resp = internalErrorResponse()
		}
	}()
	return h.ServeHTTP(r, c)
}

func (s *Server[C]) writeResponse(c net.Conn, method string, resp Response, start time.Time) {
	log := obs.OrNop(s.Logger)
	meter := obs.MeterOrNop(s.Meter)

	if resp.StatusCode < 100 || resp.StatusCode > 999 {
		log.Logf(obs.Warn, "handler returned invalid status %d; sending 500", resp.StatusCode)
		resp = internalErrorResponse()
	} else if resp.Reason == "" && !http1.KnownStatus(resp.StatusCode) {
		log.Logf(obs.Warn, "unrecognized status %d; using generic reason phrase", resp.StatusCode)
	}

	if s.WriteTimeout > 0 {
		_ = c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	bw := bufio.NewWriter(c)
	err := http1.WriteResponse(bw, resp.StatusCode, resp.Reason, resp.Header, resp.Body)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		log.Logf(obs.Warn, "writing response to %s: %v", c.RemoteAddr(), err)
		meter.Counter("routex_write_errors_total", 1)
		return
	}
	meter.Counter("routex_requests_total", 1,
		obs.Label{Key: "method", Value: method},
		obs.Label{Key: "status", Value: strconv.Itoa(resp.StatusCode)})
	meter.Histogram("routex_request_seconds", time.Since(start).Seconds(),
		obs.Label{Key: "method", Value: method})
}

func (s *Server[C]) countBadRequest(reason string) {
	obs.MeterOrNop(s.Meter).Counter("routex_bad_requests_total", 1, obs.Label{Key: "reason", Value: reason})
}

// readErrorResponse maps a parse or read failure to its built-in response
// and a metric reason.
func readErrorResponse(err error) (Response, string) {
	switch {
	case errors.Is(err, http1.ErrHeaderTooLarge):
		return headTooLargeResponse(), "header_too_large"
	case errors.Is(err, http1.ErrBodyTooLarge):
		return bodyTooLargeResponse(), "body_too_large"
	case errors.Is(err, http1.ErrMalformed):
		return badRequestResponse(), "malformed"
	default:
		return badRequestResponse(), "read"
	}
}

// lingerClose half-closes c and discards whatever the peer is still sending,
// so unread request bytes do not make the kernel reset the connection before
// the error response reaches the client.
func lingerClose(c net.Conn) {
	cw, ok := c.(interface{ CloseWrite() error })
	if !ok {
		return
	}
	_ = cw.CloseWrite()
	_ = c.SetReadDeadline(time.Now().Add(lingerTimeout))
	_, _ = io.Copy(io.Discard, io.LimitReader(c, lingerMaxBytes))
}
