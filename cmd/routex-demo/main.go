package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"dqx0.com/go/routex/httpx"
)

// app is the passthrough value shared by every handler. Counters are
// pointers so clones keep feeding the same totals.
type app struct {
	greeting string
	hits     *atomic.Int64
	meter    *httpx.MemMeter
}

func (a app) Clone() app {
	a.hits.Add(1)
	return a
}

func main() {
	addr := flag.String("addr", "127.0.0.1", "address to bind")
	port := flag.Int("port", 8080, "port to bind")
	threads := flag.Int("threads", 5, "worker count")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	lvl, err := httpx.ParseLevel(*level)
	if err != nil {
		log.Fatal(err)
	}
	logger := httpx.StdLogger{L: log.New(os.Stderr, "", log.LstdFlags), Min: lvl, Pref: "routex "}
	meter := httpx.NewMemMeter()
	a := app{greeting: "hello", hits: &atomic.Int64{}, meter: meter}

	routes := httpx.Routes[app]{}
	routes.HandleFunc(httpx.MethodGet, "/", func(r *httpx.Request, a app) httpx.Response {
		return httpx.Response200(a.greeting + " from routex\n")
	})
	routes.HandleFunc(httpx.MethodGet, "/hello", func(r *httpx.Request, a app) httpx.Response {
		name := r.Query.Get("name")
		if name == "" {
			name = "world"
		}
		return httpx.Response200(fmt.Sprintf("%s, %s\n", a.greeting, name))
	})
	routes.HandleFunc(httpx.MethodPost, "/echo", func(r *httpx.Request, _ app) httpx.Response {
		resp := httpx.Response200(r.Body)
		if ct, ok := r.Header.Fold("Content-Type"); ok {
			resp.Header.Set("Content-Type", ct)
		}
		return resp
	})
	routes.HandleFunc(httpx.MethodGet, "/stats", func(r *httpx.Request, a app) httpx.Response {
		snap := a.meter.Snapshot()
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		fmt.Fprintf(&b, "dispatches %d\n", a.hits.Load())
		for _, k := range keys {
			fmt.Fprintf(&b, "%s %g\n", k, snap[k])
		}
		return httpx.Response200(b.String())
	})
	var notFound httpx.Handler[app] = httpx.HandlerFunc[app](func(r *httpx.Request, _ app) httpx.Response {
		return httpx.NewResponse(404, "no route for "+r.Method.String()+" "+r.Path+"\n")
	})

	s := httpx.NewServer(*addr, *port, routes, notFound, *threads, a)
	s.Logger = logger
	s.Meter = meter

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			logger.Logf(httpx.LevelWarn, "shutdown: %v", err)
		}
	}()

	if err := s.Listen(); err != nil && !errors.Is(err, httpx.ErrServerClosed) {
		log.Fatal(err)
	}
	<-drained
}
