// Package pool runs jobs on a fixed set of worker goroutines fed from a
// single FIFO queue.
//
// Execute never blocks. Workers block on the queue until a job arrives or the
// pool is shut down. Shutdown stops intake and lets the workers drain every
// job already queued before they exit; no queued job is dropped.
package pool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"dqx0.com/go/routex/internal/obs"
)

var (
	ErrClosed      = errors.New("pool: closed")
	ErrQueueFull   = errors.New("pool: queue full")
	ErrInvalidSize = errors.New("pool: worker count must be positive")
)

// Job is one unit of work. It takes no arguments and runs to completion.
type Job func()

type Pool struct {
	workers   int
	maxQueued int // 0 means unbounded
	logger    obs.Logger
	meter     obs.Meter

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	head   int
	closed bool
	wg     sync.WaitGroup
}

// New starts workers goroutines. maxQueued bounds the number of jobs waiting
// for a worker; zero leaves the queue unbounded.
func New(workers, maxQueued int, logger obs.Logger, meter obs.Meter) (*Pool, error) {
	if workers <= 0 {
		return nil, ErrInvalidSize
	}
	if maxQueued < 0 {
		maxQueued = 0
	}
	p := &Pool{
		workers:   workers,
		maxQueued: maxQueued,
		logger:    obs.OrNop(logger),
		meter:     obs.MeterOrNop(meter),
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p, nil
}

// Workers reports the fixed worker count.
func (p *Pool) Workers() int { return p.workers }

// Len reports the number of queued jobs not yet picked up by a worker.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) - p.head
}

// Execute enqueues job. It returns ErrClosed after Shutdown and ErrQueueFull
// when a bounded queue has no room.
func (p *Pool) Execute(job Job) error {
	if job == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.maxQueued > 0 && len(p.queue)-p.head >= p.maxQueued {
		p.mu.Unlock()
		p.meter.Counter("routex_pool_rejected_total", 1)
		return ErrQueueFull
	}
	p.queue = append(p.queue, job)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// next blocks until a job is available. ok is false once the pool is closed
// and the queue is empty.
func (p *Pool) next() (job Job, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.head == len(p.queue) && !p.closed {
		p.cond.Wait()
	}
	if p.head == len(p.queue) {
		return nil, false
	}
	job = p.queue[p.head]
	p.queue[p.head] = nil
	p.head++
	if p.head == len(p.queue) {
		p.queue = p.queue[:0]
		p.head = 0
	}
	return job, true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if v := recover(); v != nil {
			p.meter.Counter("routex_pool_panics_total", 1)
			p.logger.Logf(obs.Error, "pool: worker %d recovered from panic: %v\n%s", id, v, debug.Stack())
		}
	}()
	job()
}

// Shutdown stops accepting jobs, releases idle workers and waits until the
// queue is drained and every worker has exited, or ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown without a deadline.
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}
