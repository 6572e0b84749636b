package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dqx0.com/go/routex/internal/obs"
)

func newPool(t *testing.T, workers, maxQueued int, m obs.Meter) *Pool {
	t.Helper()
	p, err := New(workers, maxQueued, nil, m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0, 0, nil, nil); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("err=%v, want ErrInvalidSize", err)
	}
}

func TestExecute_RunsAllJobs(t *testing.T) {
	p := newPool(t, 3, 0, nil)
	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.Execute(func() { defer wg.Done(); n.Add(1) }); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	wg.Wait()
	if n.Load() != 100 {
		t.Fatalf("ran %d jobs", n.Load())
	}
}

func TestExecute_FIFOWithSingleWorker(t *testing.T) {
	p := newPool(t, 1, 0, nil)
	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	gate := make(chan struct{})
	wg.Add(1)
	_ = p.Execute(func() { defer wg.Done(); <-gate })
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		_ = p.Execute(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	close(gate)
	wg.Wait()
	for i, v := range got {
		if v != i {
			t.Fatalf("order=%v", got)
		}
	}
}

func TestWorkersRunInParallel(t *testing.T) {
	const workers = 4
	p := newPool(t, workers, 0, nil)
	var started sync.WaitGroup
	started.Add(workers)
	release := make(chan struct{})
	for i := 0; i < workers+2; i++ {
		_ = p.Execute(func() {
			started.Done()
			<-release
		})
	}
	done := make(chan struct{})
	go func() {
		// Only workers jobs can be running; the extra two stay queued.
		started.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not run concurrently")
	}
	if got := p.Len(); got != 2 {
		t.Fatalf("queued=%d, want 2", got)
	}
	started.Add(2)
	close(release)
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	m := obs.NewMemMeter()
	p := newPool(t, 1, 0, m)
	_ = p.Execute(func() { panic("boom") })
	ran := make(chan struct{})
	_ = p.Execute(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
	if got := m.CounterValue("routex_pool_panics_total"); got != 1 {
		t.Fatalf("panics=%v", got)
	}
}

func TestShutdown_DrainsQueue(t *testing.T) {
	p, err := New(1, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var n atomic.Int64
	gate := make(chan struct{})
	_ = p.Execute(func() { <-gate })
	for i := 0; i < 5; i++ {
		_ = p.Execute(func() { n.Add(1) })
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n.Load() != 5 {
		t.Fatalf("drained %d of 5", n.Load())
	}
	if err := p.Execute(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Execute after close: %v", err)
	}
}

func TestShutdown_ContextDeadline(t *testing.T) {
	p, err := New(1, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	release := make(chan struct{})
	_ = p.Execute(func() { <-release })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
	close(release)
	_ = p.Close()
}

func TestExecute_BoundedQueue(t *testing.T) {
	m := obs.NewMemMeter()
	p := newPool(t, 1, 1, m)
	release := make(chan struct{})
	defer close(release)
	running := make(chan struct{})
	_ = p.Execute(func() { close(running); <-release })
	<-running
	if err := p.Execute(func() {}); err != nil {
		t.Fatalf("first queued job: %v", err)
	}
	if err := p.Execute(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err=%v, want ErrQueueFull", err)
	}
	if got := m.CounterValue("routex_pool_rejected_total"); got != 1 {
		t.Fatalf("rejected=%v", got)
	}
}
