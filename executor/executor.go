package executor

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/brazenfox/forge/system"
	"github.com/brazenfox/forge/world"
)

// Diagnostics receives start/end notifications for every system run,
// mirroring the oriumgames-bevi Diagnostics interface so an App can plug in
// its own tracing/metrics without the executor depending on any particular
// backend.
type Diagnostics interface {
	SystemStart(name string)
	SystemEnd(name string, err error, duration time.Duration)
}

// Pool is a fixed-size worker pool reused across every batch an App runs,
// avoiding the goroutine-per-batch churn a naive implementation would pay
// every frame. Grounded directly on oriumgames-bevi's RunStage.
type Pool struct {
	workers int
	work    chan job
	wg      sync.WaitGroup
	closed  bool
	mu      sync.Mutex
}

type job struct {
	sys    *system.Descriptor
	world  *world.World
	diag   Diagnostics
	delta  float64
	done   func(err error)
}

// New returns a Pool sized to workers, or runtime.GOMAXPROCS(0) if workers <= 0.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = max(runtime.GOMAXPROCS(0), 1)
	}
	p := &Pool{workers: workers, work: make(chan job)}
	p.wg.Add(workers)
	for range workers {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for j := range p.work {
		err := runSystem(j.sys, j.world, j.diag, j.delta)
		j.done(err)
	}
}

func runSystem(sys *system.Descriptor, w *world.World, diag Diagnostics, delta float64) (runErr error) {
	if diag != nil {
		diag.SystemStart(sys.Name)
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("system %s panicked: %v\n%s", sys.Name, r, debug.Stack())
		}
		if diag != nil {
			diag.SystemEnd(sys.Name, runErr, time.Since(start))
		}
		sys.MarkRun(time.Now())
	}()

	ctx := system.NewContext(w, sys.LocalStorage())
	ctx.Delta = delta
	sys.Fn(ctx)
	w.MergeEntityCmdBuffer(ctx.Entities)
	w.MergeWorldCmdBuffer(ctx.Commands)
	return nil
}

// RunBatches executes every batch in order, fully joining each one (every
// system in a batch finishes, including its command-buffer merge, before
// the next batch starts) before moving on — conflicting systems are never
// in the same batch to begin with, so this is the only synchronization the
// plan requires. Returns the first system error encountered, after letting
// the rest of that batch finish (first-error-wins, not first-error-abort).
func (p *Pool) RunBatches(ctx context.Context, batches [][]*system.Descriptor, w *world.World, diag Diagnostics, delta float64) error {
	var firstErr error
	var firstErrMu sync.Mutex
	record := func(err error) {
		if err == nil {
			return
		}
		firstErrMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		firstErrMu.Unlock()
	}

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		ordered := append([]*system.Descriptor(nil), batch...)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

		var batchWG sync.WaitGroup
		for _, sys := range ordered {
			if !sys.ShouldRun(time.Now()) {
				continue
			}
			batchWG.Add(1)
			p.work <- job{
				sys:   sys,
				world: w,
				diag:  diag,
				delta: delta,
				done: func(err error) {
					record(err)
					batchWG.Done()
				},
			}
		}
		batchWG.Wait()
		if firstErr != nil {
			return firstErr
		}
	}
	return firstErr
}

// Close stops every worker goroutine. Call once, after the last RunBatches,
// when the owning App shuts down.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.work)
	p.wg.Wait()
}
