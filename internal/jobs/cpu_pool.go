// Package jobs runs CPU-bound work units on a bounded pool of workers.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sentinel errors for the jobs package.
var (
	// ErrPanic is returned for a work unit whose task panicked.
	ErrPanic = errors.New("work unit panicked")

	// ErrNotRun is returned for work units abandoned after the run was stopped.
	ErrNotRun = errors.New("work unit not run")
)

// PoolStatus reports a pool's current state.
type PoolStatus struct {
	Name      string `json:"name" yaml:"name"`
	Workers   int    `json:"workers" yaml:"workers"`
	InFlight  int    `json:"in_flight" yaml:"in_flight"`
	Completed int    `json:"completed" yaml:"completed"`
	Failed    int    `json:"failed" yaml:"failed"`
}

// WorkUnit is one task, usually one document.
type WorkUnit[T any] struct {
	ID   string
	Task func(ctx context.Context) (T, error)
}

// WorkResult is the outcome of a WorkUnit.
type WorkResult[T any] struct {
	WorkUnitID string
	Success    bool
	Output     T
	Error      error
	Duration   time.Duration
}

// CPUPool runs work units on a fixed number of workers.
// All workers share a single queue, so load balances naturally.
type CPUPool struct {
	name        string
	logger      *slog.Logger
	workerCount int
	stopOnError bool

	inFlight  atomic.Int32
	completed atomic.Int32
	failed    atomic.Int32
}

// CPUPoolConfig configures a new CPU pool.
type CPUPoolConfig struct {
	Name        string
	Logger      *slog.Logger
	WorkerCount int  // Number of worker goroutines (default: runtime.NumCPU())
	StopOnError bool // Stop taking new units after the first failure
}

// NewCPUPool creates a new CPU pool.
func NewCPUPool(cfg CPUPoolConfig) *CPUPool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "cpu"
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	return &CPUPool{
		name:        name,
		logger:      logger.With("pool", name, "workers", workerCount),
		workerCount: workerCount,
		stopOnError: cfg.StopOnError,
	}
}

// Name returns the pool name.
func (p *CPUPool) Name() string {
	return p.name
}

// Status returns current pool status.
func (p *CPUPool) Status() PoolStatus {
	return PoolStatus{
		Name:      p.name,
		Workers:   p.workerCount,
		InFlight:  int(p.inFlight.Load()),
		Completed: int(p.completed.Load()),
		Failed:    int(p.failed.Load()),
	}
}

// Run processes units and returns one result per unit, in input order.
// A failing or panicking unit does not affect the others unless the pool
// was configured with StopOnError, in which case the remaining queued units
// are returned with ErrNotRun and Run returns the first failure.
func Run[T any](ctx context.Context, p *CPUPool, units []WorkUnit[T]) ([]WorkResult[T], error) {
	results := make([]WorkResult[T], len(units))
	for i := range units {
		results[i] = WorkResult[T]{WorkUnitID: units[i].ID, Error: ErrNotRun}
	}

	queue := make(chan int, len(units))
	for i := range units {
		queue <- i
	}
	close(queue)

	workers := p.workerCount
	if workers > len(units) {
		workers = len(units)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			p.logger.Debug("cpu worker started", "worker_id", id)
			for idx := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				unit := units[idx]

				p.inFlight.Add(1)
				res := process(gctx, p.logger, unit)
				p.inFlight.Add(-1)
				results[idx] = res

				if res.Success {
					p.completed.Add(1)
					p.logger.Debug("cpu work unit completed", "worker_id", id, "unit_id", unit.ID, "duration", res.Duration)
					continue
				}
				p.failed.Add(1)
				p.logger.Debug("cpu work unit failed", "worker_id", id, "unit_id", unit.ID, "error", res.Error)
				if p.stopOnError {
					return fmt.Errorf("%s: %w", unit.ID, res.Error)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// process executes one unit, converting a panic into an error.
func process[T any](ctx context.Context, logger *slog.Logger, unit WorkUnit[T]) (res WorkResult[T]) {
	res.WorkUnitID = unit.ID
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Success = false
			res.Error = fmt.Errorf("%w: %v", ErrPanic, r)
			logger.Error("work unit panicked", "unit_id", unit.ID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if unit.Task == nil {
		res.Error = errors.New("work unit has no task")
		return res
	}

	out, err := unit.Task(ctx)
	if err != nil {
		res.Error = err
		return res
	}
	res.Success = true
	res.Output = out
	return res
}
