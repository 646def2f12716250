// Package parallel runs independent, index-addressed tasks.
//
// Builders hand a Runner one task per table cell.  Tasks never share mutable
// state, so any Runner gives the same result; Serial exists for tests and
// debugging.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type Runner interface {
	// Run calls fn once for every i in [0, n).  The first error stops new
	// tasks from starting and is returned once the running ones finish.
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Serial runs tasks one after another on the calling goroutine.
type Serial struct{}

func (Serial) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Pool runs up to Workers tasks at once.  Zero Workers means one per CPU.
type Pool struct {
	Workers int
}

func (p Pool) workers() int64 {
	if p.Workers > 0 {
		return int64(p.Workers)
	}
	return int64(runtime.NumCPU())
}

func (p Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	// Use errgroup and semaphore to limit concurrency.
	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(p.workers())

	for i := 0; i < n; i++ {
		i := i

		// Either the caller gave up or a task failed.  Prefer the task's
		// error, which Wait reports.
		if err := ctx.Err(); err != nil {
			if werr := eg.Wait(); werr != nil {
				return werr
			}
			return err
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			if werr := eg.Wait(); werr != nil {
				return werr
			}
			return fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			return fn(ctx, i)
		})
	}

	return eg.Wait()
}

// Default is the Runner builders use when none is given.
func Default() Runner {
	return Pool{}
}
