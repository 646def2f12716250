// Package lutbuild holds what the three table builders share: the
// Empty -> Filled lifecycle, build options, and the traced per-cell fan-out.
package lutbuild

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"skylut/parallel"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAlreadyBuilt = errors.New("table build already started")
	ErrNotBuilt     = errors.New("table has not been built successfully")
)

// ProgressFunction receives the number of finished cells and the total.  It
// is never called concurrently.
type ProgressFunction func(done, total int)

type Options struct {
	Runner   parallel.Runner
	Progress ProgressFunction
}

type Opt func(*Options)

func WithRunner(r parallel.Runner) Opt {
	return func(o *Options) {
		o.Runner = r
	}
}

func WithProgress(fn ProgressFunction) Opt {
	return func(o *Options) {
		o.Progress = fn
	}
}

func NewOptions(opts ...Opt) Options {
	o := Options{
		Runner:   parallel.Default(),
		Progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Lifecycle enforces that a table is built at most once and is only handed
// out after a build completed without error.
type Lifecycle struct {
	lock    sync.Mutex
	started bool
	filled  bool
}

func (l *Lifecycle) Begin() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.started {
		return ErrAlreadyBuilt
	}
	l.started = true
	return nil
}

func (l *Lifecycle) Finish(err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.filled = err == nil
}

func (l *Lifecycle) Filled() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if !l.filled {
		return ErrNotBuilt
	}
	return nil
}

// Cells evaluates cell(i) for every i in [0, n) on the configured Runner,
// inside a span named after the table.
func Cells(ctx context.Context, table string, n int, o Options, cell func(i int) error) error {
	tracer := otel.Tracer("skylut/lutbuild")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Build "+table)
	defer span.End()

	span.SetAttributes(attribute.Int("cells", n))

	// progressMutex serializes calls into o.Progress.
	progressMutex := sync.Mutex{}
	done := 0

	err := o.Runner.Run(ctx, n, func(ctx context.Context, i int) error {
		if err := cell(i); err != nil {
			return fmt.Errorf("while computing %s cell %d: %w", table, i, err)
		}

		progressMutex.Lock()
		defer progressMutex.Unlock()
		done++
		o.Progress(done, n)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
