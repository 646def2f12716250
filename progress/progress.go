// Package progress reports table build progress without flooding the log.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// Reporter turns (done, total) updates into either a redrawn status line on a
// terminal or periodic log lines.
type Reporter struct {
	lock sync.Mutex

	name    string
	out     io.Writer
	tty     bool
	limiter *rate.Limiter
	start   time.Time
}

type ReporterOpt func(*Reporter)

// WithInterval sets the minimum time between two reports.  The final report
// is always emitted.
func WithInterval(d time.Duration) ReporterOpt {
	return func(r *Reporter) {
		r.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithWriter sends status lines to w instead of the log.
func WithWriter(w io.Writer) ReporterOpt {
	return func(r *Reporter) {
		r.out = w
		r.tty = true
	}
}

// New creates a Reporter for the named table.  If stderr is a terminal,
// progress is drawn there; otherwise it goes to the log.
func New(name string, opts ...ReporterOpt) *Reporter {
	r := &Reporter{
		name:    name,
		out:     os.Stderr,
		tty:     term.IsTerminal(int(os.Stderr.Fd())),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		start:   time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update has the signature of lutbuild.ProgressFunction.
func (r *Reporter) Update(done, total int) {
	r.lock.Lock()
	defer r.lock.Unlock()

	final := done >= total
	if !final && !r.limiter.Allow() {
		return
	}

	percent := 100
	if total > 0 {
		percent = 100 * done / total
	}

	if r.tty {
		fmt.Fprintf(r.out, "\r%s %d/%d %d%%", r.name, done, total, percent)
		if final {
			fmt.Fprintf(r.out, " (%v)\n", time.Since(r.start).Round(time.Millisecond))
		}
		return
	}

	glog.Infof("%s: %d/%d cells (%d%%)", r.name, done, total, percent)
}
