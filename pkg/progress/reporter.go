package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultInterval is how often a Reporter polls its counter
const DefaultInterval = 250 * time.Millisecond

// Counter exposes render progress in scanlines
type Counter interface {
	ScanlinesCompleted() int
	TotalScanlines() int
}

// Reporter periodically reports a Counter's progress to a logger and,
// optionally, as a single rewritten status line on a terminal writer.
type Reporter struct {
	counter  Counter
	interval time.Duration
	logger   *slog.Logger
	out      io.Writer
	printer  *message.Printer
	last     int
}

// Option configures a Reporter
type Option func(*Reporter)

// WithInterval sets the polling interval
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger that receives progress records
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = core.LoggerOrNop(logger)
	}
}

// WithWriter enables the status line on w, typically stderr
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithLanguage sets the language used to format counts
func WithLanguage(tag language.Tag) Option {
	return func(r *Reporter) {
		r.printer = message.NewPrinter(tag)
	}
}

// NewReporter creates a reporter for counter
func NewReporter(counter Counter, opts ...Option) *Reporter {
	r := &Reporter{
		counter:  counter,
		interval: DefaultInterval,
		logger:   core.NopLogger(),
		printer:  message.NewPrinter(language.English),
		last:     -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reports on every tick until ctx is done, then reports once more
// so the final count is always shown.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Report()
		case <-ctx.Done():
			r.Report()
			r.finish()
			return nil
		}
	}
}

// Report emits the current progress if it changed since the last report
func (r *Reporter) Report() {
	completed := r.counter.ScanlinesCompleted()
	if completed == r.last {
		return
	}
	r.last = completed

	total := r.counter.TotalScanlines()
	percent := 0.0
	if total > 0 {
		percent = 100 * float64(completed) / float64(total)
	}

	r.logger.Debug("scanlines completed",
		"completed", completed,
		"total", total,
		"percent", fmt.Sprintf("%.1f", percent))

	if r.out != nil {
		r.printer.Fprintf(r.out, "\rScanlines completed: %d/%d (%.1f%%)", completed, total, percent)
	}
}

// Line formats the status line for the given counts
func (r *Reporter) Line(completed, total int) string {
	return r.printer.Sprintf("Scanlines completed: %d/%d", completed, total)
}

func (r *Reporter) finish() {
	if r.out != nil {
		fmt.Fprintln(r.out, "\nDone.")
	}
}
