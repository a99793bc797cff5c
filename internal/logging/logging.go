// Package logging builds the charmbracelet/log loggers used by the CLI and
// the HTTP server, and carries them through context.Context.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w that filters messages below level.
// Timestamps are formatted as "HH:MM:SS.ms".
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Level maps the --debug flag to a log level.
func Level(debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// Configure raises l to debug level when debug is set, never lowering a
// level chosen earlier, and adds the caller to each line when verbose is set.
func Configure(l *log.Logger, debug, verbose bool) {
	if debug && l.GetLevel() > log.DebugLevel {
		l.SetLevel(log.DebugLevel)
	}
	if verbose {
		l.SetReportCaller(true)
	}
}

// Progress logs the completion of an operation with its duration.
// It is not safe for concurrent use.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress starts timing an operation.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg along with the elapsed time, for example
// "Rendered 42 nodes (1.234s)". Extra keyvals are passed through.
func (p *Progress) Done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
