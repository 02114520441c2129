// Package cli implements the artgraph command-line interface.
//
// Commands resolve a root artifact (a coordinate or a pom.xml) through the
// configured Maven repositories and print the result:
//   - tree: every dependency encounter, indented by depth
//   - list: the sorted set of distinct dependencies
//   - find: graph lookups by coordinate pattern
//   - graph: DOT, SVG or JSON export
//   - version: compare and sort version strings
//   - cache: manage the persistent descriptor cache
//   - serve: the same reports over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// travel through context.Context; reports go to stdout and everything else
// to stderr so output can be piped.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing timestamps as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Resolved 42 artifacts, 1 conflicts (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
