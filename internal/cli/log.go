// Logging helpers for the metromap CLI.
//
// Diagnostics go to stderr through charmbracelet/log; rendered artifacts and
// user-facing status lines go to stdout. --verbose lowers the level to debug,
// which also surfaces per-stage cache and collision details from the pipeline.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. At debug level it also reports the
// caller.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		ReportCaller:    level <= log.DebugLevel,
		Level:           level,
	})
}

// progress measures one pipeline run for the summary log line.
type progress struct {
	logger *log.Logger
	start  time.Time
	now    func() time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now(), now: time.Now}
}

// done logs msg at info level with keyvals and the elapsed time, rounded
// to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := p.now().Sub(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for subcommands that only receive a context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
