// Package logging configures the process-wide slog logger and attaches the
// current cycle ID to log lines.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/beyondtyping/beyond/common/trace"
)

// ParseLevel maps "debug", "warn", "error" to their slog levels; anything
// else is Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w in the given format ("json" or text).
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs the default slog logger. Logs go to stderr so that the
// console transport can own stdout.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// WithTrace returns a child of the default logger that always includes the
// trace_id from ctx.
func WithTrace(ctx context.Context) *slog.Logger {
	return Traced(ctx, slog.Default())
}

// Traced is WithTrace for an explicit base logger.
func Traced(ctx context.Context, base *slog.Logger) *slog.Logger {
	traceID := trace.FromContext(ctx)
	if traceID == "" {
		return base
	}
	return base.With("trace_id", traceID)
}
