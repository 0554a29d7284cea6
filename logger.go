package tsbatch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with batch-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", name),
	}
}

// LogCommit logs a committed transaction.
func (l *Logger) LogCommit(ctx context.Context, initialRows, rows, columns int) {
	l.DebugContext(ctx, "transaction committed",
		"initial_rows", initialRows,
		"rows", rows,
		"columns", columns,
	)
}

// LogRollback logs a transaction that was abandoned without commit.
func (l *Logger) LogRollback(ctx context.Context, initialRows, rows, written int) {
	l.DebugContext(ctx, "transaction rolled back",
		"initial_rows", initialRows,
		"rows", rows,
		"columns_written", written,
	)
}

// LogWrite logs a failed column write.
func (l *Logger) LogWrite(ctx context.Context, column string, rows int, err error) {
	if err == nil {
		return
	}
	l.WarnContext(ctx, "column write failed",
		"column", column,
		"rows", rows,
		"error", err,
	)
}
