package traitdex

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with traitdex-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogStage logs the completion of one pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, duration time.Duration, attrs ...any) {
	args := append([]any{
		"stage", stage,
		"duration", duration,
	}, attrs...)
	l.InfoContext(ctx, "stage completed", args...)
}

// LogSkippedItem logs an item excluded by the strict missing-data policy.
func (l *Logger) LogSkippedItem(ctx context.Context, id int) {
	l.WarnContext(ctx, "incomplete record skipped",
		"id", id,
	)
}

// LogArtifact logs a written artifact document.
func (l *Logger) LogArtifact(ctx context.Context, name string) {
	l.DebugContext(ctx, "artifact written",
		"artifact", name,
	)
}

// LogConsistency logs the advisory end-of-run consistency check.
func (l *Logger) LogConsistency(ctx context.Context, emptyGroups []string) {
	if len(emptyGroups) > 0 {
		l.WarnContext(ctx, "consistency check found empty group pair lists",
			"count", len(emptyGroups),
			"groups", emptyGroups,
		)
	} else {
		l.InfoContext(ctx, "consistency check passed")
	}
}

// LogPublish logs a published artifact.
func (l *Logger) LogPublish(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"artifact", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "artifact published",
			"artifact", name,
			"bytes", size,
		)
	}
}
