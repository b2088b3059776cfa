package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}

// New builds the process logger: colored lines on console and, when logFile is set,
// JSON records appended to that file. The returned func closes the file.
func New(console io.Writer, level slog.Level, logFile string) (*slog.Logger, func() error, error) {
	consoleHandler := NewHandler(console, &Options{
		Level:      level,
		TimeFormat: DefaultOptions.TimeFormat,
		AddSource:  true,
	})

	if logFile == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return slog.New(slogmulti.Fanout(consoleHandler, NewJSONHandler(file, level))), file.Close, nil
}

// NewJSONHandler writes JSON records and copies the request id from the context into each one.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	withRequestID := slogmulti.NewHandleInlineMiddleware(
		func(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
			if requestID, ok := RequestIDFromContext(ctx); ok {
				record.AddAttrs(slog.String(string(requestIDKey), requestID))
			}
			return next(ctx, record)
		},
	)

	return slogmulti.Pipe(withRequestID).Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
