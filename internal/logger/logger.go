package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures a Logger.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // defaults to stdout
}

type implLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// New creates a text Logger writing to stdout at the given level.
func New(level string) Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a Logger from Options.
func NewWithOptions(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := parseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &implLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return NewWithOptions(Options{Level: "error", Output: io.Discard})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func (l *implLogger) shouldLog(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return parseLevel(level) >= l.level
	default:
		return true
	}
}

func (l *implLogger) log(ctx context.Context, level slog.Level, msg string, args []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelError, msg, args)
}
