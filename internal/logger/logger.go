package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LevelTrace sits below debug and is enabled with -VVV.
const LevelTrace = slog.LevelDebug - 1

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	verboseCount  int
	format        = "text"
	output        io.Writer = os.Stderr
)

func init() {
	rebuild()
}

func levelFor(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelError
	case count == 1:
		return slog.LevelInfo
	case count == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// rebuild swaps the default logger; callers hold mu or run during init.
func rebuild() {
	opts := &slog.HandlerOptions{Level: levelFor(verboseCount)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func SetVerbosity(count int) {
	mu.Lock()
	defer mu.Unlock()
	verboseCount = count
	rebuild()
}

func GetVerbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return verboseCount
}

// SetFormat selects "json" or "text" (anything else) output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
}

// SetOutput redirects log output, os.Stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

func Trace(msg string, args ...any) {
	current().Log(context.Background(), LevelTrace, msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
