// Package logging builds the slog loggers used by the client and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel selects the log level: debug|info|warn|error (default: info).
const EnvLogLevel = "LOG_LEVEL"

type ShutdownFunc func() error

// NewLogger creates a structured logger backed by zap and exposed through
// slog. It uses zap's production settings with ISO8601 timestamps. An empty
// level falls back to the LOG_LEVEL environment variable.
func NewLogger(level string) (*slog.Logger, ShutdownFunc, error) {
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}

	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout carries command output
	logConfig.OutputPaths = []string{"stderr"}
	if l := ParseLevel(level); l != nil {
		logConfig.Level = zap.NewAtomicLevelAt(*l)
	}
	zapLog, err := logConfig.Build()
	if err != nil {
		return nil, nil, err
	}
	return FromCore(zapLog.Core()), newShutdownFunc(zapLog.Core()), nil
}

// FromCore wraps a zap core in an slog logger.
func FromCore(core zapcore.Core) *slog.Logger {
	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))
}

// FallbackLogger is used when the zap logger cannot be built.
func FallbackLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newShutdownFunc(core zapcore.Core) ShutdownFunc {
	return func() error {
		return core.Sync()
	}
}

// ParseLevel maps a level name to a zap level. It returns nil for the
// default (info) and for unknown names.
func ParseLevel(s string) *zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		l := zapcore.DebugLevel
		return &l
	case "info", "":
		return nil
	case "warn":
		l := zapcore.WarnLevel
		return &l
	case "error":
		l := zapcore.ErrorLevel
		return &l
	default:
		return nil
	}
}
