// Package logging wraps zap for the CLI and the sandbox server. Library
// packages only log through Global, which discards until a command
// installs a real logger.
package logging

import (
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a zap.Logger whose With and Named keep the wrapper type.
type Logger struct {
	*zap.Logger
}

type Config struct {
	// Level is a zap level name; empty means info
	Level string

	// Format is "json" or "console"
	Format string

	// Development switches to colored console output with caller and
	// stack traces on errors
	Development bool
}

// DefaultConfig writes JSON at info level.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

func DevelopmentConfig() Config {
	return Config{Level: "debug", Format: "console", Development: true}
}

// New builds a logger writing to w. Command output goes to stdout, so the
// CLI passes stderr here.
func New(config Config, w io.Writer) (*Logger, error) {
	level := zapcore.InfoLevel
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}

	enc := zap.NewProductionEncoderConfig()
	if config.Development {
		enc = zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(enc)
	case "console":
		encoder = zapcore.NewConsoleEncoder(enc)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", config.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	var opts []zap.Option
	if config.Development {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel), zap.Development())
	}
	return &Logger{zap.New(core, opts...)}, nil
}

func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

var global atomic.Pointer[Logger]

func init() {
	global.Store(NewNop())
}

// SetGlobal replaces the process logger. Loggers already derived from the
// previous one keep writing to it.
func SetGlobal(logger *Logger) {
	global.Store(logger)
}

func Global() *Logger {
	return global.Load()
}
