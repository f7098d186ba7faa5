// Package logging builds the zap logger shared by the CLI and the wizard
// components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formwizard/internal/config"
)

// Option configures New.
type Option func(*options)

type options struct {
	development bool
}

// WithDevelopment attaches stack traces to ERROR entries. Otherwise only
// DPANIC and above carry one.
func WithDevelopment(enabled bool) Option {
	return func(o *options) {
		o.development = enabled
	}
}

// New returns a logger for cfg and a closer that syncs it and releases any
// log file.
func New(cfg config.LogConfig, opts ...Option) (*zap.Logger, func() error, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	ws, closer, err := buildWriteSyncer(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	core := zapcore.NewCore(buildEncoder(cfg), ws, level)
	log := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(StacktraceLevel(o.development)),
	)

	return log, func() error {
		_ = log.Sync()
		if closer != nil {
			return closer.Close()
		}
		return nil
	}, nil
}

func buildEncoder(cfg config.LogConfig) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if strings.EqualFold(cfg.Format, "json") {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if isTerminal(cfg.Output) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriteSyncer(output string) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return zapcore.Lock(zapcore.AddSync(os.Stderr)), nil, nil
	case "stdout":
		return zapcore.Lock(zapcore.AddSync(os.Stdout)), nil, nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", output, err)
	}
	return zapcore.AddSync(file), file, nil
}

func isTerminal(output string) bool {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr", "stdout":
		return true
	}
	return false
}

// StacktraceLevel is the lowest level that carries a stack trace.
func StacktraceLevel(development bool) zapcore.Level {
	if development {
		return zapcore.ErrorLevel
	}
	return zapcore.DPanicLevel
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR to zap levels. Anything else is
// INFO.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
