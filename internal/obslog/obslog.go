// Package obslog builds the structured logger used throughout the
// engine, grounded on Nrich-sunny-crawler/log/default.go's zap +
// lumberjack wiring: a JSON production encoder, ISO8601 timestamps,
// caller info, and rotation via lumberjack when logging to a file.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Empty defaults
	// to "info".
	Level string
	// FilePath, if set, routes output through a rotating lumberjack
	// sink instead of stderr.
	FilePath string
}

func defaultEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a *zap.Logger per opts. Writing to a file uses lumberjack
// with the teacher's rotation policy (200MB, compress, local time, no
// automatic backup pruning).
func New(opts Options) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(defaultEncoderConfig())
	level := parseLevel(opts.Level)

	var sink zapcore.WriteSyncer
	if opts.FilePath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:  opts.FilePath,
			MaxSize:   200,
			LocalTime: true,
			Compress:  true,
		})
	} else {
		sink = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(encoder, sink, level)

	stackTraceLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.DPanicLevel
	})
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(stackTraceLevel))
}
