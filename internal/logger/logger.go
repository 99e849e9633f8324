package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Options select the encoder and the fields stamped on every line.
type Options struct {
	Env     string
	Service string
	// Level is debug, info, warn or error; empty or unknown keeps the
	// environment default.
	Level string
}

// Init initializes zap logger depending on the environment.
func Init(opts Options) {
	var cfg zap.Config

	if opts.Env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl, err := zapcore.ParseLevel(opts.Level); opts.Level != "" && err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	// Build logger
	var err error
	log, err = cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.Fields(baseFields(opts)...))
	if err != nil {
		panic(err)
	}
}

func baseFields(opts Options) []zap.Field {
	var fields []zap.Field
	if opts.Service != "" {
		fields = append(fields, zap.String("service", opts.Service))
	}
	if opts.Env != "" {
		fields = append(fields, zap.String("env", opts.Env))
	}
	return fields
}

// L returns the global logger.
func L() *zap.Logger {
	if log == nil {
		Init(Options{Env: os.Getenv("APP_ENV"), Level: os.Getenv("LOG_LEVEL")})
	}
	return log
}

// Sync flushes logs.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}
