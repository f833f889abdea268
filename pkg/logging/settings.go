package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	initialSampling    = 100
	thereafterSampling = 100
)

type Option func(*settings)

// WithService stamps every entry with a "service" field.
func WithService(name string) Option {
	return func(s *settings) {
		s.config.InitialFields["service"] = name
	}
}

func WithOutputPaths(paths ...string) Option {
	return func(s *settings) {
		s.config.OutputPaths = paths
	}
}

// WithConsoleEncoding switches to the human readable encoder and disables sampling.
func WithConsoleEncoding() Option {
	return func(s *settings) {
		s.config.Encoding = "console"
		s.config.Sampling = nil
		s.config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
}

type settings struct {
	config zap.Config
	opts   []zap.Option
}

func newSettings(level zap.AtomicLevel, opts ...Option) *settings {
	s := &settings{
		config: zap.Config{
			Level: level,
			Sampling: &zap.SamplingConfig{
				Initial:    initialSampling,
				Thereafter: thereafterSampling,
			},
			Encoding: "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "@timestamp",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "message",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeLevel:    zapcore.CapitalLevelEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			InitialFields:    map[string]any{},
		},
		opts: []zap.Option{
			zap.AddCallerSkip(1),
			zap.AddStacktrace(zapcore.ErrorLevel),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
