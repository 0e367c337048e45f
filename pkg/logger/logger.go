package logger

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seeliang/google-cloud-engineering/config"
)

var once sync.Once
var core zapcore.Core

// GetZapLogger returns the process logger. Entries are also recorded as
// events on the span carried by ctx, if any.
func GetZapLogger(ctx context.Context) (*zap.Logger, error) {
	once.Do(func() {
		core = newCore(config.Config.Server.Debug, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
	})

	return zap.New(core, zap.Hooks(spanHook(ctx)), zap.AddCaller()), nil
}

// newCore writes JSON entries up to info to out and warnings and above to
// errOut. Debug entries and the development encoder are only used when debug
// is set.
func newCore(debug bool, out, errOut zapcore.WriteSyncer) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	lowest := zapcore.InfoLevel
	if debug {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		lowest = zapcore.DebugLevel
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	return zapcore.NewTee(
		zapcore.NewCore(encoder, out, levelRange(lowest, zapcore.InfoLevel)),
		zapcore.NewCore(encoder.Clone(), errOut, levelRange(zapcore.WarnLevel, zapcore.FatalLevel)),
	)
}

func levelRange(lowest, highest zapcore.Level) zap.LevelEnablerFunc {
	return func(l zapcore.Level) bool {
		return l >= lowest && l <= highest
	}
}

// spanHook adds every entry as an event on the span carried by ctx and marks
// the span failed on error entries.
func spanHook(ctx context.Context) func(zapcore.Entry) error {
	span := trace.SpanFromContext(ctx)

	return func(entry zapcore.Entry) error {
		if !span.IsRecording() {
			return nil
		}

		span.AddEvent("log", trace.WithAttributes(
			attribute.String("log.severity", entry.Level.String()),
			attribute.String("log.message", entry.Message),
		))
		if entry.Level >= zapcore.ErrorLevel {
			span.SetStatus(codes.Error, entry.Message)
		}
		return nil
	}
}
