package logger

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	log *zap.Logger
}

// Options tunes NewLogger.
type Options struct {
	Level  string
	IsProd bool
	Output io.Writer
}

// NewLogger builds a JSON zap logger tagged with the service name.
func NewLogger(serviceName string, opts Options) Logger {
	var config zapcore.EncoderConfig
	level := zapcore.DebugLevel

	if opts.IsProd {
		config = zap.NewProductionEncoderConfig()
		level = zapcore.InfoLevel
	} else {
		config = zap.NewDevelopmentEncoderConfig()
	}
	if opts.Level != "" {
		if parsed, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(config),
		zapcore.AddSync(out),
		level,
	)
	if opts.IsProd {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 0)
	}
	l := zap.New(core).With(zap.String("service", serviceName))
	return &zapLogger{log: l}
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.InfoLevel) {
		z.log.Info(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.DebugLevel) {
		z.log.Debug(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.WarnLevel) {
		z.log.Warn(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.ErrorLevel) {
		z.log.Error(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{log: z.log.With(z.convertFields(fields)...)}
}

// enrich appends trace ids when ctx carries a valid span.
func (z *zapLogger) enrich(ctx context.Context, fields []Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	zapFields = append(zapFields, z.convertFields(fields)...)

	if ctx == nil {
		return zapFields
	}
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		zapFields = append(zapFields,
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return zapFields
}

func (z *zapLogger) convertFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		val := f.Value
		if fn, ok := f.Value.(func() any); ok {
			val = fn()
		}
		switch v := val.(type) {
		case string:
			if f.Kind == KindString {
				out[i] = zap.String(f.Key, v)
				continue
			}
		case int:
			if f.Kind == KindInt {
				out[i] = zap.Int(f.Key, v)
				continue
			}
		case int64:
			if f.Kind == KindInt64 {
				out[i] = zap.Int64(f.Key, v)
				continue
			}
		case bool:
			if f.Kind == KindBool {
				out[i] = zap.Bool(f.Key, v)
				continue
			}
		case time.Duration:
			if f.Kind == KindDuration {
				out[i] = zap.Duration(f.Key, v)
				continue
			}
		case error:
			if f.Kind == KindError {
				out[i] = zap.Error(v)
				continue
			}
		}
		// mismatched kinds (ex: KindString with an int) still get logged
		out[i] = zap.Any(f.Key, val)
	}
	return out
}
