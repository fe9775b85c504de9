// Package logging builds the CLI's zap logger and mirrors client lifecycle
// events into it.
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventbus "github.com/hanpama/shapeql/internal/eventbus"
	events "github.com/hanpama/shapeql/internal/events"
	reqid "github.com/hanpama/shapeql/internal/reqid"
)

// New returns a production zap logger at the given level ("debug", "info",
// "warn", "error").
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Subscribe logs query and HTTP lifecycle events from the global bus.
// Successful events log at debug, failures at warn.
func Subscribe(logger *zap.Logger) (unsubscribe func()) {
	offs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.QueryStart) {
			logger.Debug("query start", withRequestID(ctx,
				zap.String("operation", e.OperationName),
				zap.String("address", e.Address))...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.QueryFinish) {
			fields := withRequestID(ctx,
				zap.String("operation", e.OperationName),
				zap.Duration("duration", e.Duration))
			if e.Err != nil {
				logger.Warn("query failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Debug("query finished", fields...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPClientStart) {
			logger.Debug("http request", withRequestID(ctx,
				zap.String("method", e.Method),
				zap.String("url", e.URL))...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPClientFinish) {
			fields := withRequestID(ctx,
				zap.String("url", e.URL),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration))
			if e.Err != nil {
				logger.Warn("http request failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Debug("http response", fields...)
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func withRequestID(ctx context.Context, fields ...zap.Field) []zap.Field {
	if id, ok := reqid.FromContext(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}
