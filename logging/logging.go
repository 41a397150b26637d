/*
Package logging provides the shared zap logger for the dashboard engine.

PURPOSE:
  One place to construct the process logger and to carry it through
  context.Context so long-running components (consumer, pipeline, server)
  never reach for a global.

USAGE:
  log := logging.NewLogger(cfg.Debug)
  ctx := logging.WithLogger(ctx, log)
  ...
  logging.FromContext(ctx).Infow("started", "topic", topic)

SEE ALSO:
  - cmd/dashboard/main.go: constructs the root logger
  - pipeline/loop.go: pulls the logger from context
*/
package logging

import (
	"context"

	"go.uber.org/zap"
)

// NewLogger returns a named sugared logger writing to stdout.
// Debug mode switches to the human-readable development encoder.
func NewLogger(debug bool) *zap.SugaredLogger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.OutputPaths = []string{"stdout"}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named("skippy").Sugar()
}

type loggerKey struct{}

// WithLogger returns a copy of parent context carrying the supplied logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a fresh production
// logger when none was attached.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return NewLogger(false)
}
