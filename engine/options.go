package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/govalues/fxswap"
)

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. The engine logs under the "engine" name.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics sets the metrics the engine reports to.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithOutputDigits sets how many fractional digits the engine writes into
// the computed field.
// [fxswap.TrimZeros], the default, writes all significant digits.
func WithOutputDigits(digits int) Option {
	return func(e *Engine) {
		e.digits = max(digits, fxswap.TrimZeros)
	}
}

// WithNotify registers a function called with a fresh snapshot after every
// state change.
// It is called outside the engine lock, possibly from several goroutines;
// compare [Snapshot.Version] to order notifications.
func WithNotify(fn func(Snapshot)) Option {
	return func(e *Engine) {
		e.notify = fn
	}
}

// WithContext sets the parent of the context passed to the rates provider.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		if ctx != nil {
			e.parent = ctx
		}
	}
}
