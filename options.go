package tsbatch

import (
	"log/slog"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Batch.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for transactions.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tsbatch.BasicMetricsCollector{}
//	b := tsbatch.New(tsbatch.WithMetricsCollector(metrics))
//	// ... append rows ...
//	stats := metrics.GetStats()
//	fmt.Printf("Commits: %d, Rollbacks: %d\n", stats.CommitCount, stats.RollbackCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for transactions.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tsbatch.NewJSONLogger(slog.LevelDebug)
//	b := tsbatch.New(tsbatch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
