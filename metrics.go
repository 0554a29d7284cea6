package tsbatch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting transaction metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCommit is called after each committed transaction.
	// rows is the number of appended rows, columns the number of columns
	// explicitly written, duration the lifetime of the writer.
	RecordCommit(rows, columns int, duration time.Duration)

	// RecordRollback is called after each transaction abandoned without commit.
	RecordRollback(rows int, duration time.Duration)

	// RecordWriteError is called when a column write returns an error.
	RecordWriteError(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCommit(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordRollback(int, time.Duration)    {}
func (NoopMetricsCollector) RecordWriteError(error)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CommitCount      atomic.Int64
	CommitRows       atomic.Int64
	CommitTotalNanos atomic.Int64
	RollbackCount    atomic.Int64
	RollbackRows     atomic.Int64
	WriteErrors      atomic.Int64
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(rows, columns int, duration time.Duration) {
	b.CommitCount.Add(1)
	b.CommitRows.Add(int64(rows))
	b.CommitTotalNanos.Add(duration.Nanoseconds())
}

// RecordRollback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRollback(rows int, duration time.Duration) {
	b.RollbackCount.Add(1)
	b.RollbackRows.Add(int64(rows))
}

// RecordWriteError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWriteError(error) {
	b.WriteErrors.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CommitCount:    b.CommitCount.Load(),
		CommitRows:     b.CommitRows.Load(),
		CommitAvgNanos: b.getAvgCommitNanos(),
		RollbackCount:  b.RollbackCount.Load(),
		RollbackRows:   b.RollbackRows.Load(),
		WriteErrors:    b.WriteErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgCommitNanos() int64 {
	count := b.CommitCount.Load()
	if count == 0 {
		return 0
	}
	return b.CommitTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CommitCount    int64
	CommitRows     int64
	CommitAvgNanos int64
	RollbackCount  int64
	RollbackRows   int64
	WriteErrors    int64
}
