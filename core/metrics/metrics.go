package metrics

import "time"

// MutationRecord captures a single workspace mutation for observability.
type MutationRecord struct {
	Scope string
	Op    string
	Mode  string
	Time  time.Time
}

// ApplyRecord captures the outcome of an overlay replay.
type ApplyRecord struct {
	Scope    string
	Updates  int
	Creates  int
	Deletes  int
	Failed   bool
	Duration time.Duration
	Time     time.Time
}

// CapacityPoint is one day of aggregated load exported to a sink.
type CapacityPoint struct {
	Scope string
	Date  time.Time
	Hours float64
	Band  string
}

// Sink records workspace activity. Implementations must be safe for use
// from multiple goroutines.
type Sink interface {
	RecordMutation(rec MutationRecord) error
	RecordApply(rec ApplyRecord) error
	RecordCapacity(points []CapacityPoint) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordMutation(MutationRecord) error  { return nil }
func (NopSink) RecordApply(ApplyRecord) error        { return nil }
func (NopSink) RecordCapacity([]CapacityPoint) error { return nil }
