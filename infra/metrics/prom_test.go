package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/pcouderc/worksched/core/metrics"
)

func newTestSink(t *testing.T) *PromSink {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	return sink
}

func TestPromSinkMutations(t *testing.T) {
	sink := newTestSink(t)
	rec := coremetrics.MutationRecord{Scope: "p1", Op: "shift", Mode: "whatif", Time: time.Now()}
	if err := sink.RecordMutation(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordMutation(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := testutil.ToFloat64(sink.mutations.WithLabelValues("p1", "shift", "whatif"))
	if got != 2 {
		t.Fatalf("mutations counter %v, want 2", got)
	}
}

func TestPromSinkApplyPending(t *testing.T) {
	sink := newTestSink(t)
	err := sink.RecordApply(coremetrics.ApplyRecord{
		Scope: "p1", Updates: 2, Creates: 1, Failed: true,
		Duration: 40 * time.Millisecond, Time: time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.pending); got != 3 {
		t.Fatalf("pending gauge %v, want 3", got)
	}
	err = sink.RecordApply(coremetrics.ApplyRecord{Scope: "p1", Time: time.Now()})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.pending); got != 0 {
		t.Fatalf("pending gauge after success %v, want 0", got)
	}
}

func TestPromSinkCapacitySummary(t *testing.T) {
	sink := newTestSink(t)
	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	err := sink.RecordCapacity([]coremetrics.CapacityPoint{
		{Scope: "p1", Date: day, Hours: 8, Band: "fully_booked"},
		{Scope: "p1", Date: day.AddDate(0, 0, 1), Hours: 16, Band: "over_capacity"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.capacity.WithLabelValues("p1", "total")); got != 24 {
		t.Fatalf("total %v, want 24", got)
	}
	if got := testutil.ToFloat64(sink.capacity.WithLabelValues("p1", "peak")); got != 16 {
		t.Fatalf("peak %v, want 16", got)
	}
}
