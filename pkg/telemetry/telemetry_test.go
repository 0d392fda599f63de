package telemetry

import (
	"context"
	"testing"
)

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder

	ctx, span := r.StartOp(context.Background(), "op")
	if ctx != context.Background() {
		t.Error("StartOp on a nil Recorder should return ctx unchanged")
	}
	span.End() // must not panic

	r.RecordMatch(context.Background(), "GTC", 10)   // must not panic
	r.RecordMatchLatency(1234)                        // must not panic

	if got := r.Snapshot(); got != (LatencySnapshot{}) {
		t.Errorf("Snapshot() on a nil Recorder = %+v, want the zero value", got)
	}
}

func TestRecordMatchLatencyAccumulates(t *testing.T) {
	r := NewRecorder()

	r.RecordMatchLatency(1000)
	r.RecordMatchLatency(2000)
	r.RecordMatchLatency(3000)

	snap := r.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("Snapshot().Count = %d, want 3", snap.Count)
	}
	if snap.Min <= 0 || snap.Max < snap.Min {
		t.Errorf("Snapshot() min/max look wrong: %+v", snap)
	}
}

func TestStartOpReturnsUsableSpan(t *testing.T) {
	r := NewRecorder()
	ctx, span := r.StartOp(context.Background(), SpanAddOrder)
	defer span.End()

	if ctx == nil {
		t.Fatal("StartOp returned a nil context")
	}
}
