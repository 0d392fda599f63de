// Package telemetry instruments the order book with OpenTelemetry spans
// and counters and an HdrHistogram-backed latency recorder, mirroring
// the teacher's pkg/otel package. Unlike the teacher, no OTLP/gRPC
// exporter is wired: spec.md's non-goals rule out any network surface
// for this module, so the TracerProvider and MeterProvider here are
// purely in-process — useful for unit tests and for embedding
// applications that install their own global providers, but they do not
// ship data anywhere on their own.
package telemetry

import (
	"context"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/erain9/limitbook/pkg/book"

// Span and attribute names, mirroring pkg/otel/order_tracing.go.
const (
	SpanAddOrder    = "book.add_order"
	SpanCancelOrder = "book.cancel_order"
	SpanModifyOrder = "book.modify_order"
	SpanMatchLoop   = "book.match_loop"

	AttributeOrderID    = "order.id"
	AttributeOrderSide  = "order.side"
	AttributeOrderType  = "order.type"
	AttributeTradeCount = "trade.count"
)

// Recorder bundles a tracer, a matched-quantity counter, and a
// match-loop latency histogram. A nil *Recorder is safe to use — every
// method degrades to a no-op — so Book works without telemetry wired.
type Recorder struct {
	tracer  trace.Tracer
	matched metric.Int64Counter

	mu      sync.Mutex
	latency *hdrhistogram.Histogram
}

// NewRecorder builds a Recorder backed by fresh in-process tracer and
// meter providers. Callers embedding limitbook in a larger service can
// instead call otel.SetTracerProvider/otel.SetMeterProvider themselves
// and construct a Recorder with NewRecorderFromGlobal.
func NewRecorder() *Recorder {
	tp := sdktrace.NewTracerProvider()
	mp := sdkmetric.NewMeterProvider()
	return newRecorder(tp.Tracer(instrumentationName), mp.Meter(instrumentationName))
}

// NewRecorderFromGlobal builds a Recorder using whatever global
// TracerProvider/MeterProvider are currently installed via
// otel.SetTracerProvider / otel.SetMeterProvider.
func NewRecorderFromGlobal() *Recorder {
	return newRecorder(otel.Tracer(instrumentationName), otel.Meter(instrumentationName))
}

func newRecorder(tracer trace.Tracer, meter metric.Meter) *Recorder {
	counter, err := meter.Int64Counter(
		"book.matched_quantity.total",
		metric.WithDescription("Total quantity matched, by order type"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		counter = nil
	}

	hist := hdrhistogram.New(1, 10_000_000, 3)

	return &Recorder{
		tracer:  tracer,
		matched: counter,
		latency: hist,
	}
}

// StartOp starts a span for a public Book operation. Safe to call on a
// nil Recorder (returns ctx unchanged and a no-op span).
func (r *Recorder) StartOp(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if r == nil || r.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordMatch increments the matched-quantity counter for orderType by
// qty. Safe to call on a nil Recorder.
func (r *Recorder) RecordMatch(ctx context.Context, orderType string, qty int64) {
	if r == nil || r.matched == nil {
		return
	}
	r.matched.Add(ctx, qty, metric.WithAttributes(attribute.String(AttributeOrderType, orderType)))
}

// RecordMatchLatency records the duration of one matching-loop pass, in
// nanoseconds. Safe to call on a nil Recorder.
func (r *Recorder) RecordMatchLatency(nanos int64) {
	if r == nil || r.latency == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.latency.RecordValue(nanos)
}

// LatencySnapshot is a read-only view of the match-loop latency
// distribution collected so far, in nanoseconds.
type LatencySnapshot struct {
	Count  int64
	Min    int64
	Max    int64
	Mean   float64
	P50    int64
	P95    int64
	P99    int64
}

// Snapshot returns the current latency distribution. Safe to call on a
// nil Recorder (returns the zero value).
func (r *Recorder) Snapshot() LatencySnapshot {
	if r == nil || r.latency == nil {
		return LatencySnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return LatencySnapshot{
		Count: r.latency.TotalCount(),
		Min:   r.latency.Min(),
		Max:   r.latency.Max(),
		Mean:  r.latency.Mean(),
		P50:   r.latency.ValueAtQuantile(50.0),
		P95:   r.latency.ValueAtQuantile(95.0),
		P99:   r.latency.ValueAtQuantile(99.0),
	}
}
