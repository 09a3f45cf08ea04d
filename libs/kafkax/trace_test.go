package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	if err != nil {
		t.Fatal(err)
	}
	spanID, err := trace.SpanIDFromHex("b7ad6b7169203331")
	if err != nil {
		t.Fatal(err)
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestInjectTraceHeadersAppends(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	headers := []kafka.Header{{Key: "event_id", Value: []byte("evt-1")}}
	headers = InjectTraceHeaders(spanContext(t), headers)

	// The trace header is new to the slice; it must survive injection.
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatal("traceparent header missing after injection")
	}
	if HeaderValue(headers, "event_id") != "evt-1" {
		t.Fatal("existing headers must be preserved")
	}
}

func TestInjectTraceHeadersOverwrites(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	headers := []kafka.Header{{Key: "traceparent", Value: []byte("stale")}}
	headers = InjectTraceHeaders(spanContext(t), headers)

	got := HeaderValue(headers, "traceparent")
	if got == "stale" || got == "" {
		t.Fatalf("traceparent = %q, want refreshed value", got)
	}
	if n := len(headers); n != 1 {
		t.Fatalf("expected overwrite, not duplicate header; got %d headers", n)
	}
}

func TestExtractTraceContextRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	headers := InjectTraceHeaders(spanContext(t), nil)
	ctx := ExtractTraceContext(context.Background(), kafka.Message{Headers: headers})

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		t.Fatal("expected a valid remote span context")
	}
	if sc.TraceID().String() != "0af7651916cd43dd8448eb211c80319c" {
		t.Fatalf("trace id = %s", sc.TraceID())
	}
}
