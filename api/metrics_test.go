package api

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestBoardRequestMetricsSuccessSpan(t *testing.T) {
	sr := setupSpanRecorder(t)
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	m, spanCtx := newBoardRequestMetrics(context.Background(), logger)
	if spanCtx == nil {
		t.Fatal("span context not returned")
	}
	m.ObserveFetch(3 * time.Millisecond)
	m.ObserveEncode(time.Millisecond)
	m.SetTasksReturned(5)
	m.Log(200, nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != boardSpanName {
		t.Fatalf("span name = %s", span.Name())
	}
	if v, ok := spanAttr(span, "http.route"); !ok || v.AsString() != boardRoute {
		t.Fatalf("http.route attr = %v", v)
	}
	if v, ok := spanAttr(span, "http.status_code"); !ok || v.AsInt64() != 200 {
		t.Fatalf("status attr = %v", v)
	}
	if v, ok := spanAttr(span, "worklist.board.tasks_returned"); !ok || v.AsInt64() != 5 {
		t.Fatalf("tasks_returned attr = %v", v)
	}
	if span.Status().Code != codes.Ok {
		t.Fatalf("status code = %v", span.Status().Code)
	}

	events := span.Events()
	if len(events) != 1 || events[0].Name != "observability.event" {
		t.Fatalf("events = %v", events)
	}
	severityFound := false
	for _, kv := range events[0].Attributes {
		if kv.Key == "severity_text" && kv.Value.AsString() == "INFO" {
			severityFound = true
		}
	}
	if !severityFound {
		t.Fatal("severity_text INFO not on event")
	}
}

func TestBoardRequestMetricsErrorSpan(t *testing.T) {
	sr := setupSpanRecorder(t)
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	m, _ := newBoardRequestMetrics(context.Background(), logger)
	m.SetErrorStage("encode_response")
	m.Log(500, errors.New("broken pipe"))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if v, ok := spanAttr(span, "worklist.board.error_stage"); !ok || v.AsString() != "encode_response" {
		t.Fatalf("error_stage attr = %v", v)
	}
	if span.Status().Code != codes.Error {
		t.Fatalf("status code = %v", span.Status().Code)
	}
	severity := ""
	for _, ev := range span.Events() {
		if ev.Name != "observability.event" {
			continue
		}
		for _, kv := range ev.Attributes {
			if kv.Key == "severity_text" {
				severity = kv.Value.AsString()
			}
		}
	}
	if severity != "ERROR" {
		t.Fatalf("severity = %q", severity)
	}
}

func TestBoardRequestMetricsGuards(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	m, _ := newBoardRequestMetrics(context.Background(), logger)

	m.ObserveFetch(-time.Second)
	m.ObserveEncode(0)
	m.SetTasksReturned(-3)
	m.SetErrorStage("")
	if m.fetchDuration != 0 || m.encodeDuration != 0 {
		t.Fatalf("negative durations recorded: %v %v", m.fetchDuration, m.encodeDuration)
	}
	if m.tasksReturned != 0 {
		t.Fatalf("tasksReturned = %d", m.tasksReturned)
	}
	if m.errorStage != "" {
		t.Fatalf("errorStage = %q", m.errorStage)
	}
	m.Log(200, nil)

	// A nil receiver is a no-op.
	var nilMetrics *boardRequestMetrics
	nilMetrics.Log(200, nil)
}

func TestDurationToMillis(t *testing.T) {
	if got := durationToMillis(0); got != 0 {
		t.Fatalf("zero = %v", got)
	}
	if got := durationToMillis(-time.Second); got != 0 {
		t.Fatalf("negative = %v", got)
	}
	if got := durationToMillis(1500 * time.Microsecond); got != 1.5 {
		t.Fatalf("1.5ms = %v", got)
	}
}
