package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	boardRoute    = "/api/board"
	boardSpanName = "worklist.api.board"
	tracerName    = "worklist/api"
)

// boardRequestMetrics collects stage timings for the board read path and
// emits them both as a structured log line and as an otel span with a
// single observability event.
type boardRequestMetrics struct {
	logger         *log.Logger
	span           trace.Span
	start          time.Time
	fetchDuration  time.Duration
	encodeDuration time.Duration
	tasksReturned  int
	errorStage     string
}

func newBoardRequestMetrics(ctx context.Context, logger *log.Logger) (*boardRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, boardSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.route", boardRoute)))
	return &boardRequestMetrics{logger: logger, span: span, start: time.Now()}, spanCtx
}

func (m *boardRequestMetrics) ObserveFetch(d time.Duration) {
	if d > 0 {
		m.fetchDuration = d
	}
}

func (m *boardRequestMetrics) ObserveEncode(d time.Duration) {
	if d > 0 {
		m.encodeDuration = d
	}
}

func (m *boardRequestMetrics) SetTasksReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *boardRequestMetrics) SetErrorStage(stage string) {
	if stage != "" {
		m.errorStage = stage
	}
}

// Log finalizes the request: one structured log line plus span attributes,
// a span event and span status. Safe to call exactly once per request.
func (m *boardRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	totalMs := durationToMillis(time.Since(m.start))

	if m.logger != nil {
		fields := log.Fields{
			"route":          boardRoute,
			"status":         status,
			"total_ms":       totalMs,
			"tasks_returned": m.tasksReturned,
		}
		if m.fetchDuration > 0 {
			fields["fetch_ms"] = durationToMillis(m.fetchDuration)
		}
		if m.encodeDuration > 0 {
			fields["encode_ms"] = durationToMillis(m.encodeDuration)
		}
		if m.errorStage != "" {
			fields["error_stage"] = m.errorStage
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		m.logger.WithFields(fields).Info("board.request.metrics")
	}

	if m.span == nil {
		return
	}
	m.span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Int("worklist.board.tasks_returned", m.tasksReturned),
	)
	if m.errorStage != "" {
		m.span.SetAttributes(attribute.String("worklist.board.error_stage", m.errorStage))
	}
	severity := "INFO"
	if err != nil || status >= 500 {
		severity = "ERROR"
	}
	m.span.AddEvent("observability.event", trace.WithAttributes(
		attribute.String("severity_text", severity),
		attribute.Float64("worklist.board.total_ms", totalMs),
	))
	if err != nil {
		m.span.RecordError(err)
		m.span.SetStatus(codes.Error, err.Error())
	} else {
		m.span.SetStatus(codes.Ok, "")
	}
	m.span.End()
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
