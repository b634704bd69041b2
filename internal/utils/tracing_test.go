package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := map[string]attribute.Value{}
	for _, a := range attrs {
		out[string(a.Key)] = a.Value
	}
	return out
}

func TestTraceOperation(t *testing.T) {
	recorder := setupRecorder(t)

	_, _, done := TraceOperation(context.Background(), "proponente.create", map[string]interface{}{
		"tipo":  "fisica",
		"count": 2,
		"ok":    true,
		"other": time.Second,
	})
	done()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "proponente.create", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "fisica", attrs["tipo"].AsString())
	assert.Equal(t, int64(2), attrs["count"].AsInt64())
	assert.True(t, attrs["ok"].AsBool())
	assert.Equal(t, "unknown_type", attrs["other"].AsString())
	assert.Contains(t, attrs, "duration_ms")
}

func TestTraceEndpointSteps(t *testing.T) {
	recorder := setupRecorder(t)
	ctx := context.Background()

	_, span := TraceInputValidation(ctx, "tipo", "tipo")
	span.End()
	_, span = TraceDatabaseFind(ctx, "proponentes", "cityId")
	span.End()
	_, span = TraceExternalService(ctx, "viacep", "lookup")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "endpoint.step.validate_input", spans[0].Name())
	assert.Equal(t, "endpoint.step.database_find", spans[1].Name())
	assert.Equal(t, "viacep", attrMap(spans[2].Attributes())["service.name"].AsString())
}

func TestRecordErrorInSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := TraceBusinessLogic(context.Background(), "submit")
	RecordErrorInSpan(span, errors.New("boom"), map[string]interface{}{"proponente.tipo": "coletivo"})
	AddSpanAttribute(span, "missing", []string{"a", "b"})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "coletivo", attrs["proponente.tipo"].AsString())
	assert.Equal(t, []string{"a", "b"}, attrs["missing"].AsStringSlice())
}
