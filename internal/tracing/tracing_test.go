package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Endpoint)
}

func TestDefaultConfig_WithEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_EmptyEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: true, Endpoint: ""})

	require.NoError(t, err)
	assert.NotNil(t, shutdown)
}

func TestTracer_ReturnsNonNil(t *testing.T) {
	oldTracer := tracer
	tracer = nil
	defer func() { tracer = oldTracer }()

	assert.NotNil(t, Tracer())
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "test-span", WithAttributes(attribute.String("seller", "u-1")))

	assert.NotNil(t, span)
	assert.NotEqual(t, ctx, newCtx)

	span.End()
}

func TestSpanHelpers_DoNotPanic(t *testing.T) {
	_, span := StartSpan(context.Background(), "test-helpers")
	defer span.End()

	assert.NotPanics(t, func() {
		RecordError(span, nil)
		RecordError(span, assert.AnError)
		RecordError(nil, assert.AnError)
		AddSpanAttributes(span, attribute.Int("fandoms", 3))
		AddSpanAttributes(nil)
		SetSpanOK(span)
		SetSpanOK(nil)
	})
}
