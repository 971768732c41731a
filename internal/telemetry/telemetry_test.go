package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func TestInitOtelDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := InitOtel(context.Background(), "", "tictactoe")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestResource(t *testing.T) {
	res, err := Resource("")
	require.NoError(t, err)

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "tictactoe", name.AsString())
}
