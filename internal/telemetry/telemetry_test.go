package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	provider, err := Init(context.Background(), Config{
		ServiceName: "quakewatch-test",
		Enabled:     false,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.Nil(t, provider.TracerProvider)
	assert.NotNil(t, provider.Tracer)

	// Shutdown is a no-op without a real tracer provider.
	assert.NoError(t, provider.Shutdown(context.Background()))
}
