package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProvider_DisabledWithoutEndpoint(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "causalchain"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}
