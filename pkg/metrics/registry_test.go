package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
	assert.Nil(t, NewServer(0))
	assert.Nil(t, NewHousekeepingMetrics())
	assert.Nil(t, NewAPIMetrics())

	reg := InitRegistry()
	t.Cleanup(Reset)

	require.NotNil(t, reg)
	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "runtime collectors are registered")

	srv := NewServer(0)
	require.NotNil(t, srv)
	assert.Equal(t, ":9090", srv.server.Addr)
}
