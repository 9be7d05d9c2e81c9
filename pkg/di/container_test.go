package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/api"
	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/protocol"
)

func TestNewContainer(t *testing.T) {
	c := NewContainer()
	require.NotNil(t, c.GetServerFactory())

	reg, err := c.GetRegistryFactory()(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(protocol.Names()), reg.Len())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()

	empty := func(*zap.Logger) (*codec.Registry, error) {
		return codec.NewBuilder().Build()
	}
	c.SetRegistryFactory(empty)
	reg, err := c.GetRegistryFactory()(zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, reg.Len())

	factory := api.NewServerFactory()
	c.SetServerFactory(factory)
	assert.Same(t, factory, c.GetServerFactory())
}
