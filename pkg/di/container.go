// Package di provides dependency injection container
package di

import (
	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/api"
	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/protocol"
)

// RegistryFactory builds the codec registry the application serves
type RegistryFactory func(logger *zap.Logger) (*codec.Registry, error)

// ProtocolRegistry is the default RegistryFactory: every relay protocol record
func ProtocolRegistry(logger *zap.Logger) (*codec.Registry, error) {
	return protocol.NewRegistry(codec.WithLogger(logger))
}

// Container holds all the dependencies for the application
type Container struct {
	registryFactory RegistryFactory
	serverFactory   api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		registryFactory: ProtocolRegistry,
		serverFactory:   api.NewServerFactory(),
	}
}

// GetRegistryFactory returns the codec registry factory
func (c *Container) GetRegistryFactory() RegistryFactory {
	return c.registryFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetRegistryFactory allows overriding the codec registry factory (for testing)
func (c *Container) SetRegistryFactory(factory RegistryFactory) {
	c.registryFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
