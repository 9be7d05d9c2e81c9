// Package api provides factory implementations for dependency injection
package api

import (
	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServer creates a server over the codecs in reg
func (f *DefaultServerFactory) CreateServer(reg *codec.Registry, config ServerConfig, opts ...Option) Runner {
	return NewServer(reg, config, opts...)
}
