// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"net/http"

	"github.com/segmentio/ksuid"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/snapshot"
)

// SnapshotStore persists encoded records
type SnapshotStore interface {
	Put(name string, payload []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*snapshot.Snapshot, error)
	Delete(id ksuid.KSUID) error
	List() ([]ksuid.KSUID, error)
}

// Recorder appends records that pass through the service to a capture log
type Recorder interface {
	Record(c *codec.Codec, value any) (int64, error)
}

// Runner is a configured API server
type Runner interface {
	// Handler returns the routed HTTP handler
	Handler() http.Handler

	// Run serves until ctx is cancelled or the listener fails
	Run(ctx context.Context) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServer creates a server over the codecs in reg
	CreateServer(reg *codec.Registry, config ServerConfig, opts ...Option) Runner
}
