package api

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	Bind            string
	APIKey          string // empty disables authentication
	AllowedOrigins  []string
	MaxBodySize     int64
	ShutdownTimeout time.Duration
}

// CodecInfo describes one registered codec
type CodecInfo struct {
	Name   string              `json:"name"`
	Type   string              `json:"type"`
	Fixed  bool                `json:"fixed"`
	Size   int                 `json:"size"` // -1 when data dependent
	Fields []codec.FieldLayout `json:"fields"`
}

// EncodeResponse carries an encoded record
type EncodeResponse struct {
	Codec string `json:"codec"`
	Hex   string `json:"hex"`
	Size  int    `json:"size"`
}

// DecodeRequest carries a hex encoded payload
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// DecodeResponse carries a decoded record and how much of the payload it used
type DecodeResponse struct {
	Codec    string      `json:"codec"`
	Record   interface{} `json:"record"`
	Consumed int         `json:"consumed"`
	Trailing int         `json:"trailing"`
}

// SnapshotCreated is returned after a snapshot is stored
type SnapshotCreated struct {
	ID    ksuid.KSUID `json:"id"`
	Codec string      `json:"codec"`
	Size  int         `json:"size"`
}

// SnapshotResponse carries a stored snapshot and its decoded record
type SnapshotResponse struct {
	ID        ksuid.KSUID `json:"id"`
	Codec     string      `json:"codec"`
	CreatedAt time.Time   `json:"created_at"`
	Hex       string      `json:"hex"`
	Record    interface{} `json:"record,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Codecs    int    `json:"codecs"`
	Snapshots bool   `json:"snapshots"`
	Capture   bool   `json:"capture"`
}

func newCodecInfo(c *codec.Codec) CodecInfo {
	size, fixed := c.FixedSize()
	if !fixed {
		size = -1
	}
	return CodecInfo{
		Name:   c.Name(),
		Type:   c.Type().String(),
		Fixed:  fixed,
		Size:   size,
		Fields: c.Fields(),
	}
}
