package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/config"
)

func TestApplyServeFlags(t *testing.T) {
	c := &cobra.Command{Use: "serve"}
	c.Flags().IntP("port", "p", 0, "")
	c.Flags().String("bind", "", "")
	c.Flags().String("api-key", "", "")
	c.Flags().Bool("capture", false, "")
	c.Flags().Bool("snapshots", false, "")
	require.NoError(t, c.Flags().Parse([]string{"--port", "9000", "--capture"}))

	cfg := config.DefaultConfig()
	cfg.Server.APIKey = "from-config"
	applyServeFlags(c, cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Bind)
	assert.Equal(t, "from-config", cfg.Server.APIKey)
	assert.True(t, cfg.Capture.Enabled)
	assert.False(t, cfg.Snapshots.Enabled)
}

func TestServerConfig(t *testing.T) {
	s := config.Server{
		Port:            9000,
		Bind:            "0.0.0.0",
		APIKey:          "key",
		AllowedOrigins:  []string{"https://tools.example"},
		MaxBodySize:     512,
		ShutdownTimeout: time.Second,
	}

	got := serverConfig(s)
	assert.Equal(t, s.Port, got.Port)
	assert.Equal(t, s.Bind, got.Bind)
	assert.Equal(t, s.APIKey, got.APIKey)
	assert.Equal(t, s.AllowedOrigins, got.AllowedOrigins)
	assert.Equal(t, s.MaxBodySize, got.MaxBodySize)
	assert.Equal(t, s.ShutdownTimeout, got.ShutdownTimeout)
}
