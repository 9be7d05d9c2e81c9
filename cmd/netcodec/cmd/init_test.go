package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/config"
)

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "netcodec", "config.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	t.Run("creates configuration", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "init", "--config", configPath, "--data-dir", dataDir, "--force=false", "--print-key")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration created")
		assert.Contains(t, out, "API Key:")

		cfg, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dataDir, "snapshots"), cfg.Snapshots.Dir)
		assert.True(t, cfg.Snapshots.Enabled)
		assert.Len(t, cfg.Server.APIKey, 64)
	})

	t.Run("keeps existing configuration", func(t *testing.T) {
		before, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		out, _, err := executeCommand(t, "", "init", "--config", configPath, "--data-dir", dataDir, "--force=false", "--print-key=false")
		require.NoError(t, err)
		assert.Contains(t, out, "already exists")

		after, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, before.Server.APIKey, after.Server.APIKey)
	})

	t.Run("force replaces configuration", func(t *testing.T) {
		before, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		_, _, err = executeCommand(t, "", "init", "--config", configPath, "--data-dir", dataDir, "--force", "--print-key=false")
		require.NoError(t, err)

		after, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.NotEqual(t, before.Server.APIKey, after.Server.APIKey)
	})
}
