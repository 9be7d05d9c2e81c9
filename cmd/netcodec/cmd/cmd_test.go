package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/config"
	"github.com/cheetah-game-platform/realtime/pkg/di"
)

const setLongJSON = `{"Object":{"ID":300,"Owner":1,"Member":5},"Field":1,"Value":-100}`

const setLongHex = "ac020100050001c701"

func TestMain(m *testing.M) {
	SetContainer(di.NewContainer())
	os.Exit(m.Run())
}

// writeTestConfig saves a configuration whose data lives under t.TempDir()
func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Capture.Dir = filepath.Join(dir, "captures")
	cfg.Snapshots.Dir = filepath.Join(dir, "snapshots")
	cfg.Snapshots.Enabled = true
	cfg.Logging.Level = "error"

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path, cfg
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, _, err := executeCommand(t, "", "inspect", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	path, _ := writeTestConfig(t)
	_, _, err := executeCommand(t, "", "inspect", "--config", path, "--log-level", "loud")
	assert.Error(t, err)

	// Later runs must not inherit the override
	_, _, err = executeCommand(t, "", "inspect", "--config", path, "--log-level", "error")
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	path, want := writeTestConfig(t)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want.Snapshots.Dir, cfg.Snapshots.Dir)

	_, err = loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
