package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/capture"
	"github.com/cheetah-game-platform/realtime/pkg/protocol"
)

func TestCaptureDumpCommand(t *testing.T) {
	path, cfg := writeTestConfig(t)

	reg, err := protocol.NewRegistry()
	require.NoError(t, err)
	c, err := protocol.Lookup(reg, protocol.CommandSetLong)
	require.NoError(t, err)

	logPath, _ := capture.SessionPath(cfg.Capture.Dir)
	writer, err := capture.NewWriter(capture.WriterConfig{FilePath: logPath})
	require.NoError(t, err)
	_, err = writer.Record(c, &protocol.SetLong{Field: 1, Value: -100})
	require.NoError(t, err)
	_, err = writer.Append("unknown", []byte{0xca, 0xfe})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	t.Run("raw", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "capture", "dump", logPath, "--config", path, "--decode=false")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Base(logPath))
		assert.Contains(t, out, "set_long")
		assert.Contains(t, out, "cafe")
	})

	t.Run("decoded from the capture directory", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "capture", "dump", "--config", path, "--decode")
		require.NoError(t, err)
		assert.Contains(t, out, "Value:-100")
		assert.Contains(t, out, "cafe")
	})
}

func TestCaptureDumpCommand_Empty(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, _, err := executeCommand(t, "", "capture", "dump", "--config", path, "--decode=false")
	require.NoError(t, err)
	assert.Contains(t, out, "No capture logs")
}

func TestCaptureIndexCommand(t *testing.T) {
	path, cfg := writeTestConfig(t)

	reg, err := protocol.NewRegistry()
	require.NoError(t, err)
	c, err := protocol.Lookup(reg, protocol.CommandSetLong)
	require.NoError(t, err)

	logPath, _ := capture.SessionPath(cfg.Capture.Dir)
	writer, err := capture.NewWriter(capture.WriterConfig{FilePath: logPath})
	require.NoError(t, err)
	for _, v := range []int64{1, 2} {
		_, err = writer.Record(c, &protocol.SetLong{Value: v})
		require.NoError(t, err)
	}
	_, err = writer.Append("keep_alive", nil)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	t.Run("summary", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "capture", "index", logPath, "--config", path, "--codec", "", "--decode=false")
		require.NoError(t, err)
		assert.Regexp(t, `set_long\s+2\s+`, out)
		assert.Regexp(t, `keep_alive\s+1\s+0`, out)
		assert.Regexp(t, `total\s+3`, out)
	})

	t.Run("one codec", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "capture", "index", logPath, "--config", path, "--codec", "set_long", "--decode")
		require.NoError(t, err)
		assert.Contains(t, out, "Value:1}")
		assert.Contains(t, out, "Value:2}")
		assert.NotContains(t, out, "keep_alive")
	})
}
