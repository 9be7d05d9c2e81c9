package cmd

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/protocol"
)

func TestEncodeDecodeRecord(t *testing.T) {
	reg, err := protocol.NewRegistry()
	require.NoError(t, err)

	data, err := encodeRecord(reg, "set_long", []byte(setLongJSON))
	require.NoError(t, err)
	assert.Equal(t, setLongHex, hex.EncodeToString(data))

	value, trailing, err := decodeRecord(reg, "set_long", append(data, 0xff))
	require.NoError(t, err)
	assert.Equal(t, 1, trailing)
	assert.Equal(t, &protocol.SetLong{
		Object: protocol.ObjectID{ID: 300, Owner: protocol.OwnerMember, Member: 5},
		Field:  1,
		Value:  -100,
	}, value)

	t.Run("errors", func(t *testing.T) {
		_, err := encodeRecord(reg, "nope", []byte(`{}`))
		assert.ErrorIs(t, err, codec.ErrCodecNotFound)

		_, err = encodeRecord(reg, "set_long", []byte(`{"Unknown":1}`))
		assert.Error(t, err)

		_, _, err = decodeRecord(reg, "set_long", data[:3])
		assert.ErrorIs(t, err, codec.ErrBufferUnderrun)
	})
}

func TestInspectCommand(t *testing.T) {
	path, _ := writeTestConfig(t)

	t.Run("all codecs", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "inspect", "--config", path, "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		for _, name := range protocol.Names() {
			assert.Contains(t, out, name)
		}
	})

	t.Run("one codec", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "inspect", "set_structure", "--config", path, "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "Codec:")
		assert.Contains(t, out, "len=Size")
		assert.Contains(t, out, "fixed-array")
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "inspect", "vector3", "--config", path, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "name: X")
		assert.Contains(t, out, "size: 4")
	})

	t.Run("unknown codec", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "inspect", "nope", "--config", path, "-o", "table")
		assert.ErrorIs(t, err, codec.ErrCodecNotFound)
	})
}

func TestEncodeCommand(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, _, err := executeCommand(t, "", "encode", "set_long", setLongJSON, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, setLongHex+"\n", out)

	out, _, err = executeCommand(t, `{"Room":7,"Member":2}`, "encode", "attach_to_room", "-", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "070002\n", out)
}

func TestDecodeCommand(t *testing.T) {
	path, _ := writeTestConfig(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "decode", "set_long", setLongHex, "--config", path, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"Value": -100`)
	})

	t.Run("yaml from stdin", func(t *testing.T) {
		out, _, err := executeCommand(t, "010a02\n", "decode", "header", "--config", path, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "frame: 1")
		assert.Contains(t, out, "channel: 2")
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, errOut, err := executeCommand(t, "", "decode", "set_long", setLongHex+"00", "--config", path, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, errOut, "1 trailing bytes")
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "decode", "set_long", "xyz", "--config", path, "-o", "json")
		assert.Error(t, err)
	})

	t.Run("underrun", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "decode", "set_long", "ac02", "--config", path, "-o", "json")
		assert.ErrorIs(t, err, codec.ErrBufferUnderrun)
	})
}
