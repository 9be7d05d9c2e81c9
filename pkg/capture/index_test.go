package capture

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddAndEntries(t *testing.T) {
	idx := NewIndex()
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Entries("set_long"))

	idx.Add("set_long", IndexEntry{Offset: 0, Size: 3})
	idx.Add("event", IndexEntry{Offset: 20, Size: 5})
	idx.Add("set_long", IndexEntry{Offset: 40, Size: 4})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []IndexEntry{{Offset: 0, Size: 3}, {Offset: 40, Size: 4}}, idx.Entries("set_long"))
	assert.Equal(t, []string{"event", "set_long"}, idx.Names())
	assert.Equal(t, []string{"set_long"}, idx.NamesWithPrefix("set_"))
	assert.Empty(t, idx.NamesWithPrefix("nope"))

	// Entries hands out a copy
	entries := idx.Entries("event")
	entries[0].Offset = 99
	assert.Equal(t, int64(20), idx.Entries("event")[0].Offset)
}

func TestIndex_BuildFromLog(t *testing.T) {
	writer, filePath := newWriter(t, 0)
	var offsets []int64
	for _, name := range []string{"a", "b", "a"} {
		offset, err := writer.Append(name, []byte(name+name))
		require.NoError(t, err)
		offsets = append(offsets, offset)
	}
	require.NoError(t, writer.Close())

	reader, err := NewReader(ReaderConfig{FilePath: filePath})
	require.NoError(t, err)
	defer reader.Close()

	idx := NewIndex()
	idx.Add("stale", IndexEntry{})
	require.NoError(t, idx.BuildFromLog(reader))

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"a", "b"}, idx.Names())

	entries := idx.Entries("a")
	require.Len(t, entries, 2)
	assert.Equal(t, offsets[0], entries[0].Offset)
	assert.Equal(t, offsets[2], entries[1].Offset)
	assert.Equal(t, 2, entries[1].Size)

	frame, err := reader.ReadAt(entries[1].Offset)
	require.NoError(t, err)
	assert.Equal(t, "a", frame.Name)
	assert.Equal(t, []byte("aa"), frame.Payload)
}

func TestIndex_BuildFromCorruptLog(t *testing.T) {
	writer, filePath := newWriter(t, 0)
	_, err := writer.Append("a", []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(filePath, data, 0644))

	reader, err := NewReader(ReaderConfig{FilePath: filePath})
	require.NoError(t, err)
	defer reader.Close()

	idx := NewIndex()
	assert.ErrorIs(t, idx.BuildFromLog(reader), ErrCorruption)
	assert.Zero(t, idx.Len())
}
