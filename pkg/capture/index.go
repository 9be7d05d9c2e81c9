package capture

import (
	"sort"
	"strings"
	"sync"
)

// IndexEntry locates one frame in a capture file
type IndexEntry struct {
	Offset    int64
	Size      int
	Timestamp int64
}

// Index maps codec names to the frames recorded under them
type Index struct {
	entries map[string][]IndexEntry
	frames  int
	mutex   sync.RWMutex
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		entries: make(map[string][]IndexEntry),
	}
}

// Add records a frame. Frames of one name keep the order they were added in.
func (idx *Index) Add(name string, entry IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries[name] = append(idx.entries[name], entry)
	idx.frames++
}

// Entries returns the frames recorded under name
func (idx *Index) Entries(name string) []IndexEntry {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entries := idx.entries[name]
	out := make([]IndexEntry, len(entries))
	copy(out, entries)
	return out
}

// Names returns the recorded codec names in sorted order
func (idx *Index) Names() []string {
	return idx.NamesWithPrefix("")
}

// NamesWithPrefix returns the recorded codec names that start with prefix
func (idx *Index) NamesWithPrefix(prefix string) []string {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	var names []string
	for name := range idx.entries {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexed frames
func (idx *Index) Len() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return idx.frames
}

// BuildFromLog scans the capture file from the start and replaces the index
// contents. The reader is left at the end of the last valid frame.
func (idx *Index) BuildFromLog(reader *Reader) error {
	if err := reader.Seek(0); err != nil {
		return err
	}

	entries := make(map[string][]IndexEntry)
	frames := 0

	iterator := reader.Iterator()
	defer iterator.Close()

	for iterator.Next() {
		frame := iterator.Frame()
		entries[frame.Name] = append(entries[frame.Name], IndexEntry{
			Offset:    frame.Offset,
			Size:      len(frame.Payload),
			Timestamp: frame.Timestamp.UnixNano(),
		})
		frames++
	}
	if err := iterator.Err(); err != nil {
		return err
	}

	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = entries
	idx.frames = frames
	return nil
}
