package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Writer appends frames to a capture file
type Writer struct {
	file       *os.File
	writer     *bufio.Writer
	header     *wire.Buffer
	scratch    *wire.Buffer
	fsyncTimer *time.Timer
	config     WriterConfig
	mutex      sync.Mutex
	offset     int64 // Current write offset
	now        func() time.Time
}

// SessionPath returns a new capture file path inside dir, named after a fresh
// session id.
func SessionPath(dir string) (string, ksuid.KSUID) {
	id := ksuid.New()
	return filepath.Join(dir, id.String()+FileExtension), id
}

// NewWriter opens or creates the capture file and positions at its end.
func NewWriter(config WriterConfig) (*Writer, error) {
	if headerCodecErr != nil {
		return nil, headerCodecErr
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}

	w := &Writer{
		file:    file,
		writer:  bufio.NewWriterSize(file, bufferSize),
		header:  wire.NewBuffer(maxHeaderSize),
		scratch: wire.NewBuffer(256),
		config:  config,
		offset:  offset,
		now:     time.Now,
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			_ = w.sync()
		})
	}

	return w, nil
}

// Append writes one frame and returns its offset in the file.
func (w *Writer) Append(name string, payload []byte) (int64, error) {
	if len(name) > MaxNameLength {
		return 0, fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	if len(payload) > MaxPayloadSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.append(name, payload)
}

// Record encodes value with c and appends it under the codec's name.
func (w *Writer) Record(c *codec.Codec, value any) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.scratch.Reset()
	if err := c.EncodeValue(value, w.scratch); err != nil {
		return 0, err
	}
	if len(c.Name()) > MaxNameLength {
		return 0, fmt.Errorf("%w: %q", ErrNameTooLong, c.Name())
	}
	return w.append(c.Name(), w.scratch.Bytes())
}

func (w *Writer) append(name string, payload []byte) (int64, error) {
	h := frameHeader{
		Timestamp: w.now().UnixNano(),
		NameLen:   uint8(len(name)),
		Size:      uint32(len(payload)),
	}
	copy(h.Name[:], name)
	h.CRC = checksum(h.Name[:h.NameLen], payload)

	w.header.Reset()
	headerCodec.Encode(&h, w.header)

	n, err := w.writer.Write(w.header.Bytes())
	if err != nil {
		return 0, err
	}
	m, err := w.writer.Write(payload)
	if err != nil {
		return 0, err
	}

	frameOffset := w.offset
	w.offset += int64(n + m)

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return frameOffset, nil
}

// Sync forces a fsync to disk
func (w *Writer) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *Writer) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes pending frames and closes the file
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

// Size returns the current size of the capture file
func (w *Writer) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *Writer) Path() string {
	return w.config.FilePath
}
