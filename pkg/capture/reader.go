package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Reader provides sequential access to frames in a capture file
type Reader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	config ReaderConfig
}

// NewReader opens the capture file for reading
func NewReader(config ReaderConfig) (*Reader, error) {
	if headerCodecErr != nil {
		return nil, headerCodecErr
	}

	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &Reader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// Next reads the frame at the current offset. It returns io.EOF at the end of
// the file and ErrCorruption when the file ends inside a frame or a frame
// fails its checksum.
func (r *Reader) Next() (*Frame, error) {
	frame, n, err := readFrame(r.reader, r.offset)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			// Drop whatever part of the bad frame was buffered.
			_ = r.Seek(r.offset)
		}
		return nil, err
	}
	r.offset += n
	return frame, nil
}

// ReadAt reads the frame starting at offset without moving the reader
func (r *Reader) ReadAt(offset int64) (*Frame, error) {
	section := io.NewSectionReader(r.file, offset, 1<<62)
	frame, _, err := readFrame(bufio.NewReader(section), offset)
	if errors.Is(err, io.EOF) {
		return nil, ErrCorruption
	}
	return frame, err
}

func readFrame(br *bufio.Reader, offset int64) (*Frame, int64, error) {
	peeked, peekErr := br.Peek(maxHeaderSize)
	if len(peeked) == 0 {
		if peekErr == nil || errors.Is(peekErr, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, peekErr
	}

	buf := wire.FromBytes(peeked)
	var h frameHeader
	if err := headerCodec.Decode(buf, &h); err != nil {
		if errors.Is(err, wire.ErrBufferUnderrun) && peekErr != nil && !errors.Is(peekErr, io.EOF) {
			return nil, 0, peekErr
		}
		return nil, 0, fmt.Errorf("%w: bad header at offset %d: %v", ErrCorruption, offset, err)
	}
	if h.NameLen > MaxNameLength {
		return nil, 0, fmt.Errorf("%w: frame at offset %d declares a %d byte name", ErrCorruption, offset, h.NameLen)
	}
	if h.Size > MaxPayloadSize {
		return nil, 0, fmt.Errorf("%w: frame at offset %d declares %d bytes", ErrCorruption, offset, h.Size)
	}

	headerLen := buf.ReadOffset()
	name := string(h.Name[:h.NameLen])
	if _, err := br.Discard(headerLen); err != nil {
		return nil, 0, err
	}

	payload := make([]byte, h.Size)
	if _, err := io.ReadFull(br, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: truncated frame at offset %d", ErrCorruption, offset)
		}
		return nil, 0, err
	}

	if checksum(h.Name[:h.NameLen], payload) != h.CRC {
		return nil, 0, fmt.Errorf("%w: checksum mismatch at offset %d", ErrCorruption, offset)
	}

	return &Frame{
		Offset:    offset,
		Timestamp: time.Unix(0, h.Timestamp),
		Name:      name,
		Payload:   payload,
	}, int64(headerLen) + int64(h.Size), nil
}

// Seek sets the read offset
func (r *Reader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.reader.Reset(r.file)
	r.offset = offset
	return nil
}

// Offset returns the current read offset
func (r *Reader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator over the remaining frames
func (r *Reader) Iterator() FrameIterator {
	return &frameIterator{reader: r}
}

// Close closes the capture reader
func (r *Reader) Close() error {
	return r.file.Close()
}

type frameIterator struct {
	reader *Reader
	frame  *Frame
	err    error
}

func (it *frameIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.frame, it.err = it.reader.Next()
	return it.err == nil
}

func (it *frameIterator) Frame() *Frame {
	return it.frame
}

// Err returns the error that stopped iteration, or nil at a clean end of file.
func (it *frameIterator) Err() error {
	if errors.Is(it.err, io.EOF) {
		return nil
	}
	return it.err
}

func (it *frameIterator) Close() error {
	// The underlying reader is owned by the caller
	return nil
}

// Dump reads every file in paths concurrently and calls fn for each frame.
// Calls to fn are serialized; frames of one file arrive in file order. The
// first error from a reader or from fn cancels the remaining reads.
func Dump(ctx context.Context, paths []string, fn func(path string, frame *Frame) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	for _, path := range paths {
		g.Go(func() error {
			r, err := NewReader(ReaderConfig{FilePath: path})
			if err != nil {
				return err
			}
			defer r.Close()

			it := r.Iterator()
			for it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				mu.Lock()
				err := fn(path, it.Frame())
				mu.Unlock()
				if err != nil {
					return err
				}
			}
			if err := it.Err(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
