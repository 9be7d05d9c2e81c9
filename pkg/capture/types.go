package capture

import (
	"time"
)

// MaxNameLength is the longest record name a frame can carry.
const MaxNameLength = 64

// MaxPayloadSize bounds the payload a reader will accept before declaring the
// file corrupt.
const MaxPayloadSize = 16 << 20

// FileExtension is appended to capture files created by SessionPath.
const FileExtension = ".ncap"

// WriterConfig holds configuration for the capture writer
type WriterConfig struct {
	FilePath      string        // Path to the capture file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// ReaderConfig holds configuration for the capture reader
type ReaderConfig struct {
	FilePath    string // Path to the capture file
	StartOffset int64  // Offset to start reading from
}

// frameHeader precedes every payload. It is encoded by the codec framework.
type frameHeader struct {
	Timestamp int64 `codec:"varint"` // unix nanoseconds
	NameLen   uint8
	Name      [MaxNameLength]byte `codec:"len=NameLen"`
	Size      uint32              `codec:"varint"`
	CRC       uint32              // CRC32 (IEEE) of name and payload
}

// maxHeaderSize is the encoded size of the largest possible header.
const maxHeaderSize = 10 + 1 + MaxNameLength + 5 + 4

// Frame is one captured record.
type Frame struct {
	Offset    int64 // Byte offset of the frame within the file
	Timestamp time.Time
	Name      string // Registry name of the record
	Payload   []byte // Encoded record
}

// FrameIterator provides streaming access to frames
type FrameIterator interface {
	Next() bool
	Frame() *Frame
	Err() error
	Close() error
}

// Errors
var (
	ErrCorruption  = &CaptureError{"capture corruption detected"}
	ErrNameTooLong = &CaptureError{"record name too long"}
	ErrTooLarge    = &CaptureError{"payload too large"}
)

// CaptureError represents a capture file error
type CaptureError struct {
	Message string
}

func (e *CaptureError) Error() string {
	return e.Message
}
