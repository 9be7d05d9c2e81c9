// Package wire provides the byte buffer that record codecs read from and write to.
//
// A Buffer owns a growable byte slice with a write end and a read cursor. Fixed
// width integers are big-endian. Variable-size integers use base-128 groups with
// a continuation bit, and signed values are zig-zag mapped first so that small
// negative numbers stay short.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// Errors returned by read operations.
var (
	// ErrBufferUnderrun is returned when a read needs more bytes than remain.
	ErrBufferUnderrun = errors.New("wire: buffer underrun")
	// ErrVarintOverflow is returned when a variable-size integer is longer than
	// its width allows or its value does not fit the target width.
	ErrVarintOverflow = errors.New("wire: varint overflow")
)

const (
	maxVarintLen32 = 5
	maxVarintLen64 = binary.MaxVarintLen64
)

// Buffer is a byte sequence with a read cursor. Writes append to the end and
// grow the backing slice; reads consume from the cursor. A Buffer is not safe
// for concurrent use.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns an empty buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// FromBytes returns a buffer positioned at the start of b. The buffer does not
// copy b.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the written bytes. The slice aliases the buffer until the
// next write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of written bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Remaining returns the number of bytes left to read.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.pos
}

// ReadOffset returns the read cursor.
func (b *Buffer) ReadOffset() int {
	return b.pos
}

// SetReadOffset moves the read cursor. Offsets outside the written range are
// clamped.
func (b *Buffer) SetReadOffset(offset int) {
	switch {
	case offset < 0:
		b.pos = 0
	case offset > len(b.data):
		b.pos = len(b.data)
	default:
		b.pos = offset
	}
}

// Reset empties the buffer and keeps the allocated capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.pos = 0
}

// Load replaces the buffer contents with p for decoding and rewinds the read
// cursor. The buffer does not copy p.
func (b *Buffer) Load(p []byte) {
	b.data = p
	b.pos = 0
}

// PutFixed appends p as is.
func (b *Buffer) PutFixed(p []byte) {
	b.data = append(b.data, p...)
}

// GetFixed consumes n bytes and returns them without copying.
func (b *Buffer) GetFixed(n int) ([]byte, error) {
	if n < 0 || n > len(b.data)-b.pos {
		return nil, ErrBufferUnderrun
	}
	p := b.data[b.pos : b.pos+n : b.pos+n]
	b.pos += n
	return p, nil
}

// GetFixedInto consumes len(dst) bytes into dst.
func (b *Buffer) GetFixedInto(dst []byte) error {
	if len(dst) > len(b.data)-b.pos {
		return ErrBufferUnderrun
	}
	b.pos += copy(dst, b.data[b.pos:])
	return nil
}

// PutUint8 appends one byte.
func (b *Buffer) PutUint8(v uint8) {
	b.data = append(b.data, v)
}

// PutUint16 appends v in big-endian order.
func (b *Buffer) PutUint16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

// PutUint32 appends v in big-endian order.
func (b *Buffer) PutUint32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

// PutUint64 appends v in big-endian order.
func (b *Buffer) PutUint64(v uint64) {
	b.data = binary.BigEndian.AppendUint64(b.data, v)
}

// GetUint8 consumes one byte.
func (b *Buffer) GetUint8() (uint8, error) {
	if b.pos >= len(b.data) {
		return 0, ErrBufferUnderrun
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// GetUint16 consumes a big-endian uint16.
func (b *Buffer) GetUint16() (uint16, error) {
	if len(b.data)-b.pos < 2 {
		return 0, ErrBufferUnderrun
	}
	v := binary.BigEndian.Uint16(b.data[b.pos:])
	b.pos += 2
	return v, nil
}

// GetUint32 consumes a big-endian uint32.
func (b *Buffer) GetUint32() (uint32, error) {
	if len(b.data)-b.pos < 4 {
		return 0, ErrBufferUnderrun
	}
	v := binary.BigEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// GetUint64 consumes a big-endian uint64.
func (b *Buffer) GetUint64() (uint64, error) {
	if len(b.data)-b.pos < 8 {
		return 0, ErrBufferUnderrun
	}
	v := binary.BigEndian.Uint64(b.data[b.pos:])
	b.pos += 8
	return v, nil
}

// PutVarUint32 appends v as a variable-size integer (1 to 5 bytes).
func (b *Buffer) PutVarUint32(v uint32) {
	b.data = binary.AppendUvarint(b.data, uint64(v))
}

// PutVarUint64 appends v as a variable-size integer (1 to 10 bytes).
func (b *Buffer) PutVarUint64(v uint64) {
	b.data = binary.AppendUvarint(b.data, v)
}

// PutVarInt32 zig-zag maps v and appends it as a variable-size integer.
func (b *Buffer) PutVarInt32(v int32) {
	b.PutVarUint32(ZigZag32(v))
}

// PutVarInt64 zig-zag maps v and appends it as a variable-size integer.
func (b *Buffer) PutVarInt64(v int64) {
	b.PutVarUint64(ZigZag64(v))
}

// GetVarUint32 consumes a variable-size integer that must fit in 32 bits.
func (b *Buffer) GetVarUint32() (uint32, error) {
	v, n, err := b.uvarint(maxVarintLen32)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrVarintOverflow
	}
	b.pos += n
	return uint32(v), nil
}

// GetVarUint64 consumes a variable-size integer.
func (b *Buffer) GetVarUint64() (uint64, error) {
	v, n, err := b.uvarint(maxVarintLen64)
	if err != nil {
		return 0, err
	}
	b.pos += n
	return v, nil
}

// GetVarInt32 consumes a zig-zag mapped variable-size integer that must fit in
// 32 bits.
func (b *Buffer) GetVarInt32() (int32, error) {
	u, err := b.GetVarUint32()
	if err != nil {
		return 0, err
	}
	return UnZigZag32(u), nil
}

// GetVarInt64 consumes a zig-zag mapped variable-size integer.
func (b *Buffer) GetVarInt64() (int64, error) {
	u, err := b.GetVarUint64()
	if err != nil {
		return 0, err
	}
	return UnZigZag64(u), nil
}

// uvarint decodes at most maxLen bytes at the cursor without consuming them.
// Running out of data before the last group is an underrun; a group sequence
// longer than maxLen is an overflow.
func (b *Buffer) uvarint(maxLen int) (uint64, int, error) {
	v, n := binary.Uvarint(b.data[b.pos:])
	switch {
	case n == 0:
		return 0, 0, ErrBufferUnderrun
	case n < 0 || n > maxLen:
		return 0, 0, ErrVarintOverflow
	}
	return v, n, nil
}

// ZigZag32 maps signed values onto unsigned ones so that small magnitudes of
// either sign stay small.
func ZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// ZigZag64 maps signed values onto unsigned ones so that small magnitudes of
// either sign stay small.
func ZigZag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// UnZigZag64 reverses ZigZag64.
func UnZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// VarUint64Size returns the number of bytes PutVarUint64 writes for v.
func VarUint64Size(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
