// Package formatter holds one stateless reader/writer per scalar wire
// representation. Formatters are package-level singletons and safe to share;
// deciding which formatter applies to a record field is the codec package's job.
package formatter

import (
	"math"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Formatter reads and writes one scalar type.
type Formatter[T any] interface {
	// Write appends v to buf.
	Write(v T, buf *wire.Buffer)
	// Read consumes one value from buf.
	Read(buf *wire.Buffer) (T, error)
	// WriteFixedArray appends src[offset:offset+count].
	WriteFixedArray(src []T, count, offset int, buf *wire.Buffer)
	// ReadFixedArray fills dst[offset:offset+count] from buf.
	ReadFixedArray(buf *wire.Buffer, dst []T, count, offset int) error
}

// Fixed width formatters.
var (
	Byte   Formatter[uint8]   = byteFormatter{}
	SByte  Formatter[int8]    = scalar[int8]{write: writeSByte, read: readSByte, size: 1}
	Bool   Formatter[bool]    = scalar[bool]{write: writeBool, read: readBool, size: 1}
	Short  Formatter[int16]   = scalar[int16]{write: writeShort, read: readShort, size: 2}
	UShort Formatter[uint16]  = scalar[uint16]{write: (*wire.Buffer).PutUint16, read: (*wire.Buffer).GetUint16, size: 2}
	Int    Formatter[int32]   = scalar[int32]{write: writeInt, read: readInt, size: 4}
	UInt   Formatter[uint32]  = scalar[uint32]{write: (*wire.Buffer).PutUint32, read: (*wire.Buffer).GetUint32, size: 4}
	Long   Formatter[int64]   = scalar[int64]{write: writeLong, read: readLong, size: 8}
	ULong  Formatter[uint64]  = scalar[uint64]{write: (*wire.Buffer).PutUint64, read: (*wire.Buffer).GetUint64, size: 8}
	Float  Formatter[float32] = scalar[float32]{write: writeFloat, read: readFloat, size: 4}
	Double Formatter[float64] = scalar[float64]{write: writeDouble, read: readDouble, size: 8}
)

// Variable-size formatters.
var (
	VariableInt   Formatter[int32]  = scalar[int32]{write: (*wire.Buffer).PutVarInt32, read: (*wire.Buffer).GetVarInt32}
	VariableUInt  Formatter[uint32] = scalar[uint32]{write: (*wire.Buffer).PutVarUint32, read: (*wire.Buffer).GetVarUint32}
	VariableLong  Formatter[int64]  = scalar[int64]{write: (*wire.Buffer).PutVarInt64, read: (*wire.Buffer).GetVarInt64}
	VariableULong Formatter[uint64] = scalar[uint64]{write: (*wire.Buffer).PutVarUint64, read: (*wire.Buffer).GetVarUint64}
)

// Size returns the fixed wire size of values written by f, or 0 when the size
// depends on the value.
func Size[T any](f Formatter[T]) int {
	if s, ok := f.(interface{ wireSize() int }); ok {
		return s.wireSize()
	}
	return 0
}

// scalar adapts a pair of buffer functions into a Formatter.
type scalar[T any] struct {
	write func(*wire.Buffer, T)
	read  func(*wire.Buffer) (T, error)
	size  int
}

func (s scalar[T]) Write(v T, buf *wire.Buffer) {
	s.write(buf, v)
}

func (s scalar[T]) Read(buf *wire.Buffer) (T, error) {
	return s.read(buf)
}

func (s scalar[T]) WriteFixedArray(src []T, count, offset int, buf *wire.Buffer) {
	for _, v := range src[offset : offset+count] {
		s.write(buf, v)
	}
}

func (s scalar[T]) ReadFixedArray(buf *wire.Buffer, dst []T, count, offset int) error {
	for i := offset; i < offset+count; i++ {
		v, err := s.read(buf)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (s scalar[T]) wireSize() int {
	return s.size
}

// byteFormatter copies arrays in bulk.
type byteFormatter struct{}

func (byteFormatter) Write(v uint8, buf *wire.Buffer) {
	buf.PutUint8(v)
}

func (byteFormatter) Read(buf *wire.Buffer) (uint8, error) {
	return buf.GetUint8()
}

func (byteFormatter) WriteFixedArray(src []uint8, count, offset int, buf *wire.Buffer) {
	buf.PutFixed(src[offset : offset+count])
}

func (byteFormatter) ReadFixedArray(buf *wire.Buffer, dst []uint8, count, offset int) error {
	return buf.GetFixedInto(dst[offset : offset+count])
}

func (byteFormatter) wireSize() int {
	return 1
}

func writeSByte(buf *wire.Buffer, v int8) { buf.PutUint8(uint8(v)) }

func readSByte(buf *wire.Buffer) (int8, error) {
	v, err := buf.GetUint8()
	return int8(v), err
}

func writeBool(buf *wire.Buffer, v bool) {
	if v {
		buf.PutUint8(1)
		return
	}
	buf.PutUint8(0)
}

// readBool treats any non-zero byte as true.
func readBool(buf *wire.Buffer) (bool, error) {
	v, err := buf.GetUint8()
	return v != 0, err
}

func writeShort(buf *wire.Buffer, v int16) { buf.PutUint16(uint16(v)) }

func readShort(buf *wire.Buffer) (int16, error) {
	v, err := buf.GetUint16()
	return int16(v), err
}

func writeInt(buf *wire.Buffer, v int32) { buf.PutUint32(uint32(v)) }

func readInt(buf *wire.Buffer) (int32, error) {
	v, err := buf.GetUint32()
	return int32(v), err
}

func writeLong(buf *wire.Buffer, v int64) { buf.PutUint64(uint64(v)) }

func readLong(buf *wire.Buffer) (int64, error) {
	v, err := buf.GetUint64()
	return int64(v), err
}

func writeFloat(buf *wire.Buffer, v float32) { buf.PutUint32(math.Float32bits(v)) }

func readFloat(buf *wire.Buffer) (float32, error) {
	v, err := buf.GetUint32()
	return math.Float32frombits(v), err
}

func writeDouble(buf *wire.Buffer, v float64) { buf.PutUint64(math.Float64bits(v)) }

func readDouble(buf *wire.Buffer) (float64, error) {
	v, err := buf.GetUint64()
	return math.Float64frombits(v), err
}
