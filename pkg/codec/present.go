package codec

import (
	"reflect"
	"unsafe"

	"github.com/cheetah-game-platform/realtime/pkg/formatter"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// encodeStep writes one field of the record at p.
type encodeStep func(p unsafe.Pointer, buf *wire.Buffer)

// decodeStep reads one field into the record at p.
type decodeStep func(p unsafe.Pointer, buf *wire.Buffer) error

// lengthFunc returns the number of array elements that travel on the wire,
// already clamped to the array capacity.
type lengthFunc func(p unsafe.Pointer) int

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// scalarKind is how one reflect.Kind travels on the wire through a formatter.
type scalarKind struct {
	formatter string
	size      int // 0 when the size depends on the value
	field     func(off uintptr) (encodeStep, decodeStep)
	array     func(off uintptr, capacity int, length lengthFunc) (encodeStep, decodeStep)
	length    func(off uintptr, capacity int) lengthFunc // nil for non-integers
}

// fixedKinds are the formatted present types.
var fixedKinds = map[reflect.Kind]scalarKind{
	reflect.Bool:    direct("Bool", formatter.Bool),
	reflect.Int8:    integral("SByte", formatter.SByte),
	reflect.Uint8:   integral("Byte", formatter.Byte),
	reflect.Int16:   integral("Short", formatter.Short),
	reflect.Uint16:  integral("UShort", formatter.UShort),
	reflect.Int32:   integral("Int", formatter.Int),
	reflect.Uint32:  integral("UInt", formatter.UInt),
	reflect.Int64:   integral("Long", formatter.Long),
	reflect.Uint64:  integral("ULong", formatter.ULong),
	reflect.Int:     widened[int, int64]("Long", formatter.Long),
	reflect.Uint:    widened[uint, uint64]("ULong", formatter.ULong),
	reflect.Float32: direct("Float", formatter.Float),
	reflect.Float64: direct("Double", formatter.Double),
}

// variableKinds are the integer kinds accepted by the varint hint.
var variableKinds = map[reflect.Kind]scalarKind{
	reflect.Int32:  integral("VariableInt", formatter.VariableInt),
	reflect.Uint32: integral("VariableUInt", formatter.VariableUInt),
	reflect.Int64:  integral("VariableLong", formatter.VariableLong),
	reflect.Uint64: integral("VariableULong", formatter.VariableULong),
	reflect.Int:    widened[int, int64]("VariableLong", formatter.VariableLong),
	reflect.Uint:   widened[uint, uint64]("VariableULong", formatter.VariableULong),
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// isPredeclared reports whether t is one of the language's named scalar types
// (uint8, float64, ...), as opposed to a type defined in some package.
func isPredeclared(t reflect.Type) bool {
	return t.PkgPath() == "" && t.Name() != ""
}

func direct[T any](name string, f formatter.Formatter[T]) scalarKind {
	return scalarKind{
		formatter: name,
		size:      formatter.Size(f),
		field: func(off uintptr) (encodeStep, decodeStep) {
			encode := func(p unsafe.Pointer, buf *wire.Buffer) {
				f.Write(*(*T)(unsafe.Add(p, off)), buf)
			}
			decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
				v, err := f.Read(buf)
				if err != nil {
					return err
				}
				*(*T)(unsafe.Add(p, off)) = v
				return nil
			}
			return encode, decode
		},
		array: func(off uintptr, capacity int, length lengthFunc) (encodeStep, decodeStep) {
			if length == nil {
				encode := func(p unsafe.Pointer, buf *wire.Buffer) {
					f.WriteFixedArray(unsafe.Slice((*T)(unsafe.Add(p, off)), capacity), capacity, 0, buf)
				}
				decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
					return f.ReadFixedArray(buf, unsafe.Slice((*T)(unsafe.Add(p, off)), capacity), capacity, 0)
				}
				return encode, decode
			}
			encode := func(p unsafe.Pointer, buf *wire.Buffer) {
				f.WriteFixedArray(unsafe.Slice((*T)(unsafe.Add(p, off)), capacity), length(p), 0, buf)
			}
			decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
				arr := unsafe.Slice((*T)(unsafe.Add(p, off)), capacity)
				n := length(p)
				if err := f.ReadFixedArray(buf, arr, n, 0); err != nil {
					return err
				}
				clear(arr[n:])
				return nil
			}
			return encode, decode
		},
	}
}

// integral is direct plus the ability to serve as a runtime array length.
func integral[T integer](name string, f formatter.Formatter[T]) scalarKind {
	k := direct(name, f)
	k.length = lengthOf[T]
	return k
}

// widened carries platform sized integers as 64-bit values.
func widened[M int | uint, W int64 | uint64](name string, f formatter.Formatter[W]) scalarKind {
	return scalarKind{
		formatter: name,
		size:      formatter.Size(f),
		length:    lengthOf[M],
		field: func(off uintptr) (encodeStep, decodeStep) {
			encode := func(p unsafe.Pointer, buf *wire.Buffer) {
				f.Write(W(*(*M)(unsafe.Add(p, off))), buf)
			}
			decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
				v, err := f.Read(buf)
				if err != nil {
					return err
				}
				*(*M)(unsafe.Add(p, off)) = M(v)
				return nil
			}
			return encode, decode
		},
		array: func(off uintptr, capacity int, length lengthFunc) (encodeStep, decodeStep) {
			count := func(p unsafe.Pointer) int {
				if length == nil {
					return capacity
				}
				return length(p)
			}
			encode := func(p unsafe.Pointer, buf *wire.Buffer) {
				arr := unsafe.Slice((*M)(unsafe.Add(p, off)), capacity)
				for _, v := range arr[:count(p)] {
					f.Write(W(v), buf)
				}
			}
			decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
				arr := unsafe.Slice((*M)(unsafe.Add(p, off)), capacity)
				n := count(p)
				for i := 0; i < n; i++ {
					v, err := f.Read(buf)
					if err != nil {
						return err
					}
					arr[i] = M(v)
				}
				clear(arr[n:])
				return nil
			}
			return encode, decode
		},
	}
}

// lengthOf reads an integer field and clamps it to [0, capacity].
func lengthOf[T integer](off uintptr, capacity int) lengthFunc {
	return func(p unsafe.Pointer) int {
		v := *(*T)(unsafe.Add(p, off))
		if v <= 0 {
			return 0
		}
		if uint64(v) > uint64(capacity) {
			return capacity
		}
		return int(v)
	}
}
