package codec

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// FieldLayout describes how one field of a record travels on the wire.
type FieldLayout struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Strategy    Strategy `json:"strategy" yaml:"strategy"`
	Formatter   string   `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Record      string   `json:"record,omitempty" yaml:"record,omitempty"`
	Capacity    int      `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	LengthField string   `json:"length_field,omitempty" yaml:"length_field,omitempty"`
	Size        int      `json:"size" yaml:"size"` // -1 when data dependent
}

// Codec is the compiled encode/decode pair of one record type. A Codec is
// immutable once its registry is built and safe for concurrent use.
type Codec struct {
	name   string
	typ    reflect.Type
	layout []FieldLayout
	encode []encodeStep
	decode []decodeStep
	size   int
}

// Name returns the name the record was registered under.
func (c *Codec) Name() string {
	return c.name
}

// Type returns the record type.
func (c *Codec) Type() reflect.Type {
	return c.typ
}

// Fields returns the wire layout in field order.
func (c *Codec) Fields() []FieldLayout {
	out := make([]FieldLayout, len(c.layout))
	copy(out, c.layout)
	return out
}

// FixedSize returns the wire size of every value of the record, and false when
// the size depends on field values.
func (c *Codec) FixedSize() (int, bool) {
	if c.size == variableSize {
		return 0, false
	}
	return c.size, true
}

// New returns a pointer to a new zero record.
func (c *Codec) New() any {
	return reflect.New(c.typ).Interface()
}

// EncodeValue appends v, a record or a pointer to one, to buf.
func (c *Codec) EncodeValue(v any, buf *wire.Buffer) error {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return fmt.Errorf("%w: got nil, want %s", ErrTypeMismatch, c.typ)
	case rv.Type() == c.typ:
		ptr := reflect.New(c.typ)
		ptr.Elem().Set(rv)
		c.encodeAt(ptr.UnsafePointer(), buf)
		return nil
	}
	p, err := c.pointer(rv)
	if err != nil {
		return err
	}
	c.encodeAt(p, buf)
	return nil
}

// DecodeInto reads one record into v, which must be a non-nil pointer to the
// record type. On error the read cursor is restored and v must be discarded.
func (c *Codec) DecodeInto(buf *wire.Buffer, v any) error {
	p, err := c.pointer(reflect.ValueOf(v))
	if err != nil {
		return err
	}
	return c.decodeRecord(p, buf)
}

// DecodeValue reads one record and returns a pointer to it.
func (c *Codec) DecodeValue(buf *wire.Buffer) (any, error) {
	ptr := reflect.New(c.typ)
	if err := c.decodeRecord(ptr.UnsafePointer(), buf); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func (c *Codec) pointer(rv reflect.Value) (unsafe.Pointer, error) {
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.Type().Elem() != c.typ || rv.IsNil() {
		return nil, fmt.Errorf("%w: got %v, want *%s", ErrTypeMismatch, typeOf(rv), c.typ)
	}
	return rv.UnsafePointer(), nil
}

func typeOf(rv reflect.Value) any {
	if !rv.IsValid() {
		return "nil"
	}
	return rv.Type()
}

func (c *Codec) encodeAt(p unsafe.Pointer, buf *wire.Buffer) {
	for _, step := range c.encode {
		step(p, buf)
	}
}

func (c *Codec) decodeAt(p unsafe.Pointer, buf *wire.Buffer) error {
	for _, step := range c.decode {
		if err := step(p, buf); err != nil {
			return err
		}
	}
	return nil
}

// decodeRecord is the top-level decode: a failure anywhere in the record
// rewinds the cursor to where the record began.
func (c *Codec) decodeRecord(p unsafe.Pointer, buf *wire.Buffer) error {
	start := buf.ReadOffset()
	if err := c.decodeAt(p, buf); err != nil {
		buf.SetReadOffset(start)
		return err
	}
	return nil
}

// Typed is a codec handle bound to its Go type. Callers on the hot path
// resolve it once and keep it.
type Typed[T any] struct {
	codec *Codec
}

// Codec returns the untyped codec.
func (t Typed[T]) Codec() *Codec {
	return t.codec
}

// Encode appends v to buf.
func (t Typed[T]) Encode(v *T, buf *wire.Buffer) {
	t.codec.encodeAt(unsafe.Pointer(v), buf)
}

// Decode reads one record into v. On error the read cursor is restored and v
// must be discarded.
func (t Typed[T]) Decode(buf *wire.Buffer, v *T) error {
	return t.codec.decodeRecord(unsafe.Pointer(v), buf)
}
