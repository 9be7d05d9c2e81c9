package codec

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Strategy identifies the rule that claimed a field.
type Strategy uint8

// Strategies in priority order. The first one that applies to a field wins.
const (
	StrategyVariableInt Strategy = iota + 1
	StrategyFormatted
	StrategyEnum
	StrategyFixedArray
	StrategyCodecArray
	StrategyCodec
)

var strategyNames = map[Strategy]string{
	StrategyVariableInt: "variable-int",
	StrategyFormatted:   "formatted",
	StrategyEnum:        "enum",
	StrategyFixedArray:  "fixed-array",
	StrategyCodecArray:  "codec-array",
	StrategyCodec:       "codec",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// variableSize marks a data dependent wire size.
const variableSize = -1

// fieldPlan is the compiled form of one field.
type fieldPlan struct {
	layout FieldLayout
	encode encodeStep
	decode decodeStep

	// Static size accounting, resolved after every codec is compiled.
	size   int    // bytes, or variableSize
	nested *Codec // nested codec whose size is multiplied by count
	count  int
}

// strategy recognizes one field shape and compiles its steps.
type strategy interface {
	kind() Strategy
	// compile returns ok=false when the strategy does not apply to the field.
	compile(c *composer, d *FieldDescriptor) (plan *fieldPlan, ok bool, err error)
}

// chain is evaluated in order for every field.
var chain = [...]strategy{
	variableIntStrategy{},
	formattedStrategy{},
	enumStrategy{},
	fixedArrayStrategy{},
	codecArrayStrategy{},
	codecStrategy{},
}

// integerField is an earlier field that can serve as a runtime array length.
type integerField struct {
	offset uintptr
	kind   scalarKind
}

// composer compiles the fields of one record against the codec arena.
type composer struct {
	record   string
	resolve  func(reflect.Type) (*Codec, bool)
	integers map[string]integerField
}

func (c *composer) field(d *FieldDescriptor) (*fieldPlan, error) {
	for _, s := range chain {
		plan, ok, err := s.compile(c, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		plan.layout.Name = d.Name
		plan.layout.Type = d.Type.String()
		plan.layout.Strategy = s.kind()
		return plan, nil
	}

	detail := fmt.Sprintf("no strategy for type %s", d.Type)
	switch d.Type.Kind() {
	case reflect.Struct:
		detail = fmt.Sprintf("record type %s is not registered", d.Type)
	case reflect.Array:
		detail = fmt.Sprintf("array element type %s is neither a scalar nor a registered record", d.Type.Elem())
	}
	return nil, fieldError(c.record, d.Name, ErrUnsupportedField, "%s", detail)
}

// claimInteger records a scalar field so later arrays may use it as length.
func (c *composer) claimInteger(d *FieldDescriptor) {
	if k, ok := fixedKinds[d.Type.Kind()]; ok && k.length != nil {
		c.integers[d.Name] = integerField{offset: d.Offset, kind: k}
	}
}

// length resolves the runtime length of an array field, or nil when the
// array always travels at full capacity.
func (c *composer) length(d *FieldDescriptor, capacity int) (lengthFunc, error) {
	if d.LengthField == "" {
		return nil, nil
	}
	src, ok := c.integers[d.LengthField]
	if !ok {
		return nil, fieldError(c.record, d.Name, ErrInvalidLengthField,
			"%q must be an integer field declared before %s", d.LengthField, d.Name)
	}
	return src.kind.length(src.offset, capacity), nil
}

func scalarPlan(k scalarKind, d *FieldDescriptor) *fieldPlan {
	encode, decode := k.field(d.Offset)
	size := k.size
	if size == 0 {
		size = variableSize
	}
	return &fieldPlan{
		layout: FieldLayout{Formatter: k.formatter},
		encode: encode,
		decode: decode,
		size:   size,
	}
}

// elementKind returns the scalar kind for array elements. Present types and
// enums share the formatter of their kind; the varint hint applies per element.
func elementKind(t reflect.Type, variable bool) (scalarKind, bool) {
	if variable {
		k, ok := variableKinds[t.Kind()]
		return k, ok
	}
	k, ok := fixedKinds[t.Kind()]
	return k, ok
}

type variableIntStrategy struct{}

func (variableIntStrategy) kind() Strategy { return StrategyVariableInt }

func (variableIntStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	if !d.Variable || d.Type.Kind() == reflect.Array {
		return nil, false, nil
	}
	k, ok := variableKinds[d.Type.Kind()]
	if !ok {
		return nil, false, nil
	}
	c.claimInteger(d)
	return scalarPlan(k, d), true, nil
}

type formattedStrategy struct{}

func (formattedStrategy) kind() Strategy { return StrategyFormatted }

func (formattedStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	k, ok := fixedKinds[d.Type.Kind()]
	if !ok {
		return nil, false, nil
	}
	// Defined integer types are enums; defined bool and float types have no
	// enum meaning and travel as their kind.
	if !isPredeclared(d.Type) && isInteger(d.Type.Kind()) {
		return nil, false, nil
	}
	c.claimInteger(d)
	return scalarPlan(k, d), true, nil
}

type enumStrategy struct{}

func (enumStrategy) kind() Strategy { return StrategyEnum }

func (enumStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	if isPredeclared(d.Type) || !isInteger(d.Type.Kind()) {
		return nil, false, nil
	}
	// An enum has the memory layout of its underlying integer, so the
	// formatter for that width reads and writes it in place.
	k := fixedKinds[d.Type.Kind()]
	c.claimInteger(d)
	return scalarPlan(k, d), true, nil
}

type fixedArrayStrategy struct{}

func (fixedArrayStrategy) kind() Strategy { return StrategyFixedArray }

func (fixedArrayStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	if d.Type.Kind() != reflect.Array {
		return nil, false, nil
	}
	k, ok := elementKind(d.Type.Elem(), d.Variable)
	if !ok {
		return nil, false, nil
	}
	capacity := d.Type.Len()
	length, err := c.length(d, capacity)
	if err != nil {
		return nil, false, err
	}

	encode, decode := k.array(d.Offset, capacity, length)
	plan := &fieldPlan{
		layout: FieldLayout{
			Formatter:   k.formatter,
			Capacity:    capacity,
			LengthField: d.LengthField,
		},
		encode: encode,
		decode: decode,
		size:   variableSize,
	}
	if length == nil && k.size > 0 {
		plan.size = k.size * capacity
	}
	return plan, true, nil
}

type codecArrayStrategy struct{}

func (codecArrayStrategy) kind() Strategy { return StrategyCodecArray }

func (codecArrayStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	if d.Type.Kind() != reflect.Array {
		return nil, false, nil
	}
	elem := d.Type.Elem()
	nested, ok := c.resolve(elem)
	if !ok {
		return nil, false, nil
	}
	capacity := d.Type.Len()
	length, err := c.length(d, capacity)
	if err != nil {
		return nil, false, err
	}

	encode, decode := nestedArraySteps(nested, elem, d.Offset, capacity, length)
	plan := &fieldPlan{
		layout: FieldLayout{
			Record:      nested.name,
			Capacity:    capacity,
			LengthField: d.LengthField,
		},
		encode: encode,
		decode: decode,
		size:   variableSize,
	}
	if length == nil {
		plan.nested = nested
		plan.count = capacity
	}
	return plan, true, nil
}

type codecStrategy struct{}

func (codecStrategy) kind() Strategy { return StrategyCodec }

func (codecStrategy) compile(c *composer, d *FieldDescriptor) (*fieldPlan, bool, error) {
	nested, ok := c.resolve(d.Type)
	if !ok {
		return nil, false, nil
	}
	off := d.Offset
	encode := func(p unsafe.Pointer, buf *wire.Buffer) {
		nested.encodeAt(unsafe.Add(p, off), buf)
	}
	decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
		return nested.decodeAt(unsafe.Add(p, off), buf)
	}
	return &fieldPlan{
		layout: FieldLayout{Record: nested.name},
		encode: encode,
		decode: decode,
		size:   variableSize,
		nested: nested,
		count:  1,
	}, true, nil
}

// nestedArraySteps runs the nested codec over each element. Decoding resets
// the slots past the runtime length to their zero value.
func nestedArraySteps(nested *Codec, elem reflect.Type, off uintptr, capacity int, length lengthFunc) (encodeStep, decodeStep) {
	stride := elem.Size()
	count := func(p unsafe.Pointer) int {
		if length == nil {
			return capacity
		}
		return length(p)
	}
	encode := func(p unsafe.Pointer, buf *wire.Buffer) {
		base := unsafe.Add(p, off)
		n := count(p)
		for i := 0; i < n; i++ {
			nested.encodeAt(unsafe.Add(base, uintptr(i)*stride), buf)
		}
	}
	decode := func(p unsafe.Pointer, buf *wire.Buffer) error {
		base := unsafe.Add(p, off)
		n := count(p)
		for i := 0; i < n; i++ {
			if err := nested.decodeAt(unsafe.Add(base, uintptr(i)*stride), buf); err != nil {
				return err
			}
		}
		for i := n; i < capacity; i++ {
			reflect.NewAt(elem, unsafe.Add(base, uintptr(i)*stride)).Elem().SetZero()
		}
		return nil
	}
	return encode, decode
}
