package codec

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used while building. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// RegisterOption configures one registration.
type RegisterOption func(*registration)

// Named sets the registry name of the record. Defaults to the Go type string,
// for example "protocol.SetLong".
func Named(name string) RegisterOption {
	return func(r *registration) {
		r.name = name
	}
}

// WithFactory replaces DescribeStruct as the source of field descriptors.
func WithFactory(factory Factory) RegisterOption {
	return func(r *registration) {
		r.factory = factory
	}
}

type registration struct {
	name    string
	typ     reflect.Type
	factory Factory
	fields  []FieldDescriptor
}

// Builder collects record registrations. Nothing is compiled until Build, so
// records may be registered in any order, including a record before the
// records it contains. A Builder is not safe for concurrent use.
type Builder struct {
	logger *zap.Logger
	order  []*registration
	byType map[reflect.Type]*registration
	byName map[string]*registration
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: zap.NewNop(),
		byType: make(map[reflect.Type]*registration),
		byName: make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds the record type t. Field descriptors are derived and checked
// immediately; strategies are chosen by Build. Registering a type again is a
// no-op when name and descriptors are identical and an error otherwise.
func (b *Builder) Register(t reflect.Type, opts ...RegisterOption) error {
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %v", ErrNotRecord, t)
	}

	r := &registration{name: t.String(), typ: t, factory: DescribeStruct}
	for _, opt := range opts {
		opt(r)
	}
	if r.name == "" {
		return fmt.Errorf("%w: empty name for %s", ErrConflictingRegistration, t)
	}

	fields, err := r.factory(t)
	if err != nil {
		return fmt.Errorf("failed to describe %s: %w", t, err)
	}
	if err := validateFields(t, r.name, fields); err != nil {
		return err
	}
	r.fields = fields

	if prev, ok := b.byType[t]; ok {
		if prev.name == r.name && reflect.DeepEqual(prev.fields, r.fields) {
			return nil
		}
		return fmt.Errorf("%w: %s registered twice with different schemas", ErrConflictingRegistration, t)
	}
	if prev, ok := b.byName[r.name]; ok {
		return fmt.Errorf("%w: name %q used by %s and %s", ErrConflictingRegistration, r.name, prev.typ, t)
	}

	b.order = append(b.order, r)
	b.byType[t] = r
	b.byName[r.name] = r
	return nil
}

// RegisterType is Register for the type parameter.
func RegisterType[T any](b *Builder, opts ...RegisterOption) error {
	return b.Register(reflect.TypeFor[T](), opts...)
}

// Build compiles every registered record. It first allocates one codec per
// type, then compiles fields, resolving nested records against the complete
// set. Any failure aborts the build and no registry is returned.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		codecs: make([]*Codec, len(b.order)),
		byType: make(map[reflect.Type]int, len(b.order)),
		byName: make(map[string]int, len(b.order)),
	}
	for i, r := range b.order {
		reg.codecs[i] = &Codec{name: r.name, typ: r.typ}
		reg.byType[r.typ] = i
		reg.byName[r.name] = i
	}

	resolve := func(t reflect.Type) (*Codec, bool) {
		i, ok := reg.byType[t]
		if !ok {
			return nil, false
		}
		return reg.codecs[i], true
	}

	plans := make([][]*fieldPlan, len(b.order))
	for i, r := range b.order {
		c := &composer{
			record:   r.name,
			resolve:  resolve,
			integers: make(map[string]integerField),
		}
		codec := reg.codecs[i]
		for j := range r.fields {
			plan, err := c.field(&r.fields[j])
			if err != nil {
				return nil, err
			}
			plans[i] = append(plans[i], plan)
			codec.encode = append(codec.encode, plan.encode)
			codec.decode = append(codec.decode, plan.decode)
		}
	}

	sizes := newSizer(reg, plans)
	for i, codec := range reg.codecs {
		codec.size = sizes.record(i)
		codec.layout = make([]FieldLayout, len(plans[i]))
		for j, plan := range plans[i] {
			codec.layout[j] = plan.layout
			codec.layout[j].Size = sizes.field(plan)
		}
		b.logger.Debug("codec materialized",
			zap.String("record", codec.name),
			zap.Int("fields", len(codec.layout)),
			zap.Int("size", codec.size))
	}

	b.logger.Info("codec registry built", zap.Int("records", len(reg.codecs)))
	return reg, nil
}

// sizer computes static wire sizes once all codecs are compiled.
type sizer struct {
	reg   *Registry
	plans [][]*fieldPlan
	memo  map[int]int
	busy  map[int]bool
}

func newSizer(reg *Registry, plans [][]*fieldPlan) *sizer {
	return &sizer{reg: reg, plans: plans, memo: make(map[int]int), busy: make(map[int]bool)}
}

func (s *sizer) record(i int) int {
	if size, ok := s.memo[i]; ok {
		return size
	}
	if s.busy[i] {
		return variableSize
	}
	s.busy[i] = true
	total := 0
	for _, plan := range s.plans[i] {
		size := s.field(plan)
		if size == variableSize {
			total = variableSize
			break
		}
		total += size
	}
	s.busy[i] = false
	s.memo[i] = total
	return total
}

func (s *sizer) field(plan *fieldPlan) int {
	if plan.nested == nil {
		return plan.size
	}
	size := s.record(s.reg.byType[plan.nested.typ])
	if size == variableSize {
		return variableSize
	}
	return size * plan.count
}

// Registry maps record types to their codecs. It is read-only and safe for
// concurrent use.
type Registry struct {
	codecs []*Codec
	byType map[reflect.Type]int
	byName map[string]int
}

// Resolve returns the codec installed for t.
func (r *Registry) Resolve(t reflect.Type) (*Codec, error) {
	i, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrCodecNotFound, t)
	}
	return r.codecs[i], nil
}

// ResolveName returns the codec registered under name.
func (r *Registry) ResolveName(name string) (*Codec, error) {
	i, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCodecNotFound, name)
	}
	return r.codecs[i], nil
}

// Codecs returns every codec in registration order.
func (r *Registry) Codecs() []*Codec {
	out := make([]*Codec, len(r.codecs))
	copy(out, r.codecs)
	return out
}

// Len returns the number of installed codecs.
func (r *Registry) Len() int {
	return len(r.codecs)
}

// Resolve returns the typed codec for T.
func Resolve[T any](r *Registry) (Typed[T], error) {
	c, err := r.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return Typed[T]{}, err
	}
	return Typed[T]{codec: c}, nil
}

// Encode appends v to buf using the codec registered for T.
func Encode[T any](r *Registry, v *T, buf *wire.Buffer) error {
	t, err := Resolve[T](r)
	if err != nil {
		return err
	}
	t.Encode(v, buf)
	return nil
}

// Decode reads one T from buf. On error the read cursor is restored and the
// zero value is returned.
func Decode[T any](r *Registry, buf *wire.Buffer) (T, error) {
	var v T
	t, err := Resolve[T](r)
	if err != nil {
		return v, err
	}
	if err := t.Decode(buf, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
