// Package codec compiles Go struct types into binary codecs for realtime
// network records.
//
// A record is a flat struct of scalars, enums, fixed-capacity arrays and other
// records. Its fields travel on the wire in declaration order, concatenated,
// with no field tags, names or type markers. The layout is fully determined by
// the record type, so both peers must agree on the type definitions.
//
// # Field Hints
//
// Fields are configured with the codec struct tag:
//
//	type SetStructure struct {
//	    Object ObjectID
//	    Field  uint16
//	    Size   uint8
//	    Data   [255]byte `codec:"len=Size"`
//	}
//
//	type SetLong struct {
//	    Object ObjectID
//	    Field  uint16
//	    Value  int64 `codec:"varint"`
//	}
//
// Options:
//   - varint: zig-zag LEB128 encoding for 32 and 64 bit integers and for
//     arrays of them
//   - fixed: the array always travels at full capacity (the default)
//   - len=Name: the array travels with the runtime length held by an earlier
//     integer field, clamped to [0, capacity]
//
// Unexported and blank fields are not part of the record.
//
// # Strategies
//
// Each field is claimed by the first strategy that applies:
//
//  1. variable-int: integer field with the varint hint
//  2. formatted: bool, sized integers, int, uint, float32, float64
//  3. enum: defined type whose underlying type is an integer
//  4. fixed-array: array of a formatted type
//  5. codec-array: array of a registered record
//  6. codec: a registered record
//
// A field that no strategy claims fails the build with ErrUnsupportedField.
//
// # Wire Format
//
// Fixed-width values are big-endian. Bool is one byte, decoded as true for any
// nonzero value. int and uint travel as 64-bit values. Enums travel as their
// underlying integer. Nested records are inlined with no framing. Arrays with
// a runtime length write exactly that many elements; the length itself is
// whatever earlier field holds it.
//
// # Usage
//
//	b := codec.NewBuilder(codec.WithLogger(logger))
//	if err := codec.RegisterType[SetLong](b); err != nil {
//	    return err
//	}
//	if err := codec.RegisterType[ObjectID](b); err != nil {
//	    return err
//	}
//	reg, err := b.Build()
//	if err != nil {
//	    return err
//	}
//
//	setLong, _ := codec.Resolve[SetLong](reg)
//	buf := wire.NewBuffer(64)
//	setLong.Encode(&cmd, buf)
//
//	var out SetLong
//	if err := setLong.Decode(buf, &out); err != nil {
//	    return err // out must be discarded
//	}
//
// Records may be registered in any order. Build allocates every codec before
// compiling any field, so a record may reference a record registered after it.
//
// # Error Handling
//
// Build reports schema problems as *FieldError values wrapping
// ErrUnsupportedField, ErrConflictingFieldConfiguration or
// ErrInvalidLengthField. Decoding reports ErrBufferUnderrun and
// ErrVarintOverflow; on error the read cursor is restored to where the record
// began and the target holds partial data.
//
// # Thread Safety
//
// Builder is not safe for concurrent use. A built Registry and its codecs are
// immutable and safe for concurrent use. A wire.Buffer must not be shared
// between goroutines without external synchronization.
package codec
