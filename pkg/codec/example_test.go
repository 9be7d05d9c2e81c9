package codec_test

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

type Counter struct {
	Object uint32 `codec:"varint"`
	Field  uint16
	Value  int64 `codec:"varint"`
}

type Batch struct {
	Count    uint8
	Counters [4]Counter `codec:"len=Count"`
}

// Example demonstrates registering records and round tripping a value.
func Example() {
	b := codec.NewBuilder()
	// Batch refers to Counter; registration order does not matter.
	if err := codec.RegisterType[Batch](b); err != nil {
		log.Fatal(err)
	}
	if err := codec.RegisterType[Counter](b); err != nil {
		log.Fatal(err)
	}
	reg, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	batch, err := codec.Resolve[Batch](reg)
	if err != nil {
		log.Fatal(err)
	}

	in := Batch{Count: 2, Counters: [4]Counter{
		{Object: 1, Field: 7, Value: -1},
		{Object: 300, Field: 8, Value: 100},
	}}
	buf := wire.NewBuffer(64)
	batch.Encode(&in, buf)
	fmt.Println(hex.EncodeToString(buf.Bytes()))

	var out Batch
	if err := batch.Decode(buf, &out); err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Count, out.Counters[1].Object, out.Counters[1].Value)
	// Output:
	// 0201000701ac020008c801
	// 2 300 100
}

// ExampleCodec_Fields shows the layout chosen for each field.
func ExampleCodec_Fields() {
	b := codec.NewBuilder()
	if err := codec.RegisterType[Counter](b, codec.Named("counter")); err != nil {
		log.Fatal(err)
	}
	reg, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	c, err := reg.ResolveName("counter")
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range c.Fields() {
		fmt.Printf("%s %s %s %d\n", f.Name, f.Strategy, f.Formatter, f.Size)
	}
	// Output:
	// Object variable-int VariableUInt -1
	// Field formatted UShort 2
	// Value variable-int VariableLong -1
}
