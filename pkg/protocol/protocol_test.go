package protocol

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

func roundTrip[T any](t *testing.T, reg *codec.Registry, in T) []byte {
	t.Helper()
	buf := wire.NewBuffer(64)
	require.NoError(t, codec.Encode(reg, &in, buf))
	data := append([]byte(nil), buf.Bytes()...)

	out, err := codec.Decode[T](reg, buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Zero(t, buf.Remaining())
	return data
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, len(Names()), reg.Len())

	for _, name := range Names() {
		_, err := reg.ResolveName(name)
		assert.NoError(t, err, name)
	}
}

func TestRegister_Twice(t *testing.T) {
	b := codec.NewBuilder()
	require.NoError(t, Register(b))
	require.NoError(t, Register(b))

	reg, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, len(Names()), reg.Len())
}

func TestRecords_WireLayout(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	object := ObjectID{ID: 300, Owner: OwnerMember, Member: 5}

	t.Run("object id", func(t *testing.T) {
		data := roundTrip(t, reg, object)
		assert.Equal(t, []byte{0xac, 0x02, 0x01, 0x00, 0x05}, data)
	})

	t.Run("set long", func(t *testing.T) {
		data := roundTrip(t, reg, SetLong{Object: object, Field: 1, Value: -100})
		assert.Equal(t, []byte{0xac, 0x02, 0x01, 0x00, 0x05, 0x00, 0x01, 0xc7, 0x01}, data)
	})

	t.Run("set double", func(t *testing.T) {
		data := roundTrip(t, reg, SetDouble{Object: object, Field: 2, Value: 2})
		assert.Equal(t, []byte{0xac, 0x02, 0x01, 0x00, 0x05, 0x00, 0x02, 0x40, 0, 0, 0, 0, 0, 0, 0}, data)
	})

	t.Run("structure", func(t *testing.T) {
		var s SetStructure
		s.Object = object
		s.Field = 3
		require.NoError(t, s.SetBytes([]byte("hi")))
		data := roundTrip(t, reg, s)
		assert.Equal(t, []byte{0xac, 0x02, 0x01, 0x00, 0x05, 0x00, 0x03, 0x02, 'h', 'i'}, data)
	})

	t.Run("keep alive", func(t *testing.T) {
		assert.Empty(t, roundTrip(t, reg, KeepAlive{}))
	})

	t.Run("header", func(t *testing.T) {
		data := roundTrip(t, reg, Header{Frame: 1, Command: CommandEvent, Channel: 2})
		assert.Equal(t, []byte{0x01, byte(CommandEvent), 0x02}, data)
	})
}

func TestRecords_RoundTrip(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	object := ObjectID{ID: math.MaxUint32, Owner: OwnerRoom}
	roundTrip(t, reg, CreateGameObject{Object: object, Template: 7, AccessGroups: math.MaxUint64})
	roundTrip(t, reg, CreatedGameObject{Object: object})
	roundTrip(t, reg, DeleteGameObject{Object: object})
	roundTrip(t, reg, IncrementLong{Object: object, Field: 1, Value: math.MinInt64})
	roundTrip(t, reg, CompareAndSetLong{Object: object, Field: 1, Current: 1, New: 2, Reset: -3})
	roundTrip(t, reg, IncrementDouble{Object: object, Field: 1, Value: -0.5})
	roundTrip(t, reg, Transform{Object: object, Position: Vector3{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}})
	roundTrip(t, reg, AttachToRoom{Room: 1 << 40, Member: 9})
	roundTrip(t, reg, DetachFromRoom{Room: 1, Member: 9})

	var e Event
	require.NoError(t, e.SetBytes(bytes.Repeat([]byte{0xee}, MaxStructureSize)))
	data := roundTrip(t, reg, e)
	assert.Len(t, data, 1+1+2+2+1+MaxStructureSize)
}

func TestTransform_FixedSize(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	c, err := Lookup(reg, CommandTransform)
	require.NoError(t, err)
	_, fixed := c.FixedSize()
	assert.False(t, fixed, "object id carries a varint")

	v, err := reg.ResolveName("vector3")
	require.NoError(t, err)
	size, fixed := v.FixedSize()
	assert.True(t, fixed)
	assert.Equal(t, 12, size)
}

func TestObjectList(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	var l ObjectList
	for i := 0; i < MaxListedObjects; i++ {
		require.True(t, l.Append(ObjectID{ID: uint32(i), Owner: OwnerMember, Member: uint16(i)}))
	}
	assert.False(t, l.Append(ObjectID{}))
	assert.Len(t, l.Items(), MaxListedObjects)
	roundTrip(t, reg, l)

	short := ObjectList{}
	short.Append(ObjectID{ID: 1})
	data := roundTrip(t, reg, short)
	assert.Equal(t, []byte{0x01, 0x01, 0x00, 0x00, 0x00}, data)
}

func TestSetBytes_TooLarge(t *testing.T) {
	var s SetStructure
	require.NoError(t, s.SetBytes([]byte{1, 2, 3}))
	assert.Error(t, s.SetBytes(make([]byte, MaxStructureSize+1)))
	assert.Zero(t, s.Size)

	require.NoError(t, s.SetBytes([]byte{4}))
	assert.Equal(t, []byte{4}, s.Bytes())
	assert.Equal(t, byte(0), s.Data[1])
}

func TestCommandType(t *testing.T) {
	name, ok := CommandSetLong.Record()
	assert.True(t, ok)
	assert.Equal(t, "set_long", name)
	assert.Equal(t, "set_long", CommandSetLong.String())
	assert.Equal(t, "command(200)", CommandType(200).String())

	reg, err := NewRegistry()
	require.NoError(t, err)
	_, err = Lookup(reg, CommandType(200))
	assert.ErrorIs(t, err, codec.ErrCodecNotFound)

	assert.Equal(t, "member", OwnerMember.String())
	assert.Equal(t, "owner(9)", OwnerKind(9).String())
}
