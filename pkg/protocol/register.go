package protocol

import (
	"fmt"
	"reflect"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

// CommandType is the command code carried in Header.
type CommandType uint8

const (
	CommandCreate CommandType = iota + 1
	CommandCreated
	CommandDelete
	CommandSetLong
	CommandIncrementLong
	CommandCompareAndSetLong
	CommandSetDouble
	CommandIncrementDouble
	CommandSetStructure
	CommandEvent
	CommandTransform
	CommandAttachToRoom
	CommandDetachFromRoom
)

type entry struct {
	name    string
	typ     reflect.Type
	command CommandType
}

func record[T any](name string, command CommandType) entry {
	return entry{name: name, typ: reflect.TypeFor[T](), command: command}
}

// records lists commands ahead of the records they contain.
var records = []entry{
	record[CreateGameObject]("create_game_object", CommandCreate),
	record[CreatedGameObject]("created_game_object", CommandCreated),
	record[DeleteGameObject]("delete_game_object", CommandDelete),
	record[SetLong]("set_long", CommandSetLong),
	record[IncrementLong]("increment_long", CommandIncrementLong),
	record[CompareAndSetLong]("compare_and_set_long", CommandCompareAndSetLong),
	record[SetDouble]("set_double", CommandSetDouble),
	record[IncrementDouble]("increment_double", CommandIncrementDouble),
	record[SetStructure]("set_structure", CommandSetStructure),
	record[Event]("event", CommandEvent),
	record[Transform]("transform", CommandTransform),
	record[AttachToRoom]("attach_to_room", CommandAttachToRoom),
	record[DetachFromRoom]("detach_from_room", CommandDetachFromRoom),
	record[ObjectList]("object_list", 0),
	record[Header]("header", 0),
	record[KeepAlive]("keep_alive", 0),
	record[Vector3]("vector3", 0),
	record[ObjectID]("object_id", 0),
}

var byCommand = func() map[CommandType]string {
	m := make(map[CommandType]string)
	for _, e := range records {
		if e.command != 0 {
			m[e.command] = e.name
		}
	}
	return m
}()

// Record returns the registry name of the record that carries c.
func (c CommandType) Record() (string, bool) {
	name, ok := byCommand[c]
	return name, ok
}

func (c CommandType) String() string {
	if name, ok := byCommand[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// Names returns the registry names of all protocol records.
func Names() []string {
	names := make([]string, len(records))
	for i, e := range records {
		names[i] = e.name
	}
	return names
}

// Register adds every protocol record to b.
func Register(b *codec.Builder) error {
	for _, e := range records {
		if err := b.Register(e.typ, codec.Named(e.name)); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.name, err)
		}
	}
	return nil
}

// NewRegistry builds a registry holding the protocol records.
func NewRegistry(opts ...codec.Option) (*codec.Registry, error) {
	b := codec.NewBuilder(opts...)
	if err := Register(b); err != nil {
		return nil, err
	}
	return b.Build()
}

// Lookup returns the codec for the record that carries c.
func Lookup(reg *codec.Registry, c CommandType) (*codec.Codec, error) {
	name, ok := c.Record()
	if !ok {
		return nil, fmt.Errorf("%w: %s", codec.ErrCodecNotFound, c)
	}
	return reg.ResolveName(name)
}
