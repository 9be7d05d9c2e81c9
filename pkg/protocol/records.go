// Package protocol defines the relay's network command records and registers
// them with the codec framework.
package protocol

import (
	"fmt"
)

// MaxStructureSize is the capacity of structure and event payloads.
const MaxStructureSize = 255

// MaxListedObjects is the capacity of ObjectList.
const MaxListedObjects = 32

// OwnerKind tells whether a game object belongs to the room or to a member.
type OwnerKind uint8

const (
	OwnerRoom OwnerKind = iota
	OwnerMember
)

func (o OwnerKind) String() string {
	switch o {
	case OwnerRoom:
		return "room"
	case OwnerMember:
		return "member"
	default:
		return fmt.Sprintf("owner(%d)", uint8(o))
	}
}

// ObjectID identifies a game object inside a room.
type ObjectID struct {
	ID     uint32 `codec:"varint"`
	Owner  OwnerKind
	Member uint16
}

// Header precedes every command in a frame.
type Header struct {
	Frame   uint64 `codec:"varint"`
	Command CommandType
	Channel uint8
}

// CreateGameObject asks the relay to create an object from a template.
type CreateGameObject struct {
	Object       ObjectID
	Template     uint16
	AccessGroups uint64
}

// CreatedGameObject confirms that all fields of a new object were sent.
type CreatedGameObject struct {
	Object ObjectID
}

// DeleteGameObject removes an object and all of its fields.
type DeleteGameObject struct {
	Object ObjectID
}

// SetLong sets an integer field.
type SetLong struct {
	Object ObjectID
	Field  uint16
	Value  int64 `codec:"varint"`
}

// IncrementLong adds to an integer field.
type IncrementLong struct {
	Object ObjectID
	Field  uint16
	Value  int64 `codec:"varint"`
}

// CompareAndSetLong sets an integer field when it holds Current.
type CompareAndSetLong struct {
	Object  ObjectID
	Field   uint16
	Current int64 `codec:"varint"`
	New     int64 `codec:"varint"`
	Reset   int64 `codec:"varint"`
}

// SetDouble sets a floating point field.
type SetDouble struct {
	Object ObjectID
	Field  uint16
	Value  float64
}

// IncrementDouble adds to a floating point field.
type IncrementDouble struct {
	Object ObjectID
	Field  uint16
	Value  float64
}

// SetStructure replaces a binary field.
type SetStructure struct {
	Object ObjectID
	Field  uint16
	Size   uint8
	Data   [MaxStructureSize]byte `codec:"len=Size"`
}

// Bytes returns the payload.
func (s *SetStructure) Bytes() []byte {
	return s.Data[:s.Size]
}

// SetBytes stores p as the payload. It fails when p exceeds MaxStructureSize.
func (s *SetStructure) SetBytes(p []byte) error {
	n, err := fill(s.Data[:], p)
	s.Size = n
	return err
}

// Event delivers a binary payload without storing it.
type Event struct {
	Object ObjectID
	Field  uint16
	Size   uint8
	Data   [MaxStructureSize]byte `codec:"len=Size"`
}

// Bytes returns the payload.
func (e *Event) Bytes() []byte {
	return e.Data[:e.Size]
}

// SetBytes stores p as the payload. It fails when p exceeds MaxStructureSize.
func (e *Event) SetBytes(p []byte) error {
	n, err := fill(e.Data[:], p)
	e.Size = n
	return err
}

func fill(dst, p []byte) (uint8, error) {
	if len(p) > len(dst) {
		return 0, fmt.Errorf("payload of %d bytes exceeds %d", len(p), len(dst))
	}
	n := copy(dst, p)
	clear(dst[n:])
	return uint8(n), nil
}

// Vector3 is a position in room space.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

// Transform moves and rotates an object. Rotation is a quaternion.
type Transform struct {
	Object   ObjectID
	Position Vector3
	Rotation [4]float32 `codec:"fixed"`
}

// ObjectList enumerates objects, for example in a room snapshot.
type ObjectList struct {
	Count   uint8
	Objects [MaxListedObjects]ObjectID `codec:"len=Count"`
}

// Append adds id to the list. It reports false when the list is full.
func (l *ObjectList) Append(id ObjectID) bool {
	if int(l.Count) >= len(l.Objects) {
		return false
	}
	l.Objects[l.Count] = id
	l.Count++
	return true
}

// Items returns the listed objects.
func (l *ObjectList) Items() []ObjectID {
	n := min(int(l.Count), len(l.Objects))
	return l.Objects[:n]
}

// KeepAlive holds the channel open when there are no commands to send.
type KeepAlive struct{}

// AttachToRoom starts delivery of room commands to a member.
type AttachToRoom struct {
	Room   uint64 `codec:"varint"`
	Member uint16
}

// DetachFromRoom stops delivery of room commands to a member.
type DetachFromRoom struct {
	Room   uint64 `codec:"varint"`
	Member uint16
}
