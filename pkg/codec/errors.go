package codec

import (
	"errors"
	"fmt"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

// Decode errors, returned unwrapped from the hot path.
var (
	ErrBufferUnderrun = wire.ErrBufferUnderrun
	ErrVarintOverflow = wire.ErrVarintOverflow
)

// Registration errors.
var (
	// ErrUnsupportedField is returned when no strategy claims a field.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrConflictingFieldConfiguration is returned when a field carries hints
	// that cannot be honored together or do not fit its type.
	ErrConflictingFieldConfiguration = errors.New("conflicting field configuration")
	// ErrInvalidLengthField is returned when a runtime length refers to a field
	// that is missing, declared later, or not an integer.
	ErrInvalidLengthField = errors.New("invalid length field")
	// ErrInvalidTag is returned for unknown codec tag options.
	ErrInvalidTag = errors.New("invalid codec tag")
	// ErrConflictingRegistration is returned when a type or a name is
	// registered twice with different schemas.
	ErrConflictingRegistration = errors.New("conflicting registration")
	// ErrNotRecord is returned when registering something other than a struct.
	ErrNotRecord = errors.New("type is not a record")
)

// Lookup errors.
var (
	// ErrCodecNotFound is returned when no codec is installed for a type.
	ErrCodecNotFound = errors.New("codec not found")
	// ErrTypeMismatch is returned when a value does not match the codec's type.
	ErrTypeMismatch = errors.New("value type does not match codec")
)

// FieldError describes a registration failure for one field of a record.
type FieldError struct {
	Record string
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("codec: record %s field %s: %v", e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("codec: record %s field %s: %v: %s", e.Record, e.Field, e.Err, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(record, field string, err error, format string, args ...any) *FieldError {
	return &FieldError{Record: record, Field: field, Err: err, Detail: fmt.Sprintf(format, args...)}
}
