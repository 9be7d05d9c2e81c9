package codec

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag read by DescribeStruct.
const TagName = "codec"

// FieldDescriptor is the static metadata of one record field.
type FieldDescriptor struct {
	Name   string       // struct field name, used in diagnostics and length references
	Index  int          // struct field index
	Offset uintptr      // byte offset inside the record
	Type   reflect.Type // declared Go type

	Variable    bool   // `codec:"varint"`: variable-size integer encoding
	Fixed       bool   // `codec:"fixed"`: array always travels at full length
	LengthField string // `codec:"len=Count"`: earlier integer field holding the runtime length
}

// Factory derives the ordered field descriptors of a record type. The order
// of the returned descriptors is the wire order.
type Factory func(t reflect.Type) ([]FieldDescriptor, error)

// DescribeStruct is the default Factory. It walks exported fields in
// declaration order and reads their codec tags. Unexported and blank fields are
// not part of the record.
func DescribeStruct(t reflect.Type) ([]FieldDescriptor, error) {
	return describe(t, func(f reflect.StructField) string {
		return f.Tag.Get(TagName)
	})
}

// TagFactory returns a Factory that uses tags instead of the struct tags for
// the named fields. It serves types whose declaration cannot carry codec tags.
func TagFactory(tags map[string]string) Factory {
	return func(t reflect.Type) ([]FieldDescriptor, error) {
		for name := range tags {
			if f, ok := t.FieldByName(name); !ok || len(f.Index) != 1 || !f.IsExported() {
				return nil, fieldError(t.String(), name, ErrInvalidTag, "no exported field with this name")
			}
		}
		return describe(t, func(f reflect.StructField) string {
			if tag, ok := tags[f.Name]; ok {
				return tag
			}
			return f.Tag.Get(TagName)
		})
	}
}

func describe(t reflect.Type, tagOf func(reflect.StructField) string) ([]FieldDescriptor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotRecord, t)
	}

	fields := make([]FieldDescriptor, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		d := FieldDescriptor{
			Name:   sf.Name,
			Index:  i,
			Offset: sf.Offset,
			Type:   sf.Type,
		}
		if err := parseTag(&d, tagOf(sf)); err != nil {
			return nil, fieldError(t.String(), sf.Name, ErrInvalidTag, "%v", err)
		}
		fields = append(fields, d)
	}
	return fields, nil
}

// parseTag applies a comma separated list of options: varint, fixed, len=Name.
func parseTag(d *FieldDescriptor, tag string) error {
	if tag == "" {
		return nil
	}
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "varint":
			d.Variable = true
		case opt == "fixed":
			d.Fixed = true
		case strings.HasPrefix(opt, "len="):
			name := strings.TrimPrefix(opt, "len=")
			if name == "" {
				return fmt.Errorf("empty length field in %q", tag)
			}
			d.LengthField = name
		default:
			return fmt.Errorf("unknown option %q", opt)
		}
	}
	return nil
}

// validateFields checks descriptors produced by a factory against the record
// type and rejects hint combinations no strategy can honor.
func validateFields(t reflect.Type, record string, fields []FieldDescriptor) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		d := &fields[i]
		if d.Index < 0 || d.Index >= t.NumField() {
			return fieldError(record, d.Name, ErrUnsupportedField, "field index %d out of range", d.Index)
		}
		sf := t.Field(d.Index)
		if sf.Name != d.Name || sf.Type != d.Type || sf.Offset != d.Offset {
			return fieldError(record, d.Name, ErrUnsupportedField, "descriptor does not match struct field %s", sf.Name)
		}
		if !sf.IsExported() {
			return fieldError(record, d.Name, ErrUnsupportedField, "field is not exported")
		}
		if _, dup := seen[d.Name]; dup {
			return fieldError(record, d.Name, ErrConflictingRegistration, "field listed twice")
		}
		seen[d.Name] = struct{}{}

		if err := validateHints(d); err != "" {
			return fieldError(record, d.Name, ErrConflictingFieldConfiguration, "%s", err)
		}
	}
	return nil
}

func validateHints(d *FieldDescriptor) string {
	isArray := d.Type.Kind() == reflect.Array
	switch {
	case d.Variable && d.Fixed:
		return "varint and fixed are mutually exclusive"
	case d.Fixed && d.LengthField != "":
		return "fixed and len are mutually exclusive"
	case (d.Fixed || d.LengthField != "") && !isArray:
		return fmt.Sprintf("array hint on non-array type %s", d.Type)
	case d.LengthField == d.Name:
		return "array cannot hold its own length"
	}
	if d.Variable {
		base := d.Type
		if isArray {
			base = base.Elem()
		}
		if _, ok := variableKinds[base.Kind()]; !ok {
			return fmt.Sprintf("varint hint on non-integer type %s", d.Type)
		}
	}
	return ""
}
