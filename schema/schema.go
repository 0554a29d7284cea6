// Package schema defines the semantic column types of a batch.
package schema

import "fmt"

// FieldType is the value type of a field column.
type FieldType uint8

const (
	// FieldFloat is a float64 field.
	FieldFloat FieldType = iota
	// FieldInteger is an int64 field.
	FieldInteger
	// FieldUInteger is a uint64 field.
	FieldUInteger
	// FieldString is a string field.
	FieldString
	// FieldBoolean is a boolean field.
	FieldBoolean
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldFloat:
		return "Float"
	case FieldInteger:
		return "Integer"
	case FieldUInteger:
		return "UInteger"
	case FieldString:
		return "String"
	case FieldBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Kind distinguishes tags, fields and the timestamp column.
type Kind uint8

const (
	KindTag Kind = iota
	KindField
	KindTimestamp
)

// ColumnType is the semantic type of a column.
//
// Field carries the value type and is only meaningful when Kind is KindField.
// ColumnType is comparable, two columns have the same type iff their
// ColumnType values are equal.
type ColumnType struct {
	Kind  Kind
	Field FieldType
}

var (
	// Tag is a dictionary-coded string column.
	Tag = ColumnType{Kind: KindTag}
	// Timestamp is the mandatory, non-null time column (nanoseconds).
	Timestamp = ColumnType{Kind: KindTimestamp}
)

// Field returns the ColumnType of a field column holding values of type t.
func Field(t FieldType) ColumnType {
	return ColumnType{Kind: KindField, Field: t}
}

// IsTag reports whether t is the tag type.
func (t ColumnType) IsTag() bool { return t.Kind == KindTag }

// IsField reports whether t is a field type.
func (t ColumnType) IsField() bool { return t.Kind == KindField }

// IsTimestamp reports whether t is the timestamp type.
func (t ColumnType) IsTimestamp() bool { return t.Kind == KindTimestamp }

// String returns the string representation of the ColumnType.
func (t ColumnType) String() string {
	switch t.Kind {
	case KindTag:
		return "Tag"
	case KindTimestamp:
		return "Timestamp"
	case KindField:
		return fmt.Sprintf("Field(%s)", t.Field)
	default:
		return "Unknown"
	}
}

// Parse is the inverse of ColumnType.String.
func Parse(s string) (ColumnType, error) {
	switch s {
	case "Tag":
		return Tag, nil
	case "Timestamp":
		return Timestamp, nil
	}
	for _, ft := range []FieldType{FieldFloat, FieldInteger, FieldUInteger, FieldString, FieldBoolean} {
		if s == Field(ft).String() {
			return Field(ft), nil
		}
	}
	return ColumnType{}, fmt.Errorf("unknown column type %q", s)
}
