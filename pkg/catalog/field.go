package catalog

import (
	"fmt"
	"strconv"
	"time"
)

// FieldValue is a typed tag field value. Exactly one variant is meaningful,
// selected by Type.
type FieldValue struct {
	Type      FieldType
	Double    float64
	String    string
	Bool      bool
	Timestamp time.Time
	Enum      string // enum display name
}

// DoubleValue returns a DOUBLE field value.
func DoubleValue(v float64) FieldValue {
	return FieldValue{Type: FieldTypeDouble, Double: v}
}

// StringValue returns a STRING field value.
func StringValue(v string) FieldValue {
	return FieldValue{Type: FieldTypeString, String: v}
}

// BoolValue returns a BOOL field value.
func BoolValue(v bool) FieldValue {
	return FieldValue{Type: FieldTypeBool, Bool: v}
}

// TimestampValue returns a TIMESTAMP field value.
func TimestampValue(v time.Time) FieldValue {
	return FieldValue{Type: FieldTypeTimestamp, Timestamp: v}
}

// EnumValue returns an ENUM field value identified by display name.
func EnumValue(displayName string) FieldValue {
	return FieldValue{Type: FieldTypeEnum, Enum: displayName}
}

// Equal compares two values of the same variant. Values of different
// variants are never equal. Timestamps compare at whole-second precision,
// which is the precision the catalog round-trips reliably.
func (v FieldValue) Equal(o FieldValue) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case FieldTypeDouble:
		return v.Double == o.Double
	case FieldTypeString:
		return v.String == o.String
	case FieldTypeBool:
		return v.Bool == o.Bool
	case FieldTypeTimestamp:
		return v.Timestamp.Unix() == o.Timestamp.Unix()
	case FieldTypeEnum:
		return v.Enum == o.Enum
	default:
		return true
	}
}

// Format renders the value for logs and reports.
func (v FieldValue) Format() string {
	switch v.Type {
	case FieldTypeDouble:
		return strconv.FormatFloat(v.Double, 'f', -1, 64)
	case FieldTypeString:
		return v.String
	case FieldTypeBool:
		return strconv.FormatBool(v.Bool)
	case FieldTypeTimestamp:
		return v.Timestamp.UTC().Format(time.RFC3339)
	case FieldTypeEnum:
		return v.Enum
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}
