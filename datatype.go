package idlparser

import (
	"fmt"
)

// DataTypeCategory is an enumeration which represents the possible kinds
// of field datatypes.
type DataTypeCategory int

const (
	// ScalarDataTypeCategory indicates a scalar-builtin datatype
	ScalarDataTypeCategory DataTypeCategory = iota
	// EnumDataTypeCategory indicates a reference to an enum
	EnumDataTypeCategory
	// MessageDataTypeCategory indicates a reference to a message
	MessageDataTypeCategory
	// MapDataTypeCategory indicates a map datatype
	MapDataTypeCategory
)

var dataTypeCategoryNames = [...]string{
	ScalarDataTypeCategory:  "scalar",
	EnumDataTypeCategory:    "enum",
	MessageDataTypeCategory: "message",
	MapDataTypeCategory:     "map",
}

func (c DataTypeCategory) String() string {
	if c < 0 || int(c) >= len(dataTypeCategoryNames) {
		return fmt.Sprintf("DataTypeCategory(%d)", int(c))
	}
	return dataTypeCategoryNames[c]
}

// DataType is the resolved type of a message field. It is implemented only
// by ScalarDataType, EnumDataType, MessageDataType and MapDataType, so a
// type switch over those four is exhaustive.
type DataType interface {
	Name() string
	Category() DataTypeCategory
	isDataType()
}

// ScalarType is an enumeration which represents all known supported scalar
// field datatypes.
type ScalarType int

const (
	// DoubleScalar represents the double type
	DoubleScalar ScalarType = iota + 1
	// FloatScalar represents the float type
	FloatScalar
	// Int32Scalar represents the int32 type
	Int32Scalar
	// Int64Scalar represents the int64 type
	Int64Scalar
	// Uint32Scalar represents the uint32 type
	Uint32Scalar
	// Uint64Scalar represents the uint64 type
	Uint64Scalar
	// Sint32Scalar represents the sint32 type
	Sint32Scalar
	// Sint64Scalar represents the sint64 type
	Sint64Scalar
	// Fixed32Scalar represents the fixed32 type
	Fixed32Scalar
	// Fixed64Scalar represents the fixed64 type
	Fixed64Scalar
	// Sfixed32Scalar represents the sfixed32 type
	Sfixed32Scalar
	// Sfixed64Scalar represents the sfixed64 type
	Sfixed64Scalar
	// BoolScalar represents the bool type
	BoolScalar
	// StringScalar represents the string type
	StringScalar
	// BytesScalar represents the bytes type
	BytesScalar
)

var scalarLookupMap = map[string]ScalarType{
	"double":   DoubleScalar,
	"float":    FloatScalar,
	"int32":    Int32Scalar,
	"int64":    Int64Scalar,
	"uint32":   Uint32Scalar,
	"uint64":   Uint64Scalar,
	"sint32":   Sint32Scalar,
	"sint64":   Sint64Scalar,
	"fixed32":  Fixed32Scalar,
	"fixed64":  Fixed64Scalar,
	"sfixed32": Sfixed32Scalar,
	"sfixed64": Sfixed64Scalar,
	"bool":     BoolScalar,
	"string":   StringScalar,
	"bytes":    BytesScalar,
}

var scalarNames = func() map[ScalarType]string {
	m := make(map[ScalarType]string, len(scalarLookupMap))
	for k, v := range scalarLookupMap {
		m[v] = k
	}
	return m
}()

func (st ScalarType) String() string {
	if name, ok := scalarNames[st]; ok {
		return name
	}
	return fmt.Sprintf("ScalarType(%d)", int(st))
}

// IsValidMapKey reports whether the scalar may key a map. Floating point
// and bytes keys are not allowed.
func (st ScalarType) IsValidMapKey() bool {
	switch st {
	case DoubleScalar, FloatScalar, BytesScalar:
		return false
	}
	_, ok := scalarNames[st]
	return ok
}

// ScalarDataType is a construct which represents
// all supported scalar datatypes.
type ScalarDataType struct {
	Scalar ScalarType
}

// Name function implementation of interface DataType for ScalarDataType
func (sdt ScalarDataType) Name() string {
	return sdt.Scalar.String()
}

// Category function implementation of interface DataType for ScalarDataType
func (sdt ScalarDataType) Category() DataTypeCategory {
	return ScalarDataTypeCategory
}

func (ScalarDataType) isDataType() {}

// LookupScalar returns the scalar for an exact (case sensitive) keyword.
func LookupScalar(s string) (ScalarType, bool) {
	st, ok := scalarLookupMap[s]
	return st, ok
}

// EnumDataType references an enum declared in this or an imported file.
type EnumDataType struct {
	Enum *Enumeration
}

// Name returns the qualified name of the referenced enum.
func (edt EnumDataType) Name() string {
	return edt.Enum.QualifiedName
}

// Category function implementation of interface DataType for EnumDataType
func (edt EnumDataType) Category() DataTypeCategory {
	return EnumDataTypeCategory
}

func (EnumDataType) isDataType() {}

// MessageDataType references a message declared in this or an imported file.
type MessageDataType struct {
	Message *Message
}

// Name returns the qualified name of the referenced message.
func (mdt MessageDataType) Name() string {
	return mdt.Message.QualifiedName
}

// Category function implementation of interface DataType for MessageDataType
func (mdt MessageDataType) Category() DataTypeCategory {
	return MessageDataTypeCategory
}

func (MessageDataType) isDataType() {}

// MapDataType is a construct which represents a map datatype.
type MapDataType struct {
	Key   ScalarType
	Value DataType
}

// Name function implementation of interface DataType for MapDataType
func (mdt MapDataType) Name() string {
	return "map<" + mdt.Key.String() + ", " + mdt.Value.Name() + ">"
}

// Category function implementation of interface DataType for MapDataType
func (mdt MapDataType) Category() DataTypeCategory {
	return MapDataTypeCategory
}

func (MapDataType) isDataType() {}
