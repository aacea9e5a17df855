package aqt

import "github.com/pkg/errors"

// DType names a storage or accumulation type. The executor owns the actual
// element encodings; this package only refers to them.
type DType uint32

const (
	DTypeUnknown DType = iota
	DTypeBF16
	DTypeF32
	DTypeI4
	DTypeI8
	DTypeI16
	DTypeI32
)

const (
	// WideDType is the native wide type used when a tensor has no native
	// low-precision storage.
	WideDType = DTypeBF16
	// NarrowDType is the hardware native low-precision integer type.
	NarrowDType = DTypeI8
	// NarrowAccumulatorDType accumulates products of two NarrowDType inputs.
	NarrowAccumulatorDType = DTypeI32
)

func (d DType) String() string {
	switch d {
	case DTypeBF16:
		return "bfloat16"
	case DTypeF32:
		return "float32"
	case DTypeI4:
		return "int4"
	case DTypeI8:
		return "int8"
	case DTypeI16:
		return "int16"
	case DTypeI32:
		return "int32"
	default:
		return "unknown"
	}
}

// ParseDType accepts the names produced by String plus a few common aliases.
func ParseDType(s string) (DType, error) {
	switch s {
	case "bfloat16", "bf16":
		return DTypeBF16, nil
	case "float32", "f32":
		return DTypeF32, nil
	case "int4", "i4":
		return DTypeI4, nil
	case "int8", "i8":
		return DTypeI8, nil
	case "int16", "i16":
		return DTypeI16, nil
	case "int32", "i32":
		return DTypeI32, nil
	default:
		return DTypeUnknown, errors.Wrapf(ErrUnknownDType, "%q", s)
	}
}

// IsInteger reports whether d is one of the integer types.
func (d DType) IsInteger() bool {
	switch d {
	case DTypeI4, DTypeI8, DTypeI16, DTypeI32:
		return true
	default:
		return false
	}
}

// dtypePtr returns a pointer to a copy of d.
func dtypePtr(d DType) *DType {
	return &d
}
