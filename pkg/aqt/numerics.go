package aqt

// Numerics describes how a tensor's values are represented. It is a closed
// set: NoNumerics or IntNumerics.
type Numerics interface {
	isNumerics()
}

// NoNumerics keeps values in their native wide type.
type NoNumerics struct{}

// IntNumerics maps values onto a signed integer grid of Bits bits.
// PreserveZero means the grid is symmetric and contains an exact zero.
// A 1-bit grid never preserves zero; it rounds to -0.5 and 0.5.
type IntNumerics struct {
	Bits         int
	PreserveZero bool
}

func (NoNumerics) isNumerics()  {}
func (IntNumerics) isNumerics() {}

// NewNumerics returns NoNumerics when bits is nil and IntNumerics otherwise.
// bits must be at least 1; it is not checked here.
func NewNumerics(bits *int) Numerics {
	if bits == nil {
		return NoNumerics{}
	}
	return IntNumerics{
		Bits:         *bits,
		PreserveZero: *bits != 1,
	}
}

// Bits returns a pointer to n, for use as an optional bit width.
func Bits(n int) *int {
	return &n
}

// IsQuantized reports whether n maps values onto an integer grid.
func IsQuantized(n Numerics) bool {
	switch n.(type) {
	case IntNumerics, *IntNumerics:
		return true
	default:
		return false
	}
}
