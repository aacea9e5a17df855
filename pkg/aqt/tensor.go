package aqt

import (
	"slices"

	"gorgonia.org/tensor"
)

// Key is an explicit randomness token. Noise sources derive all of their
// randomness from it and never keep state between calls.
type Key [2]uint64

// Context is handed to a ClipAndRoundFn by the executor.
type Context struct {
	Key       *Key
	TrainStep *int
}

// NoiseFn produces noise of the given shape. It is added before clip and round.
type NoiseFn func(shape tensor.Shape, key Key) (tensor.Tensor, error)

// ClipAndRoundFn replaces the built-in noise, clip and round steps.
// Its gradient is applied in the backward pass.
type ClipAndRoundFn func(x tensor.Tensor, ctx Context) (tensor.Tensor, error)

// FreshScaleFn replaces the scale computed by calibration.
type FreshScaleFn func(x tensor.Tensor) (tensor.Tensor, error)

// Tensor configures the quantization of one operand of one contraction.
type Tensor struct {
	Numerics Numerics
	// CalibSharedAxes lists the axes sharing one scale. Nil means the axes
	// are inferred at calibration time.
	CalibSharedAxes []int
	Bound           *float64
	BoundStopGrad   bool
	// false maps the max value on the end of the last bucket,
	// true on its middle.
	PreserveMaxVal bool
	Clip           bool
	Round          bool
	ClipAndRound   ClipAndRoundFn
	FreshScale     FreshScaleFn
	NoiseFn        NoiseFn
	// Po2Scale rounds the calibrated scale up to a power of two.
	Po2Scale     bool
	UseFakeQuant bool
	DType        DType
	// UseFwdQuant selects the forward-quantized value inside a gradient
	// contraction. Setting it without quantizing the forward operand is a
	// precondition failure, see DotGeneral.Validate.
	UseFwdQuant *bool
}

// NewTensor returns the default configuration for an operand quantized to
// bits (nil means unquantized). Callers are expected to pass bits >= 1; a
// non-positive width is kept in Numerics but stored on the wide type.
func NewTensor(bits *int) *Tensor {
	return &Tensor{
		Numerics:      NewNumerics(bits),
		BoundStopGrad: true,
		Clip:          true,
		Round:         true,
		DType:         storageDType(bits),
	}
}

// storageDType picks int8 storage for 2..8 bits. The 1-bit grid uses a
// different bucketing and stays on the wide type, as does anything wider.
// Non-positive widths are not valid grids and never get native storage.
func storageDType(bits *int) DType {
	if bits != nil && *bits >= 2 && *bits <= 8 {
		return NarrowDType
	}
	return WideDType
}

// IsNative reports whether t is stored in the native low-precision type.
func (t *Tensor) IsNative() bool {
	return t != nil && t.DType == NarrowDType
}

// Clone returns a deep copy of t. Function fields are shared.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	out := *t
	out.CalibSharedAxes = slices.Clone(t.CalibSharedAxes)
	if t.Bound != nil {
		b := *t.Bound
		out.Bound = &b
	}
	if t.UseFwdQuant != nil {
		u := *t.UseFwdQuant
		out.UseFwdQuant = &u
	}
	return &out
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
