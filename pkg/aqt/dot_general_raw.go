package aqt

import "github.com/pkg/errors"

// LocalAqt splits the contraction axis into shards that are quantized
// independently.
type LocalAqt struct {
	ContractionAxisShardCount int
}

// DotGeneralRaw configures one dot_general without its gradients.
type DotGeneralRaw struct {
	LHS *Tensor
	RHS *Tensor
	// InDType and AccumulatorDType are set together when both operands use
	// native int8 storage. Nil means the executor resolves them per operand.
	InDType          *DType
	AccumulatorDType *DType
	LocalAqt         *LocalAqt
	ScopeName        string
}

// RawOption adjusts a DotGeneralRaw before it is validated.
type RawOption func(*DotGeneralRaw) error

// WithLHS applies fn to the left operand configuration.
func WithLHS(fn func(*Tensor)) RawOption {
	return func(r *DotGeneralRaw) error {
		fn(r.LHS)
		return nil
	}
}

// WithRHS applies fn to the right operand configuration.
func WithRHS(fn func(*Tensor)) RawOption {
	return func(r *DotGeneralRaw) error {
		fn(r.RHS)
		return nil
	}
}

// WithLocalAqt shards the contraction axis into n independently quantized parts.
func WithLocalAqt(n int) RawOption {
	return func(r *DotGeneralRaw) error {
		if n <= 0 {
			return errors.Wrapf(ErrInvalidShardCount, "got %d", n)
		}
		r.LocalAqt = &LocalAqt{ContractionAxisShardCount: n}
		return nil
	}
}

// WithScopeName names the contraction for the executor's tracing scopes.
func WithScopeName(name string) RawOption {
	return func(r *DotGeneralRaw) error {
		r.ScopeName = name
		return nil
	}
}

// WithAccumulatorDType overrides the accumulator dtype of a contraction whose
// inputs are native int8.
func WithAccumulatorDType(d DType) RawOption {
	return func(r *DotGeneralRaw) error {
		if d == DTypeUnknown {
			return errors.Wrap(ErrUnknownDType, "accumulator")
		}
		if r.InDType == nil {
			return errors.Wrap(ErrInconsistentDTypes, "accumulator override needs native int8 inputs")
		}
		r.AccumulatorDType = dtypePtr(d)
		return nil
	}
}

// NewDotGeneralRaw builds the configuration of one contraction whose operands
// are quantized to lhsBits and rhsBits (nil means unquantized). Options run
// before validation, so they can produce invalid combinations which are then
// reported as errors.
func NewDotGeneralRaw(lhsBits, rhsBits *int, opts ...RawOption) (*DotGeneralRaw, error) {
	r := &DotGeneralRaw{
		LHS: NewTensor(lhsBits),
		RHS: NewTensor(rhsBits),
	}
	if r.LHS.IsNative() && r.RHS.IsNative() {
		r.InDType = dtypePtr(NarrowDType)
		r.AccumulatorDType = dtypePtr(NarrowAccumulatorDType)
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MaxSpatialDims bounds the spatial rank accepted by NewConvGeneralDilated.
const MaxSpatialDims = 64

// NewConvGeneralDilated builds a DotGeneralRaw for a convolution with
// spatialDims spatial dimensions. The calibration axes assume an NHWC-style
// input (batch first) and an HWIO-style kernel (output features last).
func NewConvGeneralDilated(spatialDims int, lhsBits, rhsBits *int, opts ...RawOption) (*DotGeneralRaw, error) {
	if spatialDims < 0 || spatialDims > MaxSpatialDims {
		return nil, errors.Wrapf(ErrInvalidSpatialDims, "got %d, want 0..%d", spatialDims, MaxSpatialDims)
	}
	r, err := NewDotGeneralRaw(lhsBits, rhsBits, opts...)
	if err != nil {
		return nil, err
	}
	r.LHS.CalibSharedAxes = axisRange(1, spatialDims+2)
	r.RHS.CalibSharedAxes = axisRange(0, spatialDims+1)
	return r, nil
}

func axisRange(start, end int) []int {
	axes := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		axes = append(axes, i)
	}
	return axes
}

// Validate checks the native int8 constraints and dtype pairing.
func (r *DotGeneralRaw) Validate() error {
	if (r.InDType == nil) != (r.AccumulatorDType == nil) {
		return ErrInconsistentDTypes
	}
	if r.LocalAqt != nil && r.LocalAqt.ContractionAxisShardCount <= 0 {
		return errors.Wrapf(ErrInvalidShardCount, "got %d", r.LocalAqt.ContractionAxisShardCount)
	}
	if !r.LHS.IsNative() || !r.RHS.IsNative() {
		return nil
	}
	if r.LHS.ClipAndRound != nil || r.RHS.ClipAndRound != nil {
		return ErrUnsupportedOverrideWithNativePrecision
	}
	if !r.LHS.Clip || !r.LHS.Round {
		return errors.Wrapf(ErrIncompatibleNativePrecision, "lhs: clip=%t round=%t", r.LHS.Clip, r.LHS.Round)
	}
	if !r.RHS.Clip || !r.RHS.Round {
		return errors.Wrapf(ErrIncompatibleNativePrecision, "rhs: clip=%t round=%t", r.RHS.Clip, r.RHS.Round)
	}
	return nil
}

// Clone returns a deep copy of r.
func (r *DotGeneralRaw) Clone() *DotGeneralRaw {
	if r == nil {
		return nil
	}
	out := *r
	out.LHS = r.LHS.Clone()
	out.RHS = r.RHS.Clone()
	if r.InDType != nil {
		out.InDType = dtypePtr(*r.InDType)
	}
	if r.AccumulatorDType != nil {
		out.AccumulatorDType = dtypePtr(*r.AccumulatorDType)
	}
	if r.LocalAqt != nil {
		l := *r.LocalAqt
		out.LocalAqt = &l
	}
	return &out
}
