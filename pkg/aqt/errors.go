package aqt

import "github.com/pkg/errors"

var (
	// ErrIncompatibleNativePrecision is returned when both operands resolve to
	// native int8 storage but clip or round is disabled on either of them.
	ErrIncompatibleNativePrecision = errors.New("aqt: native int8 requires clip and round on both operands")

	// ErrUnsupportedOverrideWithNativePrecision is returned when both operands
	// resolve to native int8 storage and either carries a custom clip-and-round.
	ErrUnsupportedOverrideWithNativePrecision = errors.New("aqt: native int8 cannot be combined with a custom clip_and_round")

	// ErrForwardNotQuantized is returned when a gradient operand asks to reuse
	// a forward-quantized value that the forward pass never quantized.
	ErrForwardNotQuantized = errors.New("aqt: use_fwd_quant set but forward operand is not quantized")

	// ErrInconsistentDTypes is returned when only one of the input and
	// accumulator dtypes of a DotGeneralRaw is set.
	ErrInconsistentDTypes = errors.New("aqt: dg_in_dtype and dg_accumulator_dtype must be set together")

	ErrInvalidShardCount  = errors.New("aqt: contraction axis shard count must be positive")
	ErrInvalidSpatialDims = errors.New("aqt: spatial dimensions out of range")
	ErrUnknownDType       = errors.New("aqt: unknown dtype")
	ErrUnknownRNG         = errors.New("aqt: unknown rng type")
)
