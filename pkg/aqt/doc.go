// Package aqt derives quantization configurations for dot_general style
// contractions used in training.
//
// A DotGeneral holds one DotGeneralRaw for the forward pass and one for each
// gradient pass (with respect to the left and right operands). Every
// DotGeneralRaw holds a Tensor configuration per operand. The builders in
// this package turn a handful of knobs (bit widths, forward value reuse,
// stochastic rounding) into a complete, validated tree:
//
//	cfg, err := aqt.FullyQuantized(aqt.FullyQuantizedOptions{
//	    FwdBits:               aqt.Bits(8),
//	    BwdBits:               aqt.Bits(8),
//	    UseFwdQuant:           true,
//	    UseStochasticRounding: true,
//	})
//
// The package never touches tensor values. Function-valued fields (noise,
// clip-and-round, fresh scale) are stored for the executor to call later.
package aqt
