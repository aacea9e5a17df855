package aqt

import "github.com/pkg/errors"

// FullyQuantizedOptions are the knobs of FullyQuantized.
type FullyQuantizedOptions struct {
	FwdBits               *int
	BwdBits               *int
	UseFwdQuant           bool
	UseStochasticRounding bool
	// UseDummyStaticBound pins bound to 1.0 on fwd.lhs, fwd.rhs, dlhs.lhs
	// and drhs.lhs. It only exists for benchmarking a fixed calibration cost.
	// The gradient rhs operands keep a nil bound: with forward reuse they
	// take the forward-quantized value and a bound there would never apply.
	UseDummyStaticBound bool
}

// DefaultFullyQuantizedOptions quantizes everything to 8 bits with forward
// value reuse and stochastic rounding in the backward pass.
func DefaultFullyQuantizedOptions() FullyQuantizedOptions {
	return FullyQuantizedOptions{
		FwdBits:               Bits(8),
		BwdBits:               Bits(8),
		UseFwdQuant:           true,
		UseStochasticRounding: true,
	}
}

// FullyQuantized builds a DotGeneral for fully quantized training.
func FullyQuantized(o FullyQuantizedOptions) (*DotGeneral, error) {
	cfg, err := NewDotGeneral(o.FwdBits, o.FwdBits, o.BwdBits, o.UseFwdQuant)
	if err != nil {
		return nil, err
	}

	if o.UseStochasticRounding {
		noise := RNGCustom1.NoiseFn()
		cfg.DLHS.LHS.NoiseFn = noise
		cfg.DLHS.RHS.NoiseFn = noise
		cfg.DRHS.LHS.NoiseFn = noise
		cfg.DRHS.RHS.NoiseFn = noise
	}

	// The gradient rhs operands are left alone: they are the ones served by
	// forward value reuse.
	if o.UseDummyStaticBound {
		cfg.Fwd.LHS.Bound = floatPtr(1.0)
		cfg.Fwd.RHS.Bound = floatPtr(1.0)
		cfg.DLHS.LHS.Bound = floatPtr(1.0)
		cfg.DRHS.LHS.Bound = floatPtr(1.0)
	}
	return cfg, nil
}

// PerPassOptions configure each of the three contractions separately.
type PerPassOptions struct {
	FwdBits  *int
	DLHSBits *int
	DRHSBits *int
	// RNG installs a noise source on the lhs of both gradient contractions.
	RNG          RNGType
	DLHSLocalAqt *LocalAqt
	DRHSLocalAqt *LocalAqt
	// Accumulator overrides. DTypeUnknown keeps the derived accumulator.
	FwdAccumulatorDType  DType
	DLHSAccumulatorDType DType
	DRHSAccumulatorDType DType
	UseFwdQuant          bool
}

// PerPass builds a DotGeneral with distinct bit widths per contraction.
func PerPass(o PerPassOptions) (*DotGeneral, error) {
	if _, err := ParseRNGType(string(o.RNG)); err != nil {
		return nil, err
	}
	fwd, err := NewDotGeneralRaw(o.FwdBits, o.FwdBits, passOptions(ScopeFwd, nil, o.FwdAccumulatorDType)...)
	if err != nil {
		return nil, errors.Wrap(err, "fwd")
	}
	dlhs, err := NewDotGeneralRaw(o.DLHSBits, o.DLHSBits, passOptions(ScopeDLHS, o.DLHSLocalAqt, o.DLHSAccumulatorDType)...)
	if err != nil {
		return nil, errors.Wrap(err, "dlhs")
	}
	drhs, err := NewDotGeneralRaw(o.DRHSBits, o.DRHSBits, passOptions(ScopeDRHS, o.DRHSLocalAqt, o.DRHSAccumulatorDType)...)
	if err != nil {
		return nil, errors.Wrap(err, "drhs")
	}
	cfg := linkPasses(fwd, dlhs, drhs, o.FwdBits != nil, o.FwdBits != nil, o.UseFwdQuant)

	if noise := o.RNG.NoiseFn(); noise != nil {
		cfg.DLHS.LHS.NoiseFn = noise
		cfg.DRHS.LHS.NoiseFn = noise
	}
	return cfg, nil
}

func passOptions(scope string, local *LocalAqt, acc DType) []RawOption {
	opts := []RawOption{WithScopeName(scope)}
	if local != nil {
		opts = append(opts, WithLocalAqt(local.ContractionAxisShardCount))
	}
	if acc != DTypeUnknown {
		opts = append(opts, WithAccumulatorDType(acc))
	}
	return opts
}
