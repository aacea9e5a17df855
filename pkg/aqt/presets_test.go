package aqt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullyQuantizedDefaults(t *testing.T) {
	cfg, err := FullyQuantized(DefaultFullyQuantizedOptions())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	for path, op := range cfg.Operands() {
		assert.Equal(t, IntNumerics{Bits: 8, PreserveZero: true}, op.Numerics, path)
		assert.Equal(t, DTypeI8, op.DType, path)
		assert.Nil(t, op.Bound, path)
	}
	assert.True(t, *cfg.DLHS.RHS.UseFwdQuant)
	assert.True(t, *cfg.DRHS.RHS.UseFwdQuant)
}

func TestFullyQuantizedStochasticRounding(t *testing.T) {
	o := DefaultFullyQuantizedOptions()
	cfg, err := FullyQuantized(o)
	require.NoError(t, err)

	withNoise := map[string]bool{"dlhs.lhs": true, "dlhs.rhs": true, "drhs.lhs": true, "drhs.rhs": true}
	for path, op := range cfg.Operands() {
		if withNoise[path] {
			assert.NotNil(t, op.NoiseFn, path)
		} else {
			assert.Nil(t, op.NoiseFn, path)
		}
	}

	o.UseStochasticRounding = false
	cfg, err = FullyQuantized(o)
	require.NoError(t, err)
	for path, op := range cfg.Operands() {
		assert.Nil(t, op.NoiseFn, path)
	}
}

func TestFullyQuantizedDummyStaticBound(t *testing.T) {
	o := DefaultFullyQuantizedOptions()
	o.UseDummyStaticBound = true
	cfg, err := FullyQuantized(o)
	require.NoError(t, err)

	bounded := map[string]bool{"fwd.lhs": true, "fwd.rhs": true, "dlhs.lhs": true, "drhs.lhs": true}
	for path, op := range cfg.Operands() {
		if bounded[path] {
			require.NotNil(t, op.Bound, path)
			assert.Equal(t, 1.0, *op.Bound, path)
		} else {
			assert.Nil(t, op.Bound, path)
		}
	}
	assert.NotSame(t, cfg.Fwd.LHS.Bound, cfg.Fwd.RHS.Bound)
}

func TestFullyQuantizedCustomBits(t *testing.T) {
	cfg, err := FullyQuantized(FullyQuantizedOptions{
		FwdBits:     Bits(4),
		BwdBits:     nil,
		UseFwdQuant: false,
	})
	require.NoError(t, err)
	assert.Equal(t, IntNumerics{Bits: 4, PreserveZero: true}, cfg.Fwd.LHS.Numerics)
	assert.Equal(t, NoNumerics{}, cfg.DLHS.LHS.Numerics)
	assert.Equal(t, DTypeBF16, cfg.DRHS.RHS.DType)
	assert.False(t, *cfg.DRHS.RHS.UseFwdQuant)
	assert.False(t, *cfg.DLHS.RHS.UseFwdQuant)
}

func TestFullyQuantizedIdempotent(t *testing.T) {
	o := DefaultFullyQuantizedOptions()
	o.UseDummyStaticBound = true
	a, err := FullyQuantized(o)
	require.NoError(t, err)
	b, err := FullyQuantized(o)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.Describe(), b.Describe())
}

func TestPerPass(t *testing.T) {
	cfg, err := PerPass(PerPassOptions{
		FwdBits:              Bits(8),
		DLHSBits:             Bits(7),
		DRHSBits:             Bits(6),
		RNG:                  RNGCustom1,
		DLHSLocalAqt:         &LocalAqt{ContractionAxisShardCount: 2},
		DRHSLocalAqt:         &LocalAqt{ContractionAxisShardCount: 3},
		FwdAccumulatorDType:  DTypeI16,
		DLHSAccumulatorDType: DTypeI8,
		DRHSAccumulatorDType: DTypeI4,
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, IntNumerics{Bits: 8, PreserveZero: true}, cfg.Fwd.RHS.Numerics)
	assert.Equal(t, IntNumerics{Bits: 7, PreserveZero: true}, cfg.DLHS.RHS.Numerics)
	assert.Equal(t, IntNumerics{Bits: 6, PreserveZero: true}, cfg.DRHS.LHS.Numerics)

	assert.Equal(t, DTypeI16, *cfg.Fwd.AccumulatorDType)
	assert.Equal(t, DTypeI8, *cfg.DLHS.AccumulatorDType)
	assert.Equal(t, DTypeI4, *cfg.DRHS.AccumulatorDType)

	assert.Nil(t, cfg.Fwd.LocalAqt)
	assert.Equal(t, 2, cfg.DLHS.LocalAqt.ContractionAxisShardCount)
	assert.Equal(t, 3, cfg.DRHS.LocalAqt.ContractionAxisShardCount)

	assert.NotNil(t, cfg.DLHS.LHS.NoiseFn)
	assert.NotNil(t, cfg.DRHS.LHS.NoiseFn)
	assert.Nil(t, cfg.DLHS.RHS.NoiseFn)
	assert.Nil(t, cfg.DRHS.RHS.NoiseFn)
	assert.Nil(t, cfg.Fwd.LHS.NoiseFn)

	assert.False(t, *cfg.DLHS.RHS.UseFwdQuant)
	assert.False(t, *cfg.DRHS.RHS.UseFwdQuant)
	assert.Nil(t, cfg.DLHS.LHS.UseFwdQuant)
}

func TestPerPassErrors(t *testing.T) {
	_, err := PerPass(PerPassOptions{RNG: "custom-2"})
	assert.ErrorIs(t, err, ErrUnknownRNG)

	_, err = PerPass(PerPassOptions{
		FwdBits:      Bits(8),
		DLHSBits:     Bits(8),
		DLHSLocalAqt: &LocalAqt{ContractionAxisShardCount: -1},
	})
	assert.ErrorIs(t, err, ErrInvalidShardCount)
	assert.Contains(t, err.Error(), "dlhs")

	_, err = PerPass(PerPassOptions{DRHSBits: Bits(16), DRHSAccumulatorDType: DTypeI32})
	assert.ErrorIs(t, err, ErrInconsistentDTypes)
}
