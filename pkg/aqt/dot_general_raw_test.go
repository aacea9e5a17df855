package aqt

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func identityClipAndRound(x tensor.Tensor, _ Context) (tensor.Tensor, error) {
	return x, nil
}

func TestNewDotGeneralRawNativeDTypes(t *testing.T) {
	r, err := NewDotGeneralRaw(Bits(8), Bits(8))
	require.NoError(t, err)
	require.NotNil(t, r.InDType)
	require.NotNil(t, r.AccumulatorDType)
	assert.Equal(t, DTypeI8, *r.InDType)
	assert.Equal(t, DTypeI32, *r.AccumulatorDType)
}

func TestNewDotGeneralRawDynamicDTypes(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs *int
	}{
		{"8 and 9", Bits(8), Bits(9)},
		{"9 and 8", Bits(9), Bits(8)},
		{"8 and none", Bits(8), nil},
		{"none and none", nil, nil},
		{"1 and 8", Bits(1), Bits(8)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewDotGeneralRaw(tc.lhs, tc.rhs)
			require.NoError(t, err)
			assert.Nil(t, r.InDType)
			assert.Nil(t, r.AccumulatorDType)
		})
	}
}

func TestNewDotGeneralRawRejectsClipAndRoundOverride(t *testing.T) {
	setOverride := func(tn *Tensor) { tn.ClipAndRound = identityClipAndRound }

	_, err := NewDotGeneralRaw(Bits(8), Bits(8), WithLHS(setOverride))
	assert.ErrorIs(t, err, ErrUnsupportedOverrideWithNativePrecision)

	_, err = NewDotGeneralRaw(Bits(8), Bits(8), WithRHS(setOverride))
	assert.ErrorIs(t, err, ErrUnsupportedOverrideWithNativePrecision)

	// Without native int8 the override is fine.
	r, err := NewDotGeneralRaw(Bits(8), Bits(16), WithLHS(setOverride))
	require.NoError(t, err)
	assert.NotNil(t, r.LHS.ClipAndRound)
}

func TestNewDotGeneralRawRequiresClipAndRound(t *testing.T) {
	tests := []struct {
		name string
		opt  RawOption
	}{
		{"lhs clip", WithLHS(func(tn *Tensor) { tn.Clip = false })},
		{"lhs round", WithLHS(func(tn *Tensor) { tn.Round = false })},
		{"rhs clip", WithRHS(func(tn *Tensor) { tn.Clip = false })},
		{"rhs round", WithRHS(func(tn *Tensor) { tn.Round = false })},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDotGeneralRaw(Bits(4), Bits(8), tc.opt)
			assert.ErrorIs(t, err, ErrIncompatibleNativePrecision)
		})
	}
}

func TestOverrideCheckedBeforeClipAndRound(t *testing.T) {
	_, err := NewDotGeneralRaw(Bits(8), Bits(8), WithLHS(func(tn *Tensor) {
		tn.ClipAndRound = identityClipAndRound
		tn.Clip = false
	}))
	assert.ErrorIs(t, err, ErrUnsupportedOverrideWithNativePrecision)
}

func TestValidateAfterMutation(t *testing.T) {
	r, err := NewDotGeneralRaw(Bits(8), Bits(8))
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	r.RHS.ClipAndRound = identityClipAndRound
	assert.ErrorIs(t, r.Validate(), ErrUnsupportedOverrideWithNativePrecision)

	r.RHS.ClipAndRound = nil
	r.AccumulatorDType = nil
	assert.ErrorIs(t, r.Validate(), ErrInconsistentDTypes)
}

func TestWithLocalAqt(t *testing.T) {
	r, err := NewDotGeneralRaw(Bits(8), Bits(8), WithLocalAqt(3))
	require.NoError(t, err)
	require.NotNil(t, r.LocalAqt)
	assert.Equal(t, 3, r.LocalAqt.ContractionAxisShardCount)

	_, err = NewDotGeneralRaw(Bits(8), Bits(8), WithLocalAqt(0))
	assert.ErrorIs(t, err, ErrInvalidShardCount)
}

func TestWithAccumulatorDType(t *testing.T) {
	r, err := NewDotGeneralRaw(Bits(8), Bits(8), WithAccumulatorDType(DTypeI16))
	require.NoError(t, err)
	assert.Equal(t, DTypeI8, *r.InDType)
	assert.Equal(t, DTypeI16, *r.AccumulatorDType)

	_, err = NewDotGeneralRaw(Bits(8), nil, WithAccumulatorDType(DTypeI16))
	assert.ErrorIs(t, err, ErrInconsistentDTypes)

	_, err = NewDotGeneralRaw(Bits(8), Bits(8), WithAccumulatorDType(DTypeUnknown))
	assert.ErrorIs(t, err, ErrUnknownDType)
}

func TestNewConvGeneralDilated(t *testing.T) {
	r, err := NewConvGeneralDilated(2, Bits(8), Bits(8))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, r.LHS.CalibSharedAxes)
	assert.Equal(t, []int{0, 1, 2}, r.RHS.CalibSharedAxes)
	assert.NotNil(t, r.InDType)

	r, err = NewConvGeneralDilated(1, nil, Bits(4))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, r.LHS.CalibSharedAxes)
	assert.Equal(t, []int{0, 1}, r.RHS.CalibSharedAxes)

	r, err = NewConvGeneralDilated(0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, r.LHS.CalibSharedAxes)
	assert.Equal(t, []int{0}, r.RHS.CalibSharedAxes)

	_, err = NewConvGeneralDilated(-1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSpatialDims)

	r, err = NewConvGeneralDilated(MaxSpatialDims, nil, nil)
	require.NoError(t, err)
	assert.Len(t, r.LHS.CalibSharedAxes, MaxSpatialDims+1)
}

func TestNewConvGeneralDilatedRejectsHugeRank(t *testing.T) {
	for _, sd := range []int{MaxSpatialDims + 1, 2_000_000_000, math.MaxInt} {
		require.NotPanics(t, func() {
			_, err := NewConvGeneralDilated(sd, Bits(8), Bits(8))
			assert.ErrorIs(t, err, ErrInvalidSpatialDims, "spatialDims=%d", sd)
		})
	}
}

func TestNewDotGeneralRawNonPositiveBitsStayWide(t *testing.T) {
	for _, b := range []int{0, -3} {
		r, err := NewDotGeneralRaw(Bits(b), Bits(b))
		require.NoError(t, err)
		assert.Equal(t, WideDType, r.LHS.DType)
		assert.Equal(t, WideDType, r.RHS.DType)
		assert.Nil(t, r.InDType)
		assert.Nil(t, r.AccumulatorDType)
	}
}

func TestNewDotGeneralRawIdempotent(t *testing.T) {
	a, err := NewDotGeneralRaw(Bits(8), Bits(3), WithLocalAqt(2))
	require.NoError(t, err)
	b, err := NewDotGeneralRaw(Bits(8), Bits(3), WithLocalAqt(2))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotSame(t, a.LHS, b.LHS)
}

func TestDotGeneralRawClone(t *testing.T) {
	r, err := NewConvGeneralDilated(2, Bits(8), Bits(8), WithLocalAqt(4))
	require.NoError(t, err)
	c := r.Clone()
	require.Equal(t, r, c)

	*c.InDType = DTypeBF16
	c.LocalAqt.ContractionAxisShardCount = 1
	c.LHS.CalibSharedAxes[0] = 9
	assert.Equal(t, DTypeI8, *r.InDType)
	assert.Equal(t, 4, r.LocalAqt.ContractionAxisShardCount)
	assert.Equal(t, 1, r.LHS.CalibSharedAxes[0])
}

func TestErrorsCarryContext(t *testing.T) {
	_, err := NewDotGeneralRaw(Bits(8), Bits(8), WithRHS(func(tn *Tensor) { tn.Round = false }))
	require.Error(t, err)
	assert.Equal(t, ErrIncompatibleNativePrecision, errors.Cause(err))
	assert.Contains(t, err.Error(), "rhs")
}
