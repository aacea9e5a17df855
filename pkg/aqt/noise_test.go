package aqt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func noiseValues(t *testing.T, shape tensor.Shape, key Key) []float32 {
	t.Helper()
	out, err := RandomCenteredUniform(shape, key)
	require.NoError(t, err)
	dense, ok := out.(*tensor.Dense)
	require.True(t, ok, "expected *tensor.Dense, got %T", out)
	assert.Equal(t, shape, dense.Shape())
	data, ok := dense.Data().([]float32)
	require.True(t, ok, "expected []float32 backing, got %T", dense.Data())
	return data
}

func TestRandomCenteredUniformRange(t *testing.T) {
	data := noiseValues(t, tensor.Shape{16, 32}, Key{1, 2})
	require.Len(t, data, 16*32)
	var sum float64
	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
		sum += float64(v)
	}
	assert.InDelta(t, 0, sum/float64(len(data)), 0.1)
}

func TestRandomCenteredUniformDependsOnlyOnKey(t *testing.T) {
	shape := tensor.Shape{4, 5}
	a := noiseValues(t, shape, Key{7, 11})
	b := noiseValues(t, shape, Key{7, 11})
	c := noiseValues(t, shape, Key{7, 12})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRandomCenteredUniformScalar(t *testing.T) {
	out, err := RandomCenteredUniform(tensor.Shape{}, Key{})
	require.NoError(t, err)
	dense := out.(*tensor.Dense)
	assert.True(t, dense.IsScalar())
	v, ok := dense.Data().(float32)
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, float32(-0.5))
	assert.Less(t, v, float32(0.5))
}

func TestRandomCenteredUniformRejectsNegativeDims(t *testing.T) {
	_, err := RandomCenteredUniform(tensor.Shape{2, -1}, Key{})
	assert.Error(t, err)
}

func TestParseRNGType(t *testing.T) {
	for in, want := range map[string]RNGType{"": RNGNone, "none": RNGNone, "custom-1": RNGCustom1} {
		got, err := ParseRNGType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRNGType("jax")
	assert.ErrorIs(t, err, ErrUnknownRNG)

	assert.Nil(t, RNGNone.NoiseFn())
	assert.NotNil(t, RNGCustom1.NoiseFn())
}
