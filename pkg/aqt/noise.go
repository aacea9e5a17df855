package aqt

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// RNGType selects the noise source installed for stochastic rounding.
type RNGType string

const (
	RNGNone    RNGType = ""
	RNGCustom1 RNGType = "custom-1"
)

// ParseRNGType accepts "", "none" and "custom-1".
func ParseRNGType(s string) (RNGType, error) {
	switch s {
	case "", "none":
		return RNGNone, nil
	case string(RNGCustom1):
		return RNGCustom1, nil
	default:
		return RNGNone, errors.Wrapf(ErrUnknownRNG, "%q", s)
	}
}

// NoiseFn returns the noise source for rng, or nil for RNGNone.
func (rng RNGType) NoiseFn() NoiseFn {
	switch rng {
	case RNGCustom1:
		return RandomCenteredUniform
	default:
		return nil
	}
}

// RandomCenteredUniform returns float32 noise uniform in [-0.5, 0.5).
// The output depends only on shape and key.
func RandomCenteredUniform(shape tensor.Shape, key Key) (tensor.Tensor, error) {
	r := rand.New(rand.NewPCG(key[0], key[1]))
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(r.Float32() - 0.5)), nil
	}
	for _, d := range shape {
		if d < 0 {
			return nil, errors.Errorf("aqt: negative dimension in shape %v", shape)
		}
	}
	data := make([]float32, shape.TotalSize())
	for i := range data {
		data[i] = r.Float32() - 0.5
	}
	return tensor.New(tensor.WithShape(shape.Clone()...), tensor.WithBacking(data)), nil
}
