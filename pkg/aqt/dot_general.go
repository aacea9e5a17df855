package aqt

import "github.com/pkg/errors"

// Scope names given to the three contractions of a DotGeneral.
const (
	ScopeFwd  = "aqt_fwd"
	ScopeDLHS = "aqt_dlhs"
	ScopeDRHS = "aqt_drhs"
)

// DotGeneral configures a dot_general and both of its gradients.
// DLHS computes the gradient with respect to the left operand, DRHS the
// gradient with respect to the right operand.
type DotGeneral struct {
	Fwd  *DotGeneralRaw
	DLHS *DotGeneralRaw
	DRHS *DotGeneralRaw
}

// NewDotGeneral builds the forward contraction from lhsBits and rhsBits and
// both gradient contractions from bwdBits. When useFwdQuant is set, gradient
// operands reuse the forward-quantized value of every operand that the
// forward pass quantizes.
func NewDotGeneral(lhsBits, rhsBits, bwdBits *int, useFwdQuant bool) (*DotGeneral, error) {
	return newDotGeneral(lhsBits, rhsBits, bwdBits, bwdBits, useFwdQuant)
}

func newDotGeneral(lhsBits, rhsBits, dlhsBits, drhsBits *int, useFwdQuant bool) (*DotGeneral, error) {
	fwd, err := NewDotGeneralRaw(lhsBits, rhsBits, WithScopeName(ScopeFwd))
	if err != nil {
		return nil, errors.Wrap(err, "fwd")
	}
	dlhs, err := NewDotGeneralRaw(dlhsBits, dlhsBits, WithScopeName(ScopeDLHS))
	if err != nil {
		return nil, errors.Wrap(err, "dlhs")
	}
	drhs, err := NewDotGeneralRaw(drhsBits, drhsBits, WithScopeName(ScopeDRHS))
	if err != nil {
		return nil, errors.Wrap(err, "drhs")
	}
	return linkPasses(fwd, dlhs, drhs, lhsBits != nil, rhsBits != nil, useFwdQuant), nil
}

// linkPasses assembles the three freshly built contractions and couples
// them. Only the rhs of a gradient contraction accepts a forward-quantized
// value: dlhs multiplies the output gradient by the forward rhs, drhs by the
// forward lhs. So quantizing the forward lhs decides what drhs can reuse,
// and the forward rhs decides for dlhs.
func linkPasses(fwd, dlhs, drhs *DotGeneralRaw, lhsQuantized, rhsQuantized, useFwdQuant bool) *DotGeneral {
	if lhsQuantized {
		drhs.RHS.UseFwdQuant = boolPtr(useFwdQuant)
	}
	if rhsQuantized {
		dlhs.RHS.UseFwdQuant = boolPtr(useFwdQuant)
	}
	return &DotGeneral{Fwd: fwd, DLHS: dlhs, DRHS: drhs}
}

// Validate checks every contraction and the forward reuse preconditions.
func (d *DotGeneral) Validate() error {
	passes := []struct {
		name string
		raw  *DotGeneralRaw
	}{
		{ScopeFwd, d.Fwd},
		{ScopeDLHS, d.DLHS},
		{ScopeDRHS, d.DRHS},
	}
	for _, p := range passes {
		if err := p.raw.Validate(); err != nil {
			return errors.Wrap(err, p.name)
		}
	}
	if reusesFwd(d.DRHS.RHS) && !IsQuantized(d.Fwd.LHS.Numerics) {
		return errors.Wrap(ErrForwardNotQuantized, "drhs.rhs reuses fwd.lhs")
	}
	if reusesFwd(d.DLHS.RHS) && !IsQuantized(d.Fwd.RHS.Numerics) {
		return errors.Wrap(ErrForwardNotQuantized, "dlhs.rhs reuses fwd.rhs")
	}
	return nil
}

func reusesFwd(t *Tensor) bool {
	return t.UseFwdQuant != nil && *t.UseFwdQuant
}

// Clone returns a deep copy of d.
func (d *DotGeneral) Clone() *DotGeneral {
	if d == nil {
		return nil
	}
	return &DotGeneral{
		Fwd:  d.Fwd.Clone(),
		DLHS: d.DLHS.Clone(),
		DRHS: d.DRHS.Clone(),
	}
}

// Operands returns every operand configuration keyed by its path, such as
// "dlhs.rhs". The pointers alias d.
func (d *DotGeneral) Operands() map[string]*Tensor {
	return map[string]*Tensor{
		"fwd.lhs":  d.Fwd.LHS,
		"fwd.rhs":  d.Fwd.RHS,
		"dlhs.lhs": d.DLHS.LHS,
		"dlhs.rhs": d.DLHS.RHS,
		"drhs.lhs": d.DRHS.LHS,
		"drhs.rhs": d.DRHS.RHS,
	}
}
