package aqt

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/goccy/go-json"
)

// NumericsDescription is the serializable form of Numerics.
type NumericsDescription struct {
	Kind         string `json:"kind" yaml:"kind"`
	Bits         int    `json:"bits,omitempty" yaml:"bits,omitempty"`
	PreserveZero bool   `json:"preserve_zero" yaml:"preserve_zero"`
}

// TensorDescription is the serializable form of a Tensor. Function fields
// are reported by name.
type TensorDescription struct {
	Numerics        NumericsDescription `json:"numerics" yaml:"numerics"`
	CalibSharedAxes []int               `json:"calib_shared_axes" yaml:"calib_shared_axes"`
	Bound           *float64            `json:"bound" yaml:"bound"`
	BoundStopGrad   bool                `json:"bound_stop_grad" yaml:"bound_stop_grad"`
	PreserveMaxVal  bool                `json:"preserve_max_val" yaml:"preserve_max_val"`
	Clip            bool                `json:"clip" yaml:"clip"`
	Round           bool                `json:"round" yaml:"round"`
	ClipAndRound    string              `json:"clip_and_round,omitempty" yaml:"clip_and_round,omitempty"`
	FreshScale      string              `json:"fresh_scale,omitempty" yaml:"fresh_scale,omitempty"`
	NoiseFn         string              `json:"noise_fn,omitempty" yaml:"noise_fn,omitempty"`
	Po2Scale        bool                `json:"po2_scale" yaml:"po2_scale"`
	UseFakeQuant    bool                `json:"use_fake_quant" yaml:"use_fake_quant"`
	DType           string              `json:"dtype" yaml:"dtype"`
	UseFwdQuant     *bool               `json:"use_fwd_quant" yaml:"use_fwd_quant"`
}

// DotGeneralRawDescription is the serializable form of a DotGeneralRaw.
type DotGeneralRawDescription struct {
	LHS              TensorDescription `json:"lhs" yaml:"lhs"`
	RHS              TensorDescription `json:"rhs" yaml:"rhs"`
	InDType          *string           `json:"dg_in_dtype" yaml:"dg_in_dtype"`
	AccumulatorDType *string           `json:"dg_accumulator_dtype" yaml:"dg_accumulator_dtype"`
	LocalAqt         *int              `json:"local_aqt_shard_count,omitempty" yaml:"local_aqt_shard_count,omitempty"`
	ScopeName        string            `json:"scope_name,omitempty" yaml:"scope_name,omitempty"`
}

// DotGeneralDescription is the serializable form of a DotGeneral.
type DotGeneralDescription struct {
	Fwd  DotGeneralRawDescription `json:"fwd" yaml:"fwd"`
	DLHS DotGeneralRawDescription `json:"dlhs" yaml:"dlhs"`
	DRHS DotGeneralRawDescription `json:"drhs" yaml:"drhs"`
}

func describeNumerics(n Numerics) NumericsDescription {
	switch v := n.(type) {
	case IntNumerics:
		return NumericsDescription{Kind: "int", Bits: v.Bits, PreserveZero: v.PreserveZero}
	case *IntNumerics:
		return NumericsDescription{Kind: "int", Bits: v.Bits, PreserveZero: v.PreserveZero}
	default:
		return NumericsDescription{Kind: "none"}
	}
}

// Describe returns the serializable form of t.
func (t *Tensor) Describe() TensorDescription {
	return TensorDescription{
		Numerics:        describeNumerics(t.Numerics),
		CalibSharedAxes: t.CalibSharedAxes,
		Bound:           t.Bound,
		BoundStopGrad:   t.BoundStopGrad,
		PreserveMaxVal:  t.PreserveMaxVal,
		Clip:            t.Clip,
		Round:           t.Round,
		ClipAndRound:    funcName(t.ClipAndRound),
		FreshScale:      funcName(t.FreshScale),
		NoiseFn:         funcName(t.NoiseFn),
		Po2Scale:        t.Po2Scale,
		UseFakeQuant:    t.UseFakeQuant,
		DType:           t.DType.String(),
		UseFwdQuant:     t.UseFwdQuant,
	}
}

// Describe returns the serializable form of r.
func (r *DotGeneralRaw) Describe() DotGeneralRawDescription {
	out := DotGeneralRawDescription{
		LHS:       r.LHS.Describe(),
		RHS:       r.RHS.Describe(),
		ScopeName: r.ScopeName,
	}
	if r.InDType != nil {
		s := r.InDType.String()
		out.InDType = &s
	}
	if r.AccumulatorDType != nil {
		s := r.AccumulatorDType.String()
		out.AccumulatorDType = &s
	}
	if r.LocalAqt != nil {
		n := r.LocalAqt.ContractionAxisShardCount
		out.LocalAqt = &n
	}
	return out
}

// Describe returns the serializable form of d.
func (d *DotGeneral) Describe() DotGeneralDescription {
	return DotGeneralDescription{
		Fwd:  d.Fwd.Describe(),
		DLHS: d.DLHS.Describe(),
		DRHS: d.DRHS.Describe(),
	}
}

func (t *Tensor) MarshalJSON() ([]byte, error)        { return json.Marshal(t.Describe()) }
func (r *DotGeneralRaw) MarshalJSON() ([]byte, error) { return json.Marshal(r.Describe()) }
func (d *DotGeneral) MarshalJSON() ([]byte, error)    { return json.Marshal(d.Describe()) }

func (t *Tensor) MarshalYAML() (any, error)        { return t.Describe(), nil }
func (r *DotGeneralRaw) MarshalYAML() (any, error) { return r.Describe(), nil }
func (d *DotGeneral) MarshalYAML() (any, error)    { return d.Describe(), nil }

// funcName returns the short name of a function value, or "" for nil.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (t *Tensor) String() string {
	var b strings.Builder
	writeTensor(&b, t.Describe(), "")
	return b.String()
}

func (r *DotGeneralRaw) String() string {
	var b strings.Builder
	writeRaw(&b, r.Describe(), "")
	return b.String()
}

func (d *DotGeneral) String() string {
	desc := d.Describe()
	var b strings.Builder
	b.WriteString("DotGeneral(\n")
	for _, p := range []struct {
		name string
		raw  DotGeneralRawDescription
	}{{"fwd", desc.Fwd}, {"dlhs", desc.DLHS}, {"drhs", desc.DRHS}} {
		fmt.Fprintf(&b, "  %s=", p.name)
		writeRaw(&b, p.raw, "  ")
		b.WriteString(",\n")
	}
	b.WriteString(")")
	return b.String()
}

func writeRaw(b *strings.Builder, r DotGeneralRawDescription, indent string) {
	in := indent + "  "
	b.WriteString("DotGeneralRaw(\n")
	b.WriteString(in + "lhs=")
	writeTensor(b, r.LHS, in)
	b.WriteString(",\n" + in + "rhs=")
	writeTensor(b, r.RHS, in)
	b.WriteString(",\n")
	fmt.Fprintf(b, "%sdg_in_dtype=%s,\n", in, optString(r.InDType))
	fmt.Fprintf(b, "%sdg_accumulator_dtype=%s,\n", in, optString(r.AccumulatorDType))
	if r.LocalAqt != nil {
		fmt.Fprintf(b, "%slocal_aqt=LocalAqt(contraction_axis_shard_count=%d),\n", in, *r.LocalAqt)
	} else {
		fmt.Fprintf(b, "%slocal_aqt=nil,\n", in)
	}
	fmt.Fprintf(b, "%sscope_name=%q,\n", in, r.ScopeName)
	b.WriteString(indent + ")")
}

func writeTensor(b *strings.Builder, t TensorDescription, indent string) {
	in := indent + "  "
	b.WriteString("Tensor(\n")
	if t.Numerics.Kind == "int" {
		fmt.Fprintf(b, "%snumerics=IntNumerics(bits=%d, preserve_zero=%t),\n", in, t.Numerics.Bits, t.Numerics.PreserveZero)
	} else {
		fmt.Fprintf(b, "%snumerics=NoNumerics(),\n", in)
	}
	if t.CalibSharedAxes == nil {
		fmt.Fprintf(b, "%scalib_shared_axes=nil,\n", in)
	} else {
		fmt.Fprintf(b, "%scalib_shared_axes=%v,\n", in, t.CalibSharedAxes)
	}
	if t.Bound == nil {
		fmt.Fprintf(b, "%sbound=nil,\n", in)
	} else {
		fmt.Fprintf(b, "%sbound=%g,\n", in, *t.Bound)
	}
	fmt.Fprintf(b, "%sbound_stop_grad=%t,\n", in, t.BoundStopGrad)
	fmt.Fprintf(b, "%spreserve_max_val=%t,\n", in, t.PreserveMaxVal)
	fmt.Fprintf(b, "%sclip=%t,\n", in, t.Clip)
	fmt.Fprintf(b, "%sround=%t,\n", in, t.Round)
	fmt.Fprintf(b, "%sclip_and_round=%s,\n", in, orNil(t.ClipAndRound))
	fmt.Fprintf(b, "%sfresh_scale=%s,\n", in, orNil(t.FreshScale))
	fmt.Fprintf(b, "%snoise_fn=%s,\n", in, orNil(t.NoiseFn))
	fmt.Fprintf(b, "%spo2_scale=%t,\n", in, t.Po2Scale)
	fmt.Fprintf(b, "%suse_fake_quant=%t,\n", in, t.UseFakeQuant)
	fmt.Fprintf(b, "%sdtype=%s,\n", in, t.DType)
	if t.UseFwdQuant == nil {
		fmt.Fprintf(b, "%suse_fwd_quant=nil,\n", in)
	} else {
		fmt.Fprintf(b, "%suse_fwd_quant=%t,\n", in, *t.UseFwdQuant)
	}
	b.WriteString(indent + ")")
}

func optString(s *string) string {
	if s == nil {
		return "nil"
	}
	return *s
}

func orNil(s string) string {
	if s == "" {
		return "nil"
	}
	return s
}
