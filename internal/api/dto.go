package api

// DotGeneralRequest derives a forward contraction and both gradients.
// Omitted bit widths leave the operand unquantized; use_fwd_quant defaults
// to true.
type DotGeneralRequest struct {
	LHSBits     *int  `json:"lhs_bits"`
	RHSBits     *int  `json:"rhs_bits"`
	BwdBits     *int  `json:"bwd_bits"`
	UseFwdQuant *bool `json:"use_fwd_quant"`
}

// DotGeneralRawRequest derives a single contraction. Setting
// conv_spatial_dims selects the convolution variant.
type DotGeneralRawRequest struct {
	LHSBits         *int `json:"lhs_bits"`
	RHSBits         *int `json:"rhs_bits"`
	ConvSpatialDims *int `json:"conv_spatial_dims"`
	LocalAqtShards  *int `json:"local_aqt_shards"`
}

// FullyQuantizedRequest mirrors aqt.FullyQuantizedOptions. Omitted fields
// take the preset defaults (8 bits, reuse and stochastic rounding on).
type FullyQuantizedRequest struct {
	FwdBits               *int  `json:"fwd_bits"`
	BwdBits               *int  `json:"bwd_bits"`
	UseFwdQuant           *bool `json:"use_fwd_quant"`
	UseStochasticRounding *bool `json:"use_stochastic_rounding"`
	UseDummyStaticBound   bool  `json:"use_dummy_static_bound"`
}

// PerPassRequest mirrors aqt.PerPassOptions with dtypes and rng by name.
type PerPassRequest struct {
	FwdBits              *int   `json:"fwd_bits"`
	DLHSBits             *int   `json:"dlhs_bits"`
	DRHSBits             *int   `json:"drhs_bits"`
	RNG                  string `json:"rng_type"`
	DLHSLocalAqtShards   *int   `json:"dlhs_local_aqt_shards"`
	DRHSLocalAqtShards   *int   `json:"drhs_local_aqt_shards"`
	FwdAccumulatorDType  string `json:"fwd_accumulator_dtype"`
	DLHSAccumulatorDType string `json:"dlhs_accumulator_dtype"`
	DRHSAccumulatorDType string `json:"drhs_accumulator_dtype"`
	UseFwdQuant          bool   `json:"use_fwd_quant"`
}

// ConfigResponse wraps a derived configuration.
type ConfigResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Config  any    `json:"config"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
