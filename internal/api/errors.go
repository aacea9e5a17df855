package api

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/samcharles93/aqt/pkg/aqt"
)

// ErrInvalidRequest marks request payloads that fail validation before any
// configuration is derived.
var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	param string
	msg   string
}

func (e invalidRequestError) Error() string {
	return e.param + ": " + e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(param, msg string) error {
	return invalidRequestError{param: param, msg: msg}
}

// configErrorCodes maps derivation failures to stable error codes.
var configErrorCodes = []struct {
	err  error
	code string
}{
	{aqt.ErrUnsupportedOverrideWithNativePrecision, "unsupported_override_with_native_precision"},
	{aqt.ErrIncompatibleNativePrecision, "incompatible_native_precision"},
	{aqt.ErrForwardNotQuantized, "forward_not_quantized"},
	{aqt.ErrInconsistentDTypes, "inconsistent_dtypes"},
	{aqt.ErrInvalidShardCount, "invalid_shard_count"},
	{aqt.ErrInvalidSpatialDims, "invalid_spatial_dims"},
	{aqt.ErrUnknownDType, "unknown_dtype"},
	{aqt.ErrUnknownRNG, "unknown_rng"},
}

// classify returns the HTTP status, error type, code and param for err.
func classify(err error) (status int, errType, code, param string) {
	var inv invalidRequestError
	if errors.As(err, &inv) {
		return http.StatusBadRequest, "invalid_request_error", "", inv.param
	}
	for _, c := range configErrorCodes {
		if errors.Is(err, c.err) {
			return http.StatusUnprocessableEntity, "configuration_error", c.code, ""
		}
	}
	return http.StatusInternalServerError, "server_error", "", ""
}
