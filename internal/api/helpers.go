package api

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"
)

func writeJSON(c *echo.Context, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(body)
	return err
}

func writeError(c *echo.Context, err error) error {
	status, errType, code, param := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return writeJSON(c, status, ErrorResponse{Error: ResponseError{
		Message: msg,
		Type:    errType,
		Code:    code,
		Param:   param,
	}})
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeJSON(c, http.StatusNotFound, ErrorResponse{Error: ResponseError{
		Message: msg,
		Type:    "invalid_request_error",
		Code:    "not_found",
	}})
}

// decodeJSON decodes one JSON document from r. An empty body decodes to the
// zero value so every field falls back to its default.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return out, newInvalidRequest("body", err.Error())
	}
	return out, nil
}

func newConfigID() string {
	return "cfg_" + uuid.NewString()
}

type namedBits struct {
	param string
	bits  *int
}

func checkBits(list ...namedBits) error {
	for _, nb := range list {
		if nb.bits != nil && *nb.bits < 1 {
			return newInvalidRequest(nb.param, "bit width must be at least 1")
		}
	}
	return nil
}

func orDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
