package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/infrastructure/validate"
)

// RESTStandardError response error
type RESTStandardError struct {
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func NewRESTStandardError(code int, detail string) *RESTStandardError {
	return &RESTStandardError{
		Code:   code,
		Title:  http.StatusText(code),
		Detail: detail,
	}
}

func (re RESTStandardError) Error() string {
	return re.Detail
}

func (re RESTStandardError) SetTraceID(traceID string) RESTStandardError {
	re.TraceID = traceID
	return re
}

// RESTValidationError standard validation error
type RESTValidationError struct {
	RESTStandardError
	InvalidParams []*validate.FieldError `json:"invalid_params"`
}

func NewRESTValidationError(code int, detail string, internal []*validate.FieldError) *RESTValidationError {
	return &RESTValidationError{
		RESTStandardError: RESTStandardError{
			Code:   code,
			Title:  http.StatusText(code),
			Detail: detail,
		},
		InvalidParams: internal,
	}
}

func (rve RESTValidationError) Error() string {
	return rve.Detail
}

func (rve RESTValidationError) SetTraceID(traceID string) RESTValidationError {
	rve.RESTStandardError.TraceID = traceID
	return rve
}

func traceID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func respondValidation(c echo.Context, errs []*validate.FieldError) error {
	return c.JSON(http.StatusBadRequest,
		NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", errs).SetTraceID(traceID(c)))
}

func respondError(c echo.Context, code int, detail string) error {
	return c.JSON(code, NewRESTStandardError(code, detail).SetTraceID(traceID(c)))
}

// bindForm decode the request body into form and validate it. A mistyped field and every
// failing rule are answered together in one 400, ok reports whether form can be used
func bindForm(c echo.Context, v validate.Validator, form interface{}) (ok bool, err error) {
	var fieldErrs []*validate.FieldError

	decoder := json.NewDecoder(c.Request().Body)
	if err := decoder.Decode(form); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			// the decoder keeps filling the other fields after a type mismatch
			fieldErrs = append(fieldErrs, validate.NewFieldError(typeErr.Field,
				fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind()))))
		case errors.Is(err, io.EOF):
			return false, respondError(c, http.StatusBadRequest, "request body is empty")
		default:
			return false, respondError(c, http.StatusBadRequest, fmt.Sprintf("malformed request body: %s", err))
		}
	}

	for _, fe := range v.Struct(form) {
		if !hasDomain(fieldErrs, fe.Domain) {
			fieldErrs = append(fieldErrs, fe)
		}
	}
	if len(fieldErrs) > 0 {
		return false, respondValidation(c, fieldErrs)
	}
	return true, nil
}

func hasDomain(errs []*validate.FieldError, domain string) bool {
	for _, fe := range errs {
		if fe.Domain == domain {
			return true
		}
	}
	return false
}

func jsonKind(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return kind.String()
}
