package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/listatree/hypothesis/internal/codec"
	"github.com/listatree/hypothesis/internal/converter"
	"github.com/listatree/hypothesis/internal/database"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Example is one stored example as returned by the API
type Example struct {
	// Repr is the value in literal syntax
	Repr string `json:"repr"`
	// JSON is the canonical stored text
	JSON json.RawMessage `json:"json"`
}

// ExamplesResponse lists the examples stored for a descriptor
type ExamplesResponse struct {
	Key      string    `json:"key"`
	Examples []Example `json:"examples"`
}

// SaveRequest is the body of POST /v1/examples. Exactly one of Value and
// Encoded must be set.
type SaveRequest struct {
	Descriptor string `json:"descriptor"`
	// Value is an example in literal syntax
	Value string `json:"value,omitempty"`
	// Encoded is an example in stored JSON form
	Encoded json.RawMessage `json:"encoded,omitempty"`
}

// SaveResponse echoes the key and canonical form of a saved example
type SaveResponse struct {
	Key string `json:"key"`
	Example
}

func renderJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func renderError(w http.ResponseWriter, statusCode int, err error) {
	renderJSON(w, statusCode, &ErrorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    errorCode(err, statusCode),
	})
}

// statusFor maps database and converter errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrShapeMismatch),
		errors.Is(err, converter.ErrNotSerializable),
		errors.Is(err, converter.ErrWrongFormat),
		errors.Is(err, converter.ErrMalformedRecord),
		errors.Is(err, converter.ErrEnumerationLookup),
		errors.Is(err, codec.ErrMalformedText):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func errorCode(err error, statusCode int) string {
	switch {
	case errors.Is(err, database.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, converter.ErrNotSerializable):
		return "not_serializable"
	case errors.Is(err, converter.ErrWrongFormat):
		return "wrong_format"
	case errors.Is(err, converter.ErrMalformedRecord),
		errors.Is(err, converter.ErrEnumerationLookup),
		errors.Is(err, codec.ErrMalformedText):
		return "malformed_record"
	}

	switch statusCode {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusInternalServerError:
		return "internal_error"
	}
	return ""
}
