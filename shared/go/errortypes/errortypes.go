// Package errortypes provides the nested error envelope TrueSight's HTTP
// surfaces render to callers: {"error": {"code": ..., "message": ...}}.
package errortypes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Code enumerates the error taxonomy from the error handling design.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodePayloadTooLarge      Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeDatabase             Code = "DATABASE_ERROR"
	CodeSQS                  Code = "SQS_ERROR"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// httpStatus maps each taxonomy code to its HTTP class.
var httpStatus = map[Code]int{
	CodeValidation:           http.StatusBadRequest,
	CodeUnauthorized:         http.StatusUnauthorized,
	CodeNotFound:             http.StatusNotFound,
	CodeRateLimited:          http.StatusTooManyRequests,
	CodePayloadTooLarge:      http.StatusRequestEntityTooLarge,
	CodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	CodeDatabase:             http.StatusInternalServerError,
	CodeSQS:                  http.StatusInternalServerError,
	CodeInternal:             http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status class for a taxonomy code.
func HTTPStatus(code Code) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is the standardized error schema rendered by every TrueSight HTTP
// surface.
type Error struct {
	Code      Code      `json:"-"`
	Message   string    `json:"-"`
	RequestID string    `json:"-"`
	Timestamp time.Time `json:"-"`
}

// Option mutates an Error during construction.
type Option func(*Error)

// New constructs a new Error with the given code and message.
func New(code Code, message string, opts ...Option) *Error {
	e := &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRequestID attaches a request ID to the Error value; it is not
// rendered in the JSON body.
func WithRequestID(id string) Option {
	return func(e *Error) { e.RequestID = id }
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// envelope is the wire shape: {"error": {"code", "message"}}.
type envelope struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// MarshalJSON renders the nested envelope shape.
func (e *Error) MarshalJSON() ([]byte, error) {
	var env envelope
	env.Error.Code = e.Code
	env.Error.Message = e.Message
	return json.Marshal(env)
}

// WriteJSON writes the error as the nested JSON envelope with the matching
// HTTP status code.
func WriteJSON(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err.Code))
	_ = json.NewEncoder(w).Encode(err)
}

// From coerces any error into an *Error, defaulting unrecognized errors to
// CodeInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*Error); ok {
		return te
	}
	return New(CodeInternal, "unexpected error occurred")
}
