package weberr

import (
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// NewError wraps err so that the error middleware answers with msg and status
// instead of a bare 500.
func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(err, msgNotFound, http.StatusNotFound, opts...)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(err, "not authorized to access resource", http.StatusUnauthorized, opts...)
}

func Forbidden(err error, opts ...Opt) error {
	return NewError(err, "the resource is not available", http.StatusForbidden, opts...)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(err, msgInternal, http.StatusInternalServerError, opts...)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(err, "bad request", http.StatusBadRequest, opts...)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(err, "too many requests, try again later", http.StatusTooManyRequests, opts...)
}
