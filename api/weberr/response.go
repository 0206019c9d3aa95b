package weberr

import (
	"errors"
	"net/http"

	"github.com/irsalhamdi/uma-store/core/apperr"
)

const (
	msgNotFound      = "the resource could not be found"
	msgInternal      = "the server encountered a problem and could not process your request"
	msgUnavailable   = "the service is not available right now"
	msgUpstreamError = "the payment provider could not process the request"
)

type responder interface {
	Response() (body interface{}, status int)
}

// Response finds the body and status err should be answered with. Explicit
// responses set by NewError win over the classification of service errors.
func Response(err error) (body interface{}, status int, ok bool) {
	var re responder
	if errors.As(err, &re) {
		body, code := re.Response()
		return body, code, true
	}

	if ae, ok := apperr.As(err); ok {
		body, code := classify(ae)
		return body, code, true
	}

	return nil, 0, false
}

// classify never echoes the wrapped cause: only NotFound and InvalidArgument
// messages are written for the caller.
func classify(ae *apperr.Error) (*ErrorResponse, int) {
	switch ae.Kind {
	case apperr.InvalidArgument:
		return &ErrorResponse{ae.Msg}, http.StatusBadRequest
	case apperr.NotFound:
		return &ErrorResponse{msgNotFound}, http.StatusNotFound
	case apperr.NotConfigured:
		return &ErrorResponse{msgUnavailable}, http.StatusServiceUnavailable
	case apperr.OperationFailed:
		return &ErrorResponse{msgUpstreamError}, http.StatusBadGateway
	}
	return &ErrorResponse{msgInternal}, http.StatusInternalServerError
}

type responseError struct {
	error
	body   interface{}
	status int
}

func (e *responseError) Response() (interface{}, int) {
	return e.body, e.status
}

func (e *responseError) Unwrap() error {
	return e.error
}
