package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/uma-store/core/apperr"
	"github.com/irsalhamdi/uma-store/validate"
)

const maxBodyBytes = 1 << 20

// Handler is the signature every endpoint implements. Returned errors are
// answered by the error middleware.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

type Middleware func(Handler) Handler

// WrapMiddleware applies mw so that mw[0] runs first.
func WrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h := mw[i]
		if h != nil {
			handler = h(handler)
		}
	}

	return handler
}

func Respond(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cannot marshal response data: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("cannot write response data to response writer: %w", err)
	}

	return nil
}

// Decode reads a JSON body into val and validates it. Malformed or invalid
// payloads are reported as invalid arguments.
func Decode(w http.ResponseWriter, r *http.Request, val interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return apperr.New(apperr.InvalidArgument, "the request body is not valid JSON", err)
	}

	if err := validate.Check(val); err != nil {
		return apperr.New(apperr.InvalidArgument, err.Error(), err)
	}

	return nil
}

// DecodeOptional is Decode for endpoints whose body may be left empty.
func DecodeOptional(w http.ResponseWriter, r *http.Request, val interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		if err := validate.Check(val); err != nil {
			return apperr.New(apperr.InvalidArgument, err.Error(), err)
		}
		return nil
	}

	err := Decode(w, r, val)
	if ae, ok := apperr.As(err); ok && ae.Err == io.EOF {
		return nil
	}
	return err
}

// Raw reads the body unparsed, e.g. for signature verification.
func Raw(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return io.ReadAll(r.Body)
}

func Param(r *http.Request, key string) string {
	m := mux.Vars(r)
	return m[key]
}
