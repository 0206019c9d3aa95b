// Package weberr decorates errors with what the error middleware needs: the
// response to send and the fields to log.
package weberr

import "errors"

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

func WithField(key string, value interface{}) Opt {
	return WithFields(map[string]interface{}{key: value})
}

type fielder interface {
	Fields() map[string]interface{}
}

// Fields merges the log fields attached anywhere in err's chain. Outer
// wrappers win on key collisions.
func Fields(err error) (map[string]interface{}, bool) {
	var out map[string]interface{}
	for err != nil {
		var fe fielder
		if !errors.As(err, &fe) {
			break
		}
		if out == nil {
			out = make(map[string]interface{})
		}
		for k, v := range fe.Fields() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		u, ok := fe.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return out, out != nil
}

type fieldsError struct {
	error
	fields map[string]interface{}
}

func (e *fieldsError) Fields() map[string]interface{} { return e.fields }

func (e *fieldsError) Unwrap() error { return e.error }
