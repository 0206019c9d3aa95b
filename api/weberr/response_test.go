package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/uma-store/core/apperr"
)

func TestResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   *ErrorResponse
		status int
		ok     bool
	}{
		{
			name:   "explicit response",
			err:    NotAuthorized(errors.New("no session")),
			body:   &ErrorResponse{"not authorized to access resource"},
			status: http.StatusUnauthorized,
			ok:     true,
		},
		{
			name:   "invalid argument keeps its reason",
			err:    fmt.Errorf("checkout: %w", apperr.Invalid("cart is empty")),
			body:   &ErrorResponse{"cart is empty"},
			status: http.StatusBadRequest,
			ok:     true,
		},
		{
			name:   "not found hides which entity",
			err:    apperr.Missing("order"),
			body:   &ErrorResponse{msgNotFound},
			status: http.StatusNotFound,
			ok:     true,
		},
		{
			name:   "not configured",
			err:    apperr.Unconfigured("stripe is not configured"),
			body:   &ErrorResponse{msgUnavailable},
			status: http.StatusServiceUnavailable,
			ok:     true,
		},
		{
			name:   "operation failed does not leak the cause",
			err:    apperr.Failed("creating stripe session", errors.New("invalid api key sk_live_123")),
			body:   &ErrorResponse{msgUpstreamError},
			status: http.StatusBadGateway,
			ok:     true,
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, status, ok := Response(tc.err)
			if ok != tc.ok {
				t.Fatalf("expected ok %v, got %v", tc.ok, ok)
			}
			if !ok {
				return
			}
			if status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, status)
			}
			if diff := cmp.Diff(tc.body, body); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFields(t *testing.T) {
	err := BadRequest(errors.New("bad payload"), WithFields(map[string]interface{}{"order_id": "42"}))

	f, ok := Fields(err)
	if !ok {
		t.Fatal("expected fields")
	}
	if f["order_id"] != "42" {
		t.Fatalf("unexpected fields %v", f)
	}
}
