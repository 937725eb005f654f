package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{New(http.StatusNotFound, "not_found", errors.New("work missing")), "work missing"},
		{New(http.StatusNotFound, "not_found", nil), "not_found"},
		{New(http.StatusTeapot, "", nil), "api error (418)"},
		{&Error{}, "api error"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error(): want=%q got=%q", tc.want, got)
		}
	}
}

func TestAsFindsWrapped(t *testing.T) {
	inner := errors.New("boom")
	wrapped := fmt.Errorf("handler: %w", New(http.StatusBadRequest, "bad", inner))
	ae := As(wrapped)
	if ae == nil || ae.Status != http.StatusBadRequest || ae.Code != "bad" {
		t.Fatalf("As: got=%+v", ae)
	}
	if !errors.Is(wrapped, inner) {
		t.Fatalf("Unwrap must expose the cause")
	}
	if As(inner) != nil {
		t.Fatalf("As on plain error: want nil")
	}
}
