package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_Status(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name   string
		err    *AppError
		kind   Kind
		status int
	}{
		{"not found", NotFound("consultant"), KindNotFound, http.StatusNotFound},
		{"write failure", UpstreamWriteFailure("create consultant", cause), KindUpstreamWriteFailure, http.StatusInternalServerError},
		{"read failure", UpstreamReadFailure("search consultants", cause), KindUpstreamReadFailure, http.StatusInternalServerError},
		{"unauthorized", Unauthorized(""), KindUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("inactive account"), KindForbidden, http.StatusForbidden},
		{"malformed", MalformedInput("bad body"), KindMalformedInput, http.StatusBadRequest},
		{"internal", InternalWithError(cause), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	inner := NotFound("consultant")
	wrapped := fmt.Errorf("delete: %w", inner)

	got := AsAppError(wrapped)
	assert.Same(t, inner, got)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindForbidden))
}

func TestAsAppError_PlainError(t *testing.T) {
	got := AsAppError(errors.New("boom"))
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, errors.Unwrap(got), "boom")
}

func TestInvalidParam_Detail(t *testing.T) {
	err := InvalidParam("experienceMin", "abc")
	assert.Equal(t, KindMalformedInput, err.Kind)
	assert.Equal(t, []string{`experienceMin: cannot parse "abc"`}, err.Errors)
}
