package generr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithKeepsKind(t *testing.T) {
	err := NotEligible.With("task not yet available, retry after %s", "2024-01-02 10:00 UTC+4")
	assert.True(t, errors.Is(err, NotEligible))
	assert.False(t, errors.Is(err, AlreadyCheckedIn))
	assert.Equal(t, "task not yet available, retry after 2024-01-02 10:00 UTC+4", err.Msg)
}

func TestFrom(t *testing.T) {
	wrapped := errors.Wrap(SelfReferral, "apply referral")
	assert.Same(t, SelfReferral, From(wrapped))
	assert.Same(t, Persistence, From(errors.New("driver: bad connection")))
	assert.Nil(t, From(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ParseParam, http.StatusBadRequest},
		{Validation.With("amount must be positive"), http.StatusUnprocessableEntity},
		{NotFound, http.StatusNotFound},
		{InvalidCode, http.StatusNotFound},
		{SignNotMatch, http.StatusUnauthorized},
		{errors.Wrap(AlreadyCheckedIn, "check in"), http.StatusConflict},
		{AlreadyReferred, http.StatusConflict},
		{errors.New("boom"), http.StatusServiceUnavailable},
		{ServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}
