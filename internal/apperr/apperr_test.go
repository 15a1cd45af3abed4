package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatchesAfterWrapping(t *testing.T) {
	cause := errors.New("broker down")
	err := fmt.Errorf("publish: %w", Upstream(cause))

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
	assert.NotErrorIs(t, err, ErrAccessDenied)
}

func TestDistinctCodesSameKind(t *testing.T) {
	assert.NotErrorIs(t, ErrNoDepartmentMembership, ErrAccessDenied)
	assert.Equal(t, KindOf(ErrAccessDenied), KindOf(ErrNoDepartmentMembership))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAccessDenied, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUpstreamUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestValidation(t *testing.T) {
	err := Validation("invalid request", map[string]string{"titleEn": "titleEn is required"})

	e, ok := As(fmt.Errorf("bind: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Equal(t, "titleEn is required", e.Fields["titleEn"])
}
