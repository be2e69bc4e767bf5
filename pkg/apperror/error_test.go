package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-jobmatch-web/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   apperror.Kind
	}{
		{http.StatusUnauthorized, apperror.KindUnauthorized},
		{http.StatusForbidden, apperror.KindForbidden},
		{http.StatusNotFound, apperror.KindNotFound},
		{http.StatusBadRequest, apperror.KindValidation},
		{http.StatusUnprocessableEntity, apperror.KindValidation},
		{http.StatusConflict, apperror.KindConflict},
		{http.StatusInternalServerError, apperror.KindInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := apperror.FromStatus(tt.status, "")
			assert.Equal(t, tt.kind, err.Kind)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("load jobs: %w", apperror.Unauthorized("Invalid token"))
	assert.True(t, apperror.IsUnauthorized(wrapped))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("boom")))

	netErr := apperror.Network(errors.New("dial tcp: refused"))
	assert.Equal(t, apperror.KindNetwork, apperror.KindOf(netErr))
	assert.Equal(t, http.StatusBadGateway, netErr.Code)
}
