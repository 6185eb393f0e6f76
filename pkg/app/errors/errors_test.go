package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError_StatusCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{BadRequestError(nil, "bad amount"), http.StatusBadRequest},
		{UnAuthorizedError(nil, "missing token"), http.StatusUnauthorized},
		{ResourceNotFoundError(nil, "no such row"), http.StatusNotFound},
		{DependencyError(nil, "relay down"), http.StatusBadGateway},
		{UnavailableError(nil, "not ready"), http.StatusServiceUnavailable},
		{GeneralError(nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var svcErr *ServiceError
		assert.True(t, errors.As(tc.err, &svcErr))
		assert.Equal(t, tc.code, svcErr.StatusCode(), svcErr.Category.String())
	}
}

func TestServiceError_WrapsCause(t *testing.T) {
	cause := errors.New("row 42 missing")
	err := fmt.Errorf("get: %w", ResourceNotFoundError(cause, "transaction not found"))

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CategoryResourceNotFound))
	assert.False(t, Is(err, CategoryDataError))
	assert.False(t, IsInternalError(err))
	assert.True(t, IsInternalError(cause))
	assert.True(t, IsInternalError(DependencyError(nil, "relay down")))
}
