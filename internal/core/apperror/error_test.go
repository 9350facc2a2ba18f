package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ChainHelpers(t *testing.T) {
	cause := errors.New("unknown filter dimension \"color\"")
	err := fmt.Errorf("search news: %w", NewInvalidFilter(cause))

	assert.True(t, HasCode(err, CodeInvalidFilter))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(err))
	assert.ErrorIs(t, err, cause)

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, cause.Error(), appErr.Details["reason"])
}

func TestAppError_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	_, ok := AsAppError(err)
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: news not found", NewNotFound("news", "42").Error())
	assert.Equal(t,
		"INTERNAL_ERROR: Internal server error (caused by: boom)",
		NewInternal(errors.New("boom")).Error(),
	)
	assert.Equal(t, "x", NewValidation("bad").WithDetail("field", "x").Details["field"])
}
