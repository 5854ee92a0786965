package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidCSRF, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("This day is archived.")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("update day: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := New("disk full")
	err := coded(CodeInternal)("failed to save day").WithCause(cause)

	assert.Equal(t, "failed to save day: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("validation failed")
	detailed := base.WithDetails(map[string]string{"score": "is invalid"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"score": "is invalid"}, detailed.Details)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusOf(fmt.Errorf("x: %w", Forbidden("locked"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(New("boom")))
}

func TestConstructors_CarryCode(t *testing.T) {
	assert.ErrorIs(t, NotFound("Tag not found."), ErrNotFound)
	assert.ErrorIs(t, AlreadyExists("Username already exists."), ErrAlreadyExists)
	assert.ErrorIs(t, Validationf("bad score %d", 101), ErrValidation)
	assert.Equal(t, "bad score 101", Validationf("bad score %d", 101).Message)
	assert.NotErrorIs(t, Unauthorized("x"), ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(InvalidCredentials("Invalid username or password.")))
}
