package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
		is     error
	}{
		{"not found", NotFound("order"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"forbidden", Forbidden(""), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"bad request", BadRequest("nope"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"validation", ValidationError("bad qty"), "VALIDATION_ERROR", http.StatusUnprocessableEntity, ErrBadRequest},
		{"conflict", Conflict("busy"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"invalid state", InvalidState("not delivered"), "INVALID_STATE", http.StatusUnprocessableEntity, ErrInvalidState},
		{"window expired", WindowExpired(""), "WINDOW_EXPIRED", http.StatusUnprocessableEntity, ErrWindowExpired},
		{"promotion excluded", PromotionExcluded(""), "PROMOTION_EXCLUDED", http.StatusUnprocessableEntity, ErrPromotionExcluded},
		{"internal", Internal("boom", nil), "INTERNAL_ERROR", http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
			if tt.is != nil {
				assert.True(t, errors.Is(tt.err, tt.is))
			}
		})
	}
}

func TestGetStatusCode_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("customer"))
	assert.Equal(t, http.StatusNotFound, GetStatusCode(wrapped))

	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
	assert.Equal(t, http.StatusUnprocessableEntity, GetStatusCode(ErrWindowExpired))
}

func TestAppError_ToResponse(t *testing.T) {
	resp := Conflict("return request is refunded").ToResponse()
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, "return request is refunded", resp.Error.Message)
}
