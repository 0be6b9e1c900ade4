package swaps

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

func TestErrorMapping(t *testing.T) {
	storeFault := errors.New("connection reset")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", newError("op", ErrValidation, "bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid state", newError("op", ErrInvalidState, "gone"), http.StatusBadRequest, "INVALID_STATE"},
		{"not found", lookupError("op", &repositories.NotFoundError{Entity: "swap", ID: 7}), http.StatusNotFound, "NOT_FOUND"},
		{"integrity", newError("op", ErrIntegrity, "two originals"), http.StatusInternalServerError, "INTEGRITY_ERROR"},
		{"store fault", lookupError("op", storeFault), http.StatusInternalServerError, "STORE_ERROR"},
		{"wrapped", fmt.Errorf("handler: %w", newError("op", ErrInvalidState, "gone")), http.StatusBadRequest, "INVALID_STATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := &repositories.NotFoundError{Entity: "swap", ID: 3}
	err := lookupError(MsgAcceptOpenSwap, cause)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, repositories.IsNotFound(err))
	assert.Contains(t, err.Error(), MsgAcceptOpenSwap)
}
