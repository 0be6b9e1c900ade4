package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapbook/swapbook/backend/models"
	"github.com/swapbook/swapbook/swapbook/swaps"
)

func TestSendEngineError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "store fault hides its cause",
			err:     fmt.Errorf("insert swap: %w", errors.New("connection reset")),
			status:  http.StatusInternalServerError,
			code:    "STORE_ERROR",
			message: "Internal Server Error",
		},
		{
			name:    "integrity fault hides its detail",
			err:     &swaps.Error{Op: swaps.MsgAcceptOpenSwap, Kind: swaps.ErrIntegrity, Detail: "group 7 has 2 original candidates"},
			status:  http.StatusInternalServerError,
			code:    "INTEGRITY_ERROR",
			message: "Internal Server Error",
		},
		{
			name:    "client errors keep their message",
			err:     &swaps.Error{Op: swaps.MsgAcceptPrivateSwap, Kind: swaps.ErrValidation, Detail: "swap 3 can only be accepted by bob"},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: "accept_private_swap: validation failed: swap 3 can only be accepted by bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return SendEngineError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var out models.APIResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, out.Success)
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.code, out.Error.Code)
			assert.Equal(t, tt.message, out.Error.Message)
		})
	}
}
