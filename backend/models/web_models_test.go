package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_String(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"object", `{"metadata":{"b":1,"a":[true]}}`, `{"a":[true],"b":1}`},
		{"json string", `{"metadata":"{\"a\":1}"}`, `{"a":1}`},
		{"large integer", `{"metadata":{"assets":[{"tokenId":123456789012345678901}]}}`, `{"assets":[{"tokenId":123456789012345678901}]}`},
		{"plain string", `{"metadata":"opaque"}`, "opaque"},
		{"null", `{"metadata":null}`, ""},
		{"absent", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body CreateSwapBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))
			assert.Equal(t, tt.want, body.Metadata.String())
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	p := NewPaginationInfo(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPaginationInfo(1, 0, 0)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
