package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwap_Role(t *testing.T) {
	tests := []struct {
		name string
		swap Swap
		want Role
	}{
		{
			name: "open original",
			swap: Swap{SwapMode: SwapModeOpen, OfferType: OfferTypePrimary, InitAddress: "a"},
			want: RoleOpenOriginal,
		},
		{
			name: "open offer",
			swap: Swap{SwapMode: SwapModeOpen, OfferType: OfferTypePrimary, OpenTradeID: 1, InitAddress: "a", AcceptAddress: "b"},
			want: RoleOpenOffer,
		},
		{
			name: "open counter",
			swap: Swap{SwapMode: SwapModeOpen, OfferType: OfferTypeCounter, OpenTradeID: 1, InitAddress: "b", AcceptAddress: "a"},
			want: RoleOpenCounter,
		},
		{
			name: "private without acceptor",
			swap: Swap{SwapMode: SwapModePrivate, OfferType: OfferTypePrimary, InitAddress: "a"},
			want: RolePrivate,
		},
		{
			name: "private counter",
			swap: Swap{SwapMode: SwapModePrivate, OfferType: OfferTypeCounter, InitAddress: "b", AcceptAddress: "a"},
			want: RolePrivateCounter,
		},
		{
			name: "grouped row without acceptor",
			swap: Swap{SwapMode: SwapModeOpen, OfferType: OfferTypePrimary, OpenTradeID: 1, InitAddress: "a"},
			want: RoleInvalid,
		},
		{
			name: "counter without acceptor",
			swap: Swap{SwapMode: SwapModePrivate, OfferType: OfferTypeCounter, InitAddress: "a"},
			want: RoleInvalid,
		},
		{
			name: "private row in a group",
			swap: Swap{SwapMode: SwapModePrivate, OfferType: OfferTypePrimary, OpenTradeID: 1, InitAddress: "a", AcceptAddress: "b"},
			want: RoleInvalid,
		},
		{
			name: "unknown mode",
			swap: Swap{OfferType: OfferTypePrimary, InitAddress: "a"},
			want: RoleInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.swap.Role())
		})
	}
}

func TestSwap_Parties(t *testing.T) {
	s := Swap{InitAddress: "a", AcceptAddress: "b"}
	assert.True(t, s.IsParty("a"))
	assert.True(t, s.IsParty("b"))
	assert.False(t, s.IsParty("c"))
	assert.False(t, s.IsParty(""))
	assert.Equal(t, "b", s.Counterparty("a"))
	assert.Equal(t, "a", s.Counterparty("b"))
}

func TestEnums_Valid(t *testing.T) {
	assert.False(t, SwapMode(0).Valid())
	assert.False(t, OfferType(3).Valid())
	assert.False(t, SwapStatus(0).Valid())
	assert.True(t, SwapCancelled.Terminal())
	assert.False(t, SwapPending.Terminal())
	assert.Equal(t, "COUNTER_REJECTED", NotificationCounterRejected.String())
}

func TestUser_ReplaceTag(t *testing.T) {
	u := User{Tags: []string{"new_user", "vip"}}
	assert.True(t, u.ReplaceTag("new_user", "trader"))
	assert.Equal(t, []string{"trader", "vip"}, u.Tags)
	assert.False(t, u.ReplaceTag("new_user", "trader"))

	u = User{Tags: []string{"new_user", "trader"}}
	assert.True(t, u.ReplaceTag("new_user", "trader"))
	assert.Equal(t, []string{"trader"}, u.Tags)
}
