package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SwapMode int16

const (
	SwapModeOpen    SwapMode = 1
	SwapModePrivate SwapMode = 2
)

func (m SwapMode) Valid() bool {
	return m == SwapModeOpen || m == SwapModePrivate
}

func (m SwapMode) String() string {
	switch m {
	case SwapModeOpen:
		return "OPEN"
	case SwapModePrivate:
		return "PRIVATE"
	}
	return "UNKNOWN"
}

type OfferType int16

const (
	OfferTypePrimary OfferType = 1
	OfferTypeCounter OfferType = 2
)

func (o OfferType) Valid() bool {
	return o == OfferTypePrimary || o == OfferTypeCounter
}

func (o OfferType) String() string {
	switch o {
	case OfferTypePrimary:
		return "PRIMARY"
	case OfferTypeCounter:
		return "COUNTER"
	}
	return "UNKNOWN"
}

type SwapStatus int16

const (
	SwapPending   SwapStatus = 1
	SwapCompleted SwapStatus = 2
	SwapDeclined  SwapStatus = 3
	SwapCancelled SwapStatus = 4
)

func (s SwapStatus) Valid() bool {
	return s >= SwapPending && s <= SwapCancelled
}

// Terminal reports whether no further transition may leave s.
func (s SwapStatus) Terminal() bool {
	return s == SwapCompleted || s == SwapDeclined || s == SwapCancelled
}

func (s SwapStatus) String() string {
	switch s {
	case SwapPending:
		return "PENDING"
	case SwapCompleted:
		return "COMPLETED"
	case SwapDeclined:
		return "DECLINED"
	case SwapCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

type Role string

const (
	RoleOpenOriginal   Role = "open_original"
	RoleOpenOffer      Role = "open_offer"
	RoleOpenCounter    Role = "open_counter"
	RolePrivate        Role = "private"
	RolePrivateCounter Role = "private_counter"
	RoleInvalid        Role = "invalid"
)

// Negotiable reports whether a row in this role can be accepted, rejected or countered.
func (r Role) Negotiable() bool {
	switch r {
	case RoleOpenOffer, RoleOpenCounter, RolePrivate, RolePrivateCounter:
		return true
	}
	return false
}

type Swap struct {
	bun.BaseModel `bun:"table:swaps,alias:s"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id"`
	TradeID         string     `bun:"trade_id,nullzero" json:"trade_id,omitempty"`
	OpenTradeID     int64      `bun:"open_trade_id,nullzero" json:"open_trade_id,omitempty"`
	SwapMode        SwapMode   `bun:"swap_mode,notnull" json:"swap_mode"`
	OfferType       OfferType  `bun:"offer_type,notnull" json:"offer_type"`
	Status          SwapStatus `bun:"status,notnull" json:"status"`
	InitAddress     string     `bun:"init_address,notnull" json:"init_address"`
	AcceptAddress   string     `bun:"accept_address,nullzero" json:"accept_address,omitempty"`
	InitSign        string     `bun:"init_sign" json:"init_sign,omitempty"`
	AcceptSign      string     `bun:"accept_sign" json:"accept_sign,omitempty"`
	Metadata        string     `bun:"metadata" json:"metadata,omitempty"`
	SwapPreferences string     `bun:"swap_preferences" json:"swap_preferences,omitempty"`
	TradingChain    string     `bun:"trading_chain" json:"trading_chain,omitempty"`
	Tx              string     `bun:"tx" json:"tx,omitempty"`
	Notes           string     `bun:"notes" json:"notes,omitempty"`
	Timestamp       string     `bun:"timestamp" json:"timestamp,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Role derives the row's position in the negotiation graph. Every transition
// branches on this instead of re-reading the raw columns.
func (s *Swap) Role() Role {
	grouped := s.OpenTradeID != 0
	hasAccept := s.AcceptAddress != ""

	switch s.SwapMode {
	case SwapModeOpen:
		switch {
		case !grouped && !hasAccept && s.OfferType == OfferTypePrimary:
			return RoleOpenOriginal
		case grouped && hasAccept && s.OfferType == OfferTypePrimary:
			return RoleOpenOffer
		case grouped && hasAccept && s.OfferType == OfferTypeCounter:
			return RoleOpenCounter
		}
	case SwapModePrivate:
		if grouped {
			return RoleInvalid
		}
		switch {
		case s.OfferType == OfferTypePrimary:
			return RolePrivate
		case s.OfferType == OfferTypeCounter && hasAccept:
			return RolePrivateCounter
		}
	}
	return RoleInvalid
}

// IsParty reports whether address is the initiator or acceptor of the row.
func (s *Swap) IsParty(address string) bool {
	return address != "" && (address == s.InitAddress || address == s.AcceptAddress)
}

// Counterparty returns the other side of the row relative to address.
func (s *Swap) Counterparty(address string) string {
	if address == s.InitAddress {
		return s.AcceptAddress
	}
	return s.InitAddress
}
