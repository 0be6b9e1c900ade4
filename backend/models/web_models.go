package models

import (
	"encoding/json"
	"strings"

	"github.com/swapbook/swapbook/swapbook/query"
	"github.com/swapbook/swapbook/swapbook/swaps"
)

// Payload accepts metadata either as a JSON value or as a JSON string and
// hands the engine the opaque string form.
type Payload json.RawMessage

func (p *Payload) UnmarshalJSON(b []byte) error {
	*p = append((*p)[:0], b...)
	return nil
}

func (p Payload) String() string {
	raw := strings.TrimSpace(string(p))
	if raw == "" || raw == "null" {
		return ""
	}
	encoded, err := query.Encode(query.Decode(raw))
	if err != nil {
		return raw
	}
	return encoded
}

// CreateSwapBody is the body of both create routes.
type CreateSwapBody struct {
	InitAddress     string  `json:"init_address"`
	AcceptAddress   string  `json:"accept_address"`
	InitSign        string  `json:"init_sign"`
	Metadata        Payload `json:"metadata"`
	SwapPreferences Payload `json:"swap_preferences"`
	TradingChain    string  `json:"trading_chain"`
	TradeID         string  `json:"trade_id"`
}

func (b *CreateSwapBody) ToRequest() swaps.CreateRequest {
	return swaps.CreateRequest{
		InitAddress:     b.InitAddress,
		AcceptAddress:   b.AcceptAddress,
		InitSign:        b.InitSign,
		Metadata:        b.Metadata.String(),
		SwapPreferences: b.SwapPreferences.String(),
		TradingChain:    b.TradingChain,
		TradeID:         b.TradeID,
	}
}

// ProposeBody is an offer against an open-market swap. The group id comes
// from the route.
type ProposeBody struct {
	AcceptAddress string  `json:"accept_address"`
	InitAddress   string  `json:"init_address"`
	InitSign      string  `json:"init_sign"`
	Metadata      Payload `json:"metadata"`
	TradeID       string  `json:"trade_id"`
	TradingChain  string  `json:"trading_chain"`
}

func (b *ProposeBody) ToRequest(openTradeID int64) swaps.ProposeRequest {
	return swaps.ProposeRequest{
		OpenTradeID:   openTradeID,
		AcceptAddress: b.AcceptAddress,
		InitAddress:   b.InitAddress,
		InitSign:      b.InitSign,
		Metadata:      b.Metadata.String(),
		TradeID:       b.TradeID,
		TradingChain:  b.TradingChain,
	}
}

type CounterBody struct {
	Address      string  `json:"address"`
	Sign         string  `json:"sign"`
	Metadata     Payload `json:"metadata"`
	TradeID      string  `json:"trade_id"`
	TradingChain string  `json:"trading_chain"`
}

func (b *CounterBody) ToRequest(id int64) swaps.CounterRequest {
	return swaps.CounterRequest{
		ID:           id,
		Address:      b.Address,
		Sign:         b.Sign,
		Metadata:     b.Metadata.String(),
		TradeID:      b.TradeID,
		TradingChain: b.TradingChain,
	}
}

type AcceptBody struct {
	AcceptAddress string `json:"accept_address"`
	AcceptSign    string `json:"accept_sign"`
	Tx            string `json:"tx"`
	Notes         string `json:"notes"`
	Timestamp     string `json:"timestamp"`
}

func (b *AcceptBody) ToRequest(id int64) swaps.AcceptRequest {
	return swaps.AcceptRequest{
		ID:            id,
		AcceptAddress: b.AcceptAddress,
		AcceptSign:    b.AcceptSign,
		Tx:            b.Tx,
		Notes:         b.Notes,
		Timestamp:     b.Timestamp,
	}
}

// SignBody carries the signature required by reject and the cancel routes.
type SignBody struct {
	SignMessage string `json:"sign_message"`
}

type SubnameBody struct {
	Subname string `json:"subname"`
}

// ValidationError represents a field-level validation failure
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}
