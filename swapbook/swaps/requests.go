package swaps

import (
	"strings"

	"github.com/swapbook/swapbook/swapbook/database/models"
)

type CreateRequest struct {
	Mode            models.SwapMode `json:"swap_mode" yaml:"swap_mode"`
	InitAddress     string          `json:"init_address" yaml:"init_address"`
	AcceptAddress   string          `json:"accept_address" yaml:"accept_address"`
	InitSign        string          `json:"init_sign" yaml:"init_sign"`
	Metadata        string          `json:"metadata" yaml:"metadata"`
	SwapPreferences string          `json:"swap_preferences" yaml:"swap_preferences"`
	TradingChain    string          `json:"trading_chain" yaml:"trading_chain"`
	TradeID         string          `json:"trade_id" yaml:"trade_id"`
}

func (r *CreateRequest) validate(op string) error {
	r.InitAddress = strings.TrimSpace(r.InitAddress)
	r.AcceptAddress = strings.TrimSpace(r.AcceptAddress)

	if !r.Mode.Valid() {
		return newError(op, ErrValidation, "unrecognized swap_mode %d", r.Mode)
	}
	if r.InitAddress == "" {
		return newError(op, ErrValidation, "init_address is required")
	}
	if r.InitSign == "" {
		return newError(op, ErrValidation, "init_sign is required")
	}
	if r.Metadata == "" {
		return newError(op, ErrValidation, "metadata is required")
	}
	switch r.Mode {
	case models.SwapModeOpen:
		if r.AcceptAddress != "" {
			return newError(op, ErrValidation, "open swaps cannot name an accept_address")
		}
	case models.SwapModePrivate:
		if r.AcceptAddress == r.InitAddress {
			return newError(op, ErrValidation, "cannot swap with yourself")
		}
	}
	return nil
}

type ProposeRequest struct {
	OpenTradeID   int64  `json:"open_trade_id" yaml:"open_trade_id"`
	AcceptAddress string `json:"accept_address" yaml:"accept_address"`
	InitAddress   string `json:"init_address" yaml:"init_address"`
	InitSign      string `json:"init_sign" yaml:"init_sign"`
	Metadata      string `json:"metadata" yaml:"metadata"`
	TradeID       string `json:"trade_id" yaml:"trade_id"`
	TradingChain  string `json:"trading_chain" yaml:"trading_chain"`
}

func (r *ProposeRequest) validate(op string) error {
	r.InitAddress = strings.TrimSpace(r.InitAddress)
	r.AcceptAddress = strings.TrimSpace(r.AcceptAddress)

	switch {
	case r.OpenTradeID <= 0:
		return newError(op, ErrValidation, "open_trade_id is required")
	case r.AcceptAddress == "":
		return newError(op, ErrValidation, "accept_address is required")
	case r.InitAddress == "":
		return newError(op, ErrValidation, "init_address is required")
	case r.AcceptAddress == r.InitAddress:
		return newError(op, ErrValidation, "cannot propose on your own swap")
	case r.InitSign == "":
		return newError(op, ErrValidation, "init_sign is required")
	case r.Metadata == "":
		return newError(op, ErrValidation, "metadata is required")
	}
	return nil
}

type CounterRequest struct {
	ID           int64  `json:"id" yaml:"id"`
	Address      string `json:"address" yaml:"address"`
	Sign         string `json:"sign" yaml:"sign"`
	Metadata     string `json:"metadata" yaml:"metadata"`
	TradeID      string `json:"trade_id" yaml:"trade_id"`
	TradingChain string `json:"trading_chain" yaml:"trading_chain"`
}

func (r *CounterRequest) validate(op string) error {
	r.Address = strings.TrimSpace(r.Address)

	switch {
	case r.ID <= 0:
		return newError(op, ErrValidation, "id is required")
	case r.Address == "":
		return newError(op, ErrValidation, "address is required")
	case r.Sign == "":
		return newError(op, ErrValidation, "sign is required")
	case r.Metadata == "":
		return newError(op, ErrValidation, "metadata is required")
	}
	return nil
}

type AcceptRequest struct {
	ID            int64  `json:"id" yaml:"id"`
	AcceptAddress string `json:"accept_address" yaml:"accept_address"`
	AcceptSign    string `json:"accept_sign" yaml:"accept_sign"`
	Tx            string `json:"tx" yaml:"tx"`
	Notes         string `json:"notes" yaml:"notes"`
	Timestamp     string `json:"timestamp" yaml:"timestamp"`
}

func (r *AcceptRequest) validate(op string) error {
	r.AcceptAddress = strings.TrimSpace(r.AcceptAddress)

	switch {
	case r.ID <= 0:
		return newError(op, ErrValidation, "id is required")
	case r.AcceptAddress == "":
		return newError(op, ErrValidation, "accept_address is required")
	case r.AcceptSign == "":
		return newError(op, ErrValidation, "accept_sign is required")
	}
	return nil
}

type RejectRequest struct {
	ID          int64  `json:"id" yaml:"id"`
	SignMessage string `json:"sign_message" yaml:"sign_message"`
}

func (r *RejectRequest) validate(op string) error {
	switch {
	case r.ID <= 0:
		return newError(op, ErrValidation, "id is required")
	case r.SignMessage == "":
		return newError(op, ErrValidation, "sign_message is required")
	}
	return nil
}

type CancelOpenRequest struct {
	OpenTradeID int64  `json:"open_trade_id" yaml:"open_trade_id"`
	SignMessage string `json:"sign_message" yaml:"sign_message"`
}

func (r *CancelOpenRequest) validate(op string) error {
	switch {
	case r.OpenTradeID <= 0:
		return newError(op, ErrValidation, "open_trade_id is required")
	case r.SignMessage == "":
		return newError(op, ErrValidation, "sign_message is required")
	}
	return nil
}

type CancelPrivateRequest struct {
	TradeID     string `json:"trade_id" yaml:"trade_id"`
	SignMessage string `json:"sign_message" yaml:"sign_message"`
}

func (r *CancelPrivateRequest) validate(op string) error {
	r.TradeID = strings.TrimSpace(r.TradeID)

	switch {
	case r.TradeID == "":
		return newError(op, ErrValidation, "trade_id is required")
	case r.SignMessage == "":
		return newError(op, ErrValidation, "sign_message is required")
	}
	return nil
}
