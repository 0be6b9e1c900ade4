package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationStatus int16

const (
	NotificationReceived        NotificationStatus = 1
	NotificationCompleted       NotificationStatus = 2
	NotificationRejected        NotificationStatus = 3
	NotificationCounterRejected NotificationStatus = 4
	NotificationCancelled       NotificationStatus = 5
)

func (s NotificationStatus) Valid() bool {
	return s >= NotificationReceived && s <= NotificationCancelled
}

func (s NotificationStatus) String() string {
	switch s {
	case NotificationReceived:
		return "RECEIVED"
	case NotificationCompleted:
		return "COMPLETED"
	case NotificationRejected:
		return "REJECTED"
	case NotificationCounterRejected:
		return "COUNTER_REJECTED"
	case NotificationCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID                string             `bun:"id,pk" json:"id"`
	ReceiverAddress   string             `bun:"receiver_address,notnull" json:"receiver_address"`
	OriginatorAddress string             `bun:"originator_address,notnull" json:"originator_address"`
	SwapID            int64              `bun:"swap_id,notnull" json:"swap_id"`
	TradeID           string             `bun:"trade_id,nullzero" json:"trade_id,omitempty"`
	OpenTradeID       int64              `bun:"open_trade_id,nullzero" json:"open_trade_id,omitempty"`
	SwapMode          SwapMode           `bun:"swap_mode,notnull" json:"swap_mode"`
	Status            NotificationStatus `bun:"status,notnull" json:"status"`
	IsRead            bool               `bun:"is_read,notnull,default:false" json:"read"`
	CreatedAt         time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
