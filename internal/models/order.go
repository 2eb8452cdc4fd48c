package models

import (
	"encoding/json"
	"time"
)

// Order is written exactly once, when a checkout session settles
// successfully. The unique index on SessionID backs the at-most-one-order
// guarantee at the storage level.
type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SessionID       string          `gorm:"type:varchar(64);uniqueIndex" json:"session_id"`
	PaymentIntentID string          `gorm:"type:varchar(100);index" json:"payment_intent_id"`
	BuyerEmail      string          `gorm:"type:varchar(255)" json:"buyer_email"`
	AmountMinor     int64           `json:"amount_minor"`
	Currency        string          `gorm:"type:varchar(3)" json:"currency"`
	Items           json.RawMessage `gorm:"type:jsonb" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}
