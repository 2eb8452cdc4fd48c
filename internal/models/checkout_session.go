package models

import (
	"encoding/json"
	"time"
)

type SessionStatus string

const (
	SessionStatusRequiresConfirmation SessionStatus = "requires_confirmation"
	// SessionStatusRequiresAction is reserved for step-up authentication
	// flows. No transition produces it today.
	SessionStatusRequiresAction SessionStatus = "requires_action"
	SessionStatusSucceeded      SessionStatus = "succeeded"
	SessionStatusFailed         SessionStatus = "failed"
)

// Terminal reports whether the session can no longer change.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusSucceeded || s == SessionStatusFailed
}

// CheckoutSession is the session row owned by the checkout service. Items
// and Totals hold the cart snapshot; rows are never physically deleted.
type CheckoutSession struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Status          SessionStatus   `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentIntentID string          `gorm:"type:varchar(100);index" json:"payment_intent_id"`
	BuyerEmail      string          `gorm:"type:varchar(255)" json:"buyer_email"`
	Buyer           json.RawMessage `gorm:"type:jsonb" json:"buyer,omitempty"`
	Currency        string          `gorm:"type:varchar(3)" json:"currency"`
	PromoCode       string          `gorm:"type:varchar(50)" json:"promo_code,omitempty"`
	Items           json.RawMessage `gorm:"type:jsonb" json:"items"`
	Totals          json.RawMessage `gorm:"type:jsonb" json:"totals"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
