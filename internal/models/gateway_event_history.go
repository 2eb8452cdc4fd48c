package models

import (
	"encoding/json"
	"time"
)

// GatewayEventHistory records every webhook event accepted from the payment
// gateway, raw payload included, for later audit.
type GatewayEventHistory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   string          `gorm:"type:varchar(100);index" json:"event_id"`
	EventType string          `gorm:"type:varchar(100)" json:"event_type"`
	Payload   json.RawMessage `gorm:"type:jsonb" json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
