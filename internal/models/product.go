package models

import "time"

// Product is a catalog row. Prices are stored in major currency units;
// minor-unit conversion happens in the pricing service.
type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"product_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string    `gorm:"type:varchar(3)" json:"currency"`
	Image       string    `gorm:"type:text" json:"image,omitempty"`
	Available   bool      `gorm:"default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
