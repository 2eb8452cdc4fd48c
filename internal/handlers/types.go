package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"acp_checkout_echo/internal/models"
)

// CreateSessionRequest is the body of POST /checkout/sessions. The
// idempotency key normally travels in the Idempotency-Key header; the body
// field is kept as a fallback for agent clients that cannot set headers.
type CreateSessionRequest struct {
	Items              []models.LineItem `json:"items"`
	Buyer              models.Buyer      `json:"buyer"`
	Currency           string            `json:"currency"`
	SharedPaymentToken string            `json:"shared_payment_token"`
	IdempotencyKey     string            `json:"idempotency_key"`
}

// UpdateSessionRequest is the body of POST /checkout/sessions/:id. Absent
// fields keep their stored values.
type UpdateSessionRequest struct {
	Items     []models.LineItem `json:"items"`
	Buyer     *models.Buyer     `json:"buyer"`
	Currency  *string           `json:"currency"`
	PromoCode *string           `json:"promo_code"`
}

const (
	minLineQuantity = 1
	maxLineQuantity = 100
)

var supportedCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
}

func validateItems(items []models.LineItem) error {
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "product_id is required on every item")
		}
		if item.Quantity < minLineQuantity || item.Quantity > maxLineQuantity {
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be between 1 and 100")
		}
	}
	return nil
}

func validateCurrency(currency string) error {
	if !supportedCurrencies[currency] {
		return echo.NewHTTPError(http.StatusBadRequest, "currency must be one of EUR, USD, GBP")
	}
	return nil
}
