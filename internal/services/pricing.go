package services

import (
	"errors"
	"math"
	"strings"

	"acp_checkout_echo/internal/models"
)

// ErrUnknownProduct is returned when a cart line references a product id
// that does not exist in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// PriceLookup resolves a product id to its unit price in major currency
// units. It returns ErrUnknownProduct for ids not in the catalog.
type PriceLookup func(productID string) (float64, error)

const (
	welcomePromoCode = "WELCOME10"

	taxRate = 0.22

	// Flat shipping applies to EUR carts below the free-shipping threshold.
	shippingFlatMinor          = 500
	freeShippingThresholdMinor = 5000
)

// ComputeTotals prices a cart. Unit prices are rounded to whole cents per
// line before summation, the promo discount is floored, and the grand total
// is clamped at zero. Pure function: same inputs, same totals.
func ComputeTotals(items []models.LineItem, currency, promoCode string, prices PriceLookup) (models.CartTotals, error) {
	var subtotal int64
	for _, item := range items {
		price, err := prices(item.ProductID)
		if err != nil {
			return models.CartTotals{}, err
		}
		unitMinor := int64(math.Round(price * 100))
		subtotal += unitMinor * int64(item.Quantity)
	}

	var discount int64
	if strings.EqualFold(promoCode, welcomePromoCode) {
		discount = subtotal / 10
	}

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}

	tax := int64(math.Round(float64(taxable) * taxRate))

	var shipping int64
	if strings.EqualFold(currency, "EUR") && subtotal < freeShippingThresholdMinor {
		shipping = shippingFlatMinor
	}

	grand := taxable + tax + shipping
	if grand < 0 {
		grand = 0
	}

	return models.CartTotals{
		SubtotalMinor:   subtotal,
		DiscountMinor:   discount,
		TaxMinor:        tax,
		ShippingMinor:   shipping,
		GrandTotalMinor: grand,
		Currency:        currency,
	}, nil
}
