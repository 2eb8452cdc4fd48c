package models

// LineItem is a single cart line. Immutable once embedded in a persisted
// cart snapshot.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartTotals holds every amount in integer minor units (cents).
type CartTotals struct {
	SubtotalMinor   int64  `json:"subtotal_minor"`
	DiscountMinor   int64  `json:"discount_minor"`
	TaxMinor        int64  `json:"tax_minor"`
	ShippingMinor   int64  `json:"shipping_minor"`
	GrandTotalMinor int64  `json:"grand_total_minor"`
	Currency        string `json:"currency"`
}

// Cart is the snapshot returned on every session view. Totals are always
// recomputed from the items, never patched incrementally.
type Cart struct {
	Items  []LineItem `json:"items"`
	Totals CartTotals `json:"totals"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Region     string `json:"region,omitempty"`
}

type Buyer struct {
	Email   string   `json:"email"`
	Name    string   `json:"name,omitempty"`
	Address *Address `json:"address,omitempty"`
}
