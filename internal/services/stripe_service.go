package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// ErrPaymentGateway wraps every failure coming back from the payment
// processor. Gateway failures never touch local session state.
var ErrPaymentGateway = errors.New("payment gateway error")

// CreateIntentInput carries everything the gateway needs to open a payment
// intent for a priced cart.
type CreateIntentInput struct {
	AmountMinor        int64
	Currency           string
	BuyerEmail         string
	SharedPaymentToken string
	Metadata           map[string]string
}

// IntentResult is the gateway's view of a created intent.
type IntentResult struct {
	ID     string
	Status string
}

// PaymentGateway is the contract the checkout service orchestrates against.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (IntentResult, error)
	ConfirmIntent(ctx context.Context, intentID string) (string, error)
}

// StripeService drives Stripe PaymentIntents. Shared payment tokens resolve
// to stored payment methods through an injectable map so environments can
// swap the table without a rebuild.
type StripeService struct {
	client         *client.API
	tokenMethods   map[string]string
	fallbackMethod string
}

// NewStripeService builds the gateway adapter against the live Stripe API.
func NewStripeService(secretKey string, tokenMethods map[string]string, fallbackMethod string) *StripeService {
	return NewStripeServiceWithClient(client.New(secretKey, nil), tokenMethods, fallbackMethod)
}

// NewStripeServiceWithClient accepts a preconfigured API client, which lets
// tests point the adapter at a stub backend.
func NewStripeServiceWithClient(api *client.API, tokenMethods map[string]string, fallbackMethod string) *StripeService {
	return &StripeService{
		client:         api,
		tokenMethods:   tokenMethods,
		fallbackMethod: fallbackMethod,
	}
}

// resolvePaymentMethod maps a shared payment token to a stored payment
// method id. Unknown or empty tokens resolve to nothing; the intent is then
// created without a pre-attached method.
func (s *StripeService) resolvePaymentMethod(sharedPaymentToken string) string {
	if sharedPaymentToken == "" {
		return ""
	}
	return s.tokenMethods[sharedPaymentToken]
}

// CreateIntent opens an unconfirmed intent restricted to direct card
// payments; this service exposes no return-URL flow, so redirect-based
// methods are excluded.
func (s *StripeService) CreateIntent(ctx context.Context, in CreateIntentInput) (IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(in.AmountMinor),
		Currency:           stripe.String(strings.ToLower(in.Currency)),
		ReceiptEmail:       stripe.String(in.BuyerEmail),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
		Confirm:            stripe.Bool(false),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	for key, value := range in.Metadata {
		params.AddMetadata(key, value)
	}
	if pm := s.resolvePaymentMethod(in.SharedPaymentToken); pm != "" {
		params.PaymentMethod = stripe.String(pm)
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return IntentResult{}, fmt.Errorf("%w: create intent: %v", ErrPaymentGateway, err)
	}

	return IntentResult{ID: pi.ID, Status: string(pi.Status)}, nil
}

// ConfirmIntent confirms a previously created intent. When no payment
// method was attached at creation (no shared token supplied), the fallback
// demo card is attached first so the happy path stays deterministic.
func (s *StripeService) ConfirmIntent(ctx context.Context, intentID string) (string, error) {
	pi, err := s.client.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return "", fmt.Errorf("%w: fetch intent: %v", ErrPaymentGateway, err)
	}

	confirmParams := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	if pi.PaymentMethod == nil || pi.PaymentMethod.ID == "" {
		confirmParams.PaymentMethod = stripe.String(s.fallbackMethod)
	}

	pi, err = s.client.PaymentIntents.Confirm(intentID, confirmParams)
	if err != nil {
		return "", fmt.Errorf("%w: confirm intent: %v", ErrPaymentGateway, err)
	}

	return string(pi.Status), nil
}

var _ PaymentGateway = (*StripeService)(nil)
