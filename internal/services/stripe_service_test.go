package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

func newStubStripeService(t *testing.T, handler http.HandlerFunc) *StripeService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(server.URL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	api := &client.API{}
	api.Init("sk_test_stub", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	tokenMethods := map[string]string{
		"test_spt_visa": "pm_card_visa",
		"test_spt_3ds2": "pm_card_authenticationRequired",
	}
	return NewStripeServiceWithClient(api, tokenMethods, "pm_card_visa")
}

func TestCreateIntentWithSharedPaymentToken(t *testing.T) {
	var form map[string][]string
	svc := newStubStripeService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_stub_1","object":"payment_intent","status":"requires_confirmation"}`))
	})

	result, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountMinor:        29278,
		Currency:           "EUR",
		BuyerEmail:         "agent@example.com",
		SharedPaymentToken: "test_spt_visa",
		Metadata:           map[string]string{"buyer_email": "agent@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_stub_1", result.ID)
	assert.Equal(t, "requires_confirmation", result.Status)

	assert.Equal(t, []string{"29278"}, form["amount"])
	assert.Equal(t, []string{"eur"}, form["currency"])
	assert.Equal(t, []string{"false"}, form["confirm"])
	assert.Equal(t, []string{"card"}, form["payment_method_types[0]"])
	assert.Equal(t, []string{"pm_card_visa"}, form["payment_method"], "known token resolves to a stored method")
	assert.Equal(t, []string{"agent@example.com"}, form["receipt_email"])
	assert.Equal(t, []string{"agent@example.com"}, form["metadata[buyer_email]"])
}

func TestCreateIntentWithoutTokenAttachesNoMethod(t *testing.T) {
	var form map[string][]string
	svc := newStubStripeService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_stub_2","object":"payment_intent","status":"requires_payment_method"}`))
	})

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountMinor: 1000,
		Currency:    "EUR",
		BuyerEmail:  "agent@example.com",
	})
	require.NoError(t, err)
	assert.NotContains(t, form, "payment_method")
}

func TestConfirmIntentAttachesFallbackWhenNoMethod(t *testing.T) {
	var confirmForm map[string][]string
	svc := newStubStripeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_stub_3":
			w.Write([]byte(`{"id":"pi_stub_3","object":"payment_intent","status":"requires_payment_method"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents/pi_stub_3/confirm":
			require.NoError(t, r.ParseForm())
			confirmForm = r.PostForm
			w.Write([]byte(`{"id":"pi_stub_3","object":"payment_intent","status":"succeeded"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := svc.ConfirmIntent(context.Background(), "pi_stub_3")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", status)
	assert.Equal(t, []string{"pm_card_visa"}, confirmForm["payment_method"], "fallback card attaches when nothing was supplied")
}

func TestConfirmIntentKeepsAttachedMethod(t *testing.T) {
	var confirmForm map[string][]string
	svc := newStubStripeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_stub_4":
			w.Write([]byte(`{"id":"pi_stub_4","object":"payment_intent","status":"requires_confirmation","payment_method":"pm_card_visa"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents/pi_stub_4/confirm":
			require.NoError(t, r.ParseForm())
			confirmForm = r.PostForm
			w.Write([]byte(`{"id":"pi_stub_4","object":"payment_intent","status":"succeeded"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := svc.ConfirmIntent(context.Background(), "pi_stub_4")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", status)
	assert.NotContains(t, confirmForm, "payment_method", "pre-attached methods are left alone")
}

func TestCreateIntentGatewayError(t *testing.T) {
	svc := newStubStripeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	})

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountMinor: 1000,
		Currency:    "EUR",
		BuyerEmail:  "agent@example.com",
	})
	require.ErrorIs(t, err, ErrPaymentGateway)
}
