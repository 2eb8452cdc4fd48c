package config

import (
	"os"
	"strings"
)

// Config collects everything the server reads from the environment. It is
// built once at startup and passed explicitly; no package keeps an ambient
// copy.
type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string
	APIKey              string
	StripeSecretKey     string
	StripeWebhookSecret string

	// SharedTokenMethods maps agent-supplied shared payment tokens to
	// stored gateway payment methods. Overridable per environment via
	// SHARED_PAYMENT_TOKENS ("token=pm_id,token=pm_id").
	SharedTokenMethods map[string]string

	// FallbackPaymentMethod is attached at confirm time when no token was
	// supplied at creation, so the demo happy path is deterministic.
	FallbackPaymentMethod string

	ProductFeedPath string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		APIKey:                os.Getenv("API_KEY"),
		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SharedTokenMethods:    parseTokenMethods(os.Getenv("SHARED_PAYMENT_TOKENS")),
		FallbackPaymentMethod: getEnv("FALLBACK_PAYMENT_METHOD", "pm_card_visa"),
		ProductFeedPath:       getEnv("PRODUCT_FEED_PATH", "data/product_feed.json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseTokenMethods(raw string) map[string]string {
	if raw == "" {
		// Demo tokens resolving to Stripe test payment methods.
		return map[string]string{
			"test_spt_visa": "pm_card_visa",
			"test_spt_3ds2": "pm_card_authenticationRequired",
		}
	}
	methods := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, method, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && token != "" && method != "" {
			methods[token] = method
		}
	}
	return methods
}
