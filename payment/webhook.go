package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// WebhookEvent is the decoded body of an inbound provider webhook.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	CheckoutID string `json:"checkoutId"`
	Status     string `json:"status"`
}

const (
	EventBillingPaid   = "billing.paid"
	EventBillingFailed = "billing.failed"
)

// VerifySignature checks the hex-encoded HMAC-SHA256 of the raw request body
// against the shared webhook secret. The comparison is constant time; a
// naive string equality would leak the digest through timing.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}

	return hmac.Equal(expected, got)
}

// Sign computes the webhook signature for a body. Used by the simulated
// payment path and by tests.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
