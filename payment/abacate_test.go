package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTrustedCheckoutURL(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		trusted bool
	}{
		{"apex domain", "https://abacatepay.com/pay/bill_123", true},
		{"pay subdomain", "https://pay.abacatepay.com/bill_123", true},
		{"nested subdomain", "https://checkout.pay.abacatepay.com/bill_123", true},
		{"plain http", "http://abacatepay.com/pay/bill_123", false},
		{"other host", "https://evil.example/pay", false},
		{"suffix lookalike", "https://notabacatepay.com/pay", false},
		{"lookalike subdomain", "https://abacatepay.com.evil.example/pay", false},
		{"relative path", "/pay/bill_123", false},
		{"empty", "", false},
		{"garbage", "://nope", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.trusted, IsTrustedCheckoutURL(tc.url))
		})
	}
}

func TestCreateBilling_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/billing/create", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		assert.Equal(t, "ONE_TIME", req["frequency"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"data": {
				"id": "bill_123",
				"url": "https://pay.abacatepay.com/bill_123",
				"expiresAt": "2026-09-01T12:00:00Z"
			}
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "test-key")

	checkout, err := client.CreateBilling(context.Background(), CheckoutInput{
		OrganizationID: "org-uuid",
		PlanCode:       "STARTER_50",
		BillingCycle:   "MONTHLY",
		AmountCents:    5000,
		Description:    "Starter plan (MONTHLY)",
	})

	assert.NoError(t, err)
	assert.Equal(t, "bill_123", checkout.ID)
	assert.Equal(t, "https://pay.abacatepay.com/bill_123", checkout.URL)
	assert.Equal(t, 2026, checkout.ExpiresAt.Year())
}

func TestCreateBilling_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": {}, "error": "invalid api key"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "bad-key")

	_, err := client.CreateBilling(context.Background(), CheckoutInput{AmountCents: 5000})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestCreateBilling_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "test-key")

	_, err := client.CreateBilling(context.Background(), CheckoutInput{AmountCents: 5000})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCreateBilling_MissingCheckoutURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"id": "bill_123"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "test-key")

	_, err := client.CreateBilling(context.Background(), CheckoutInput{AmountCents: 5000})

	assert.Error(t, err)
}
