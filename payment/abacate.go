// Package payment wraps the AbacatePay REST API: checkout creation plus
// webhook signature verification. Actual money movement happens on the
// provider side; this package only speaks its wire contract.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.abacatepay.com"

// Client is an AbacatePay API client. Construct it once at boot and inject
// it where needed; there is no package-level instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient() *Client {
	baseURL := os.Getenv("ABACATEPAY_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("ABACATEPAY_API_KEY"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type CheckoutInput struct {
	OrganizationID string
	PlanCode       string
	BillingCycle   string
	AmountCents    int
	Description    string
	CompletionURL  string
}

type Checkout struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

type billingProduct struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
}

type createBillingRequest struct {
	Frequency     string            `json:"frequency"`
	Methods       []string          `json:"methods"`
	Products      []billingProduct  `json:"products"`
	ReturnURL     string            `json:"returnUrl,omitempty"`
	CompletionURL string            `json:"completionUrl,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type createBillingResponse struct {
	Data struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		ExpiresAt string `json:"expiresAt"`
	} `json:"data"`
	Error string `json:"error"`
}

// CreateBilling creates a one-time billing on AbacatePay and returns the
// hosted checkout. The returned URL is NOT yet validated against the
// trusted-domain allowlist; callers must run IsTrustedCheckoutURL before
// surfacing it to a user.
func (c *Client) CreateBilling(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	reqBody := createBillingRequest{
		Frequency:     "ONE_TIME",
		Methods:       []string{"PIX"},
		CompletionURL: in.CompletionURL,
		Products: []billingProduct{
			{
				ExternalID:  fmt.Sprintf("%s:%s:%s", in.OrganizationID, in.PlanCode, in.BillingCycle),
				Name:        in.Description,
				Quantity:    1,
				Price:       in.AmountCents,
			},
		},
		Metadata: map[string]string{
			"organizationId": in.OrganizationID,
			"planCode":       in.PlanCode,
			"billingCycle":   in.BillingCycle,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("abacatepay: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/billing/create", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("abacatepay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("abacatepay: create billing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("abacatepay: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("abacatepay: create billing returned status %d", resp.StatusCode)
	}

	var parsed createBillingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("abacatepay: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("abacatepay: %s", parsed.Error)
	}
	if parsed.Data.ID == "" || parsed.Data.URL == "" {
		return nil, fmt.Errorf("abacatepay: response missing checkout id or url")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if parsed.Data.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, parsed.Data.ExpiresAt); err == nil {
			expiresAt = t
		}
	}

	return &Checkout{
		ID:        parsed.Data.ID,
		URL:       parsed.Data.URL,
		ExpiresAt: expiresAt,
	}, nil
}

// IsTrustedCheckoutURL reports whether a checkout URL points at AbacatePay
// over https. A compromised or misconfigured provider response must never
// turn into a redirect to an arbitrary absolute URL.
func IsTrustedCheckoutURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "abacatepay.com" || strings.HasSuffix(host, ".abacatepay.com")
}
