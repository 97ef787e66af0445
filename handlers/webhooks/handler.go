package webhooks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// Handler receives payment provider webhooks. The raw body is verified
// with HMAC-SHA256 before anything is decoded; a bad signature is logged
// and rejected with no state mutation.
type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

// @Summary Payment provider webhook
// @Description Inbound AbacatePay webhook, authenticated by HMAC signature over the raw body
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "message"
// @Failure 400 {object} map[string]string "error: Bad signature or payload"
// @Router /webhooks/payment [post]
func (h *Handler) PaymentWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not read the request body"})
		return
	}

	secret := os.Getenv("ABACATEPAY_WEBHOOK_SECRET")
	if secret == "" {
		utils.LogError(nil, "Webhook secret is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if !payment.VerifySignature(body, signature, secret) {
		utils.LogError(billing.ErrPaymentVerificationFailed, "Rejected webhook with bad signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not parse the webhook payload"})
		return
	}

	if event.Data.CheckoutID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing checkoutId"})
		return
	}

	switch event.Event {
	case payment.EventBillingPaid:
		h.handlePaid(c, event.Data.CheckoutID)
	case payment.EventBillingFailed:
		h.handleFailed(c, event.Data.CheckoutID)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
	}
}

func (h *Handler) handlePaid(c *gin.Context, checkoutID string) {
	err := h.svc.ConfirmPayment(checkoutID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Payment applied"})
	case errors.Is(err, billing.ErrCheckoutNotFound):
		// Unknown checkout: acknowledge so the provider stops retrying.
		utils.LogError(err, "Webhook for unknown checkout "+checkoutID)
		c.JSON(http.StatusOK, gin.H{"message": "Unknown checkout"})
	case errors.Is(err, billing.ErrCheckoutExpired):
		utils.LogError(err, "Webhook for expired checkout "+checkoutID)
		c.JSON(http.StatusOK, gin.H{"message": "Checkout expired"})
	default:
		utils.LogError(err, "Error applying payment webhook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error applying the payment"})
	}
}

func (h *Handler) handleFailed(c *gin.Context, checkoutID string) {
	err := h.svc.HandleFailedPayment(checkoutID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Payment failure recorded"})
	case errors.Is(err, billing.ErrCheckoutNotFound):
		c.JSON(http.StatusOK, gin.H{"message": "Unknown checkout"})
	default:
		utils.LogError(err, "Error recording payment failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording the failure"})
	}
}
