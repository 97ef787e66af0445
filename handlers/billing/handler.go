package billing

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// Handler exposes the billing surface: entitlements, trial, checkout,
// cancellation, reactivation and the simulated-payment endpoint.
type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

type TrialRequest struct {
	PlanCode string `json:"planCode" binding:"required"`
}

type CheckoutRequest struct {
	PlanCode      string `json:"planCode" binding:"required"`
	BillingCycle  string `json:"billingCycle"`
	AllowSamePlan bool   `json:"allowSamePlan"`
}

type CancelRequest struct {
	Immediate  bool   `json:"immediate"`
	ReasonCode string `json:"reasonCode"`
	Note       string `json:"note"`
}

type SimulatePaymentRequest struct {
	CheckoutID string `json:"checkoutId" binding:"required"`
}

// sendBillingError converts a billing error into the matching HTTP status.
// Every domain error is recovered here; nothing propagates to the
// transport layer as an unhandled failure.
func sendBillingError(c *gin.Context, userID interface{}, err error) {
	var invalid *billing.InvalidStateTransitionError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{"error": invalid.Error()})
	case errors.Is(err, billing.ErrSamePlan):
		c.JSON(http.StatusConflict, gin.H{"error": "The organization is already on this plan"})
	case errors.Is(err, billing.ErrUnknownPlan):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan code"})
	case errors.Is(err, billing.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Plan limit reached"})
	case errors.Is(err, billing.ErrOrganizationBlocked):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Organization is blocked, check your billing status"})
	case errors.Is(err, billing.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	case errors.Is(err, billing.ErrCheckoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
	case errors.Is(err, billing.ErrCheckoutExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Checkout session expired"})
	case errors.Is(err, billing.ErrUntrustedRedirect):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider returned an invalid checkout URL"})
	default:
		utils.LogErrorWithUser(userID, err, "Unexpected billing error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Billing error"})
	}
}

// @Summary Current entitlements
// @Description Resolve the organization's effective plan, limits and feature flags
// @Tags billing
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} billing.Entitlements
// @Router /organizations/{orgId}/billing/entitlements [get]
func (h *Handler) GetEntitlements(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	ent, err := h.svc.GetEntitlements(orgID)
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, ent)
}

// @Summary Subscription details
// @Tags billing
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Router /organizations/{orgId}/billing/subscription [get]
func (h *Handler) GetSubscription(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	sub, err := h.svc.EnsureSubscription(orgID)
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary List available plans
// @Tags billing
// @Produce json
// @Success 200 {array} billing.Plan
// @Router /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, billing.AllPlans)
}

// @Summary Start a trial
// @Description Start the 14-day trial for a paid plan. Only legal from the FREE status.
// @Tags billing
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param trial body TrialRequest true "Trial plan"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 409 {object} map[string]string "error: Invalid transition"
// @Router /organizations/{orgId}/billing/trial [post]
func (h *Handler) StartTrial(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	var input TrialRequest
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	sub, err := h.svc.StartTrial(orgID, models.PlanCode(input.PlanCode))
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	utils.LogSuccessWithUser(userID, "Trial started")
	c.JSON(http.StatusOK, sub)
}

// @Summary Create a checkout
// @Description Create a provider checkout session for a plan change and return its URL
// @Tags billing
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param checkout body CheckoutRequest true "Target plan"
// @Security BearerAuth
// @Success 200 {object} map[string]string "checkoutId, url"
// @Failure 409 {object} map[string]string "error: Same plan"
// @Failure 502 {object} map[string]string "error: Untrusted checkout URL"
// @Router /organizations/{orgId}/billing/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	var input CheckoutRequest
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	cycle := models.BillingCycle(input.BillingCycle)
	if cycle == "" {
		cycle = models.CycleMonthly
	}

	session, err := h.svc.CreateCheckout(c.Request.Context(), orgID,
		models.PlanCode(input.PlanCode), cycle, input.AllowSamePlan)
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	utils.LogSuccessWithUser(userID, "Checkout session created")
	c.JSON(http.StatusOK, gin.H{
		"checkoutId": session.ProviderCheckoutID,
		"url":        session.CheckoutURL,
	})
}

// @Summary Cancel the subscription
// @Description Cancel immediately or at period end. Optional feedback is recorded best-effort.
// @Tags billing
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param cancel body CancelRequest true "Cancellation options"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 409 {object} map[string]string "error: Invalid transition"
// @Router /organizations/{orgId}/billing/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	var input CancelRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		// An empty body means cancel at period end with no feedback.
		input = CancelRequest{}
	}

	sub, err := h.svc.Cancel(orgID, billing.CancelOptions{
		Immediate:  input.Immediate,
		ReasonCode: models.CancellationReason(input.ReasonCode),
		Note:       input.Note,
	})
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription canceled")
	c.JSON(http.StatusOK, sub)
}

// @Summary Reactivate the subscription
// @Description Undo a cancellation before the paid period ends
// @Tags billing
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 409 {object} map[string]string "error: Invalid transition"
// @Router /organizations/{orgId}/billing/reactivate [post]
func (h *Handler) Reactivate(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	sub, err := h.svc.Reactivate(orgID)
	if err != nil {
		sendBillingError(c, userID, err)
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription reactivated")
	c.JSON(http.StatusOK, sub)
}

// @Summary Simulate a payment
// @Description Confirm a checkout without the provider webhook. Disabled in production; runs the same reconciliation path.
// @Tags billing
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param payment body SimulatePaymentRequest true "Checkout to confirm"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Payment confirmed"
// @Failure 403 {object} map[string]string "error: Not available in production"
// @Router /organizations/{orgId}/billing/simulate-payment [post]
func (h *Handler) SimulatePayment(c *gin.Context) {
	userID, _ := c.Get("user_id")

	if os.Getenv("APP_ENV") == "production" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Simulated payments are not available in production"})
		return
	}

	var input SimulatePaymentRequest
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	if err := h.svc.ConfirmPayment(input.CheckoutID); err != nil {
		sendBillingError(c, userID, err)
		return
	}

	utils.LogSuccessWithUser(userID, "Simulated payment confirmed")
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed"})
}
