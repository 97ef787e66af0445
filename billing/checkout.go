package billing

import (
	"context"
	"fmt"
	"os"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// CreateCheckout asks the payment provider for a hosted checkout and
// records the pending session. allowSamePlan is only set on the
// renewal-after-past-due path; normal plan changes to the plan the
// organization already has are rejected.
//
// The provider URL is validated against the trusted-domain allowlist
// before anything is persisted or handed back: a user is never redirected
// to an untrusted absolute URL.
func (s *Service) CreateCheckout(ctx context.Context, orgID string, planCode models.PlanCode, cycle models.BillingCycle, allowSamePlan bool) (*models.CheckoutSession, error) {
	plan := PlanByCode(planCode)
	if plan == nil || plan.Code == models.PlanFree {
		return nil, ErrUnknownPlan
	}
	if cycle != models.CycleMonthly && cycle != models.CycleAnnual {
		cycle = models.CycleMonthly
	}

	sub, err := s.EnsureSubscription(orgID)
	if err != nil {
		return nil, err
	}

	if !allowSamePlan &&
		sub.PlanCode == plan.Code && sub.BillingCycle == cycle {
		switch sub.Status {
		case models.SubscriptionTrialing, models.SubscriptionActive, models.SubscriptionPastDue:
			return nil, ErrSamePlan
		}
	}

	checkout, err := s.provider.CreateBilling(ctx, payment.CheckoutInput{
		OrganizationID: orgID,
		PlanCode:       string(plan.Code),
		BillingCycle:   string(cycle),
		AmountCents:    plan.PriceCents(cycle),
		Description:    fmt.Sprintf("%s plan (%s)", plan.Name, cycle),
		CompletionURL:  os.Getenv("BILLING_COMPLETION_URL"),
	})
	if err != nil {
		return nil, fmt.Errorf("payment provider: %w", err)
	}

	if !payment.IsTrustedCheckoutURL(checkout.URL) {
		utils.LogError(nil, "Payment provider returned an untrusted checkout URL: "+checkout.URL)
		return nil, ErrUntrustedRedirect
	}

	session := models.CheckoutSession{
		OrganizationID:     orgID,
		TargetPlanCode:     plan.Code,
		BillingCycle:       cycle,
		ProviderCheckoutID: checkout.ID,
		CheckoutURL:        checkout.URL,
		Status:             models.CheckoutPending,
		ExpiresAt:          checkout.ExpiresAt,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}
