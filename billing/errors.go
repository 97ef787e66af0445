package billing

import (
	"errors"
	"fmt"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

var (
	// ErrQuotaExceeded is returned when an operation would push consumption
	// past a plan limit.
	ErrQuotaExceeded = errors.New("plan quota exceeded for the current billing period")

	// ErrOrganizationBlocked is returned when an organization is blocked
	// pending a downgrade or overdue payment.
	ErrOrganizationBlocked = errors.New("organization is blocked, check your billing status")

	// ErrUntrustedRedirect is returned when the provider hands back a
	// checkout URL outside the trusted domain allowlist.
	ErrUntrustedRedirect = errors.New("checkout URL failed the trusted domain check")

	// ErrPaymentVerificationFailed is returned when a webhook signature
	// does not verify.
	ErrPaymentVerificationFailed = errors.New("payment webhook signature verification failed")

	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCheckoutNotFound     = errors.New("checkout session not found")
	ErrCheckoutExpired      = errors.New("checkout session expired")
	ErrSamePlan             = errors.New("organization is already on this plan")
	ErrUnknownPlan          = errors.New("unknown plan code")
)

// InvalidStateTransitionError reports an illegal subscription lifecycle
// move. No transition is ever silently ignored.
type InvalidStateTransitionError struct {
	Op   string
	From models.SubscriptionStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid subscription transition: cannot %s from status %s", e.Op, e.From)
}

func invalidTransition(op string, from models.SubscriptionStatus) error {
	return &InvalidStateTransitionError{Op: op, From: from}
}
