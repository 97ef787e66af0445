package billing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
)

// Grace windows. Trial expiry is a hard cutover: the moment the trial ends
// the organization degrades to FREE and is blocked pending a downgrade or
// a checkout. Overdue payments get a week before entitlements degrade.
const (
	TrialDuration      = 14 * 24 * time.Hour
	TrialGracePeriod   = 0
	PastDueGracePeriod = 7 * 24 * time.Hour
)

// Usage thresholds (percent of the plan limit) that trigger a best-effort
// notification when crossed.
var usageAlertThresholds = []int{80, 100}

// CheckoutProvider creates hosted checkouts on the external payment
// provider.
type CheckoutProvider interface {
	CreateBilling(ctx context.Context, in payment.CheckoutInput) (*payment.Checkout, error)
}

// Notifier delivers best-effort billing notifications. Implementations must
// swallow and log their own failures; the service never lets a notification
// error fail the primary operation.
type Notifier interface {
	TrialStarted(orgID string, plan Plan, endsAt time.Time)
	PaymentConfirmed(orgID string, plan Plan)
	UsageThresholdReached(orgID string, percent int, consumed, limit int64)
}

// Service is the subscription and entitlement engine. One instance is
// constructed at boot and injected into the handlers that need it.
type Service struct {
	db       *gorm.DB
	provider CheckoutProvider
	notifier Notifier
}

func NewService(db *gorm.DB, provider CheckoutProvider, notifier Notifier) *Service {
	return &Service{
		db:       db,
		provider: provider,
		notifier: notifier,
	}
}
