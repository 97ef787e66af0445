package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// ConfirmPayment applies a confirmed provider payment to the subscription.
// Both the webhook and the simulated-payment endpoint converge here.
//
// Idempotent: the session row is flipped PENDING -> COMPLETED with a
// conditional update, so a replayed checkoutId (webhook retries included)
// finds zero rows and returns without double-applying. The flip commits in
// the same transaction as the subscription activation and the usage reset:
// a transient failure after the flip rolls all of it back, so the provider's
// retry still finds a PENDING session and can re-apply the payment.
func (s *Service) ConfirmPayment(providerCheckoutID string) error {
	now := time.Now()

	var applied *models.CheckoutSession
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CheckoutSession{}).
			Where("provider_checkout_id = ? AND status = ? AND expires_at > ?",
				providerCheckoutID, models.CheckoutPending, now).
			Update("status", models.CheckoutCompleted)
		if res.Error != nil {
			return res.Error
		}

		var session models.CheckoutSession
		if err := tx.Where("provider_checkout_id = ?", providerCheckoutID).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCheckoutNotFound
			}
			return err
		}

		if res.RowsAffected == 0 {
			if session.Status == models.CheckoutCompleted {
				// Replay of an already-applied confirmation.
				return nil
			}
			// Still pending but past expiry.
			return ErrCheckoutExpired
		}

		plan := PlanByCode(session.TargetPlanCode)
		if plan == nil {
			return ErrUnknownPlan
		}

		sub, err := ensureSubscription(tx, session.OrganizationID)
		if err != nil {
			return err
		}

		var periodEnd time.Time
		if session.BillingCycle == models.CycleAnnual {
			periodEnd = now.AddDate(1, 0, 0)
		} else {
			periodEnd = now.AddDate(0, 1, 0)
		}

		if err := tx.Model(&models.Subscription{}).
			Where("id = ?", sub.ID).
			Updates(map[string]interface{}{
				"status":                 models.SubscriptionActive,
				"plan_code":              plan.Code,
				"billing_cycle":          session.BillingCycle,
				"current_period_ends_at": periodEnd,
				"cancel_at_period_end":   false,
				"trial_ends_at":          nil,
			}).Error; err != nil {
			return err
		}

		// A fresh paid period starts with a clean usage counter.
		if err := tx.Model(&models.UsageCounter{}).
			Where("organization_id = ? AND period_key = ?", session.OrganizationID, currentPeriodKey()).
			Update("consumed", 0).Error; err != nil {
			return err
		}

		applied = &session
		return nil
	})

	if errors.Is(txErr, ErrCheckoutExpired) {
		// Close out the stale session on its own so later replays see
		// EXPIRED instead of re-running the whole check.
		if err := s.db.Model(&models.CheckoutSession{}).
			Where("provider_checkout_id = ? AND status = ?", providerCheckoutID, models.CheckoutPending).
			Update("status", models.CheckoutExpired).Error; err != nil {
			utils.LogError(err, "Could not mark checkout session expired")
		}
		return ErrCheckoutExpired
	}
	if txErr != nil {
		return txErr
	}

	if applied != nil && s.notifier != nil {
		if plan := PlanByCode(applied.TargetPlanCode); plan != nil {
			s.notifier.PaymentConfirmed(applied.OrganizationID, *plan)
		}
	}

	return nil
}

// HandleFailedPayment records a provider-reported payment failure. The
// pending session is closed; the subscription moves to PAST_DUE only when
// the failed checkout was renewing its current plan or the paid period has
// already lapsed. A failed upgrade checkout leaves a paid-up subscription
// untouched.
func (s *Service) HandleFailedPayment(providerCheckoutID string) error {
	var session models.CheckoutSession
	if err := s.db.Where("provider_checkout_id = ?", providerCheckoutID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCheckoutNotFound
		}
		return err
	}

	if err := s.db.Model(&models.CheckoutSession{}).
		Where("id = ? AND status = ?", session.ID, models.CheckoutPending).
		Update("status", models.CheckoutExpired).Error; err != nil {
		return err
	}

	var sub models.Subscription
	if err := s.db.Where("organization_id = ?", session.OrganizationID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if sub.Status != models.SubscriptionActive {
		return nil
	}

	renewal := session.TargetPlanCode == sub.PlanCode
	lapsed := sub.CurrentPeriodEndsAt == nil || time.Now().After(*sub.CurrentPeriodEndsAt)
	if !renewal && !lapsed {
		return nil
	}

	res := s.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
		Update("status", models.SubscriptionPastDue)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		utils.LogInfo("Subscription moved to PAST_DUE after failed payment for organization " + session.OrganizationID)
	}

	return nil
}
