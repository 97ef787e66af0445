package billing

import (
	"time"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// StartTrial moves a FREE subscription into TRIALING for the given plan.
// Only legal from FREE; anything else is an invalid transition.
func (s *Service) StartTrial(orgID string, planCode models.PlanCode) (*models.Subscription, error) {
	plan := PlanByCode(planCode)
	if plan == nil {
		return nil, ErrUnknownPlan
	}
	if plan.Code == models.PlanFree {
		return nil, ErrUnknownPlan
	}

	sub, err := s.EnsureSubscription(orgID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionFree {
		return nil, invalidTransition("startTrial", sub.Status)
	}

	endsAt := time.Now().Add(TrialDuration)

	// The status guard in the WHERE clause keeps two concurrent startTrial
	// calls from both succeeding.
	res := s.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionFree).
		Updates(map[string]interface{}{
			"status":        models.SubscriptionTrialing,
			"plan_code":     plan.Code,
			"trial_ends_at": endsAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidTransition("startTrial", sub.Status)
	}

	sub.Status = models.SubscriptionTrialing
	sub.PlanCode = plan.Code
	sub.TrialEndsAt = &endsAt

	if s.notifier != nil {
		s.notifier.TrialStarted(orgID, *plan, endsAt)
	}

	return sub, nil
}

// CancelOptions carries the optional feedback attached to a cancellation.
type CancelOptions struct {
	Immediate  bool
	ReasonCode models.CancellationReason
	Note       string
}

// Cancel ends a subscription. With Immediate the entitlements degrade on
// this call; otherwise the subscription is flagged cancel-at-period-end and
// the degrade happens lazily when the period lapses. The feedback record is
// best-effort and never blocks the cancellation.
func (s *Service) Cancel(orgID string, opts CancelOptions) (*models.Subscription, error) {
	sub, err := s.EnsureSubscription(orgID)
	if err != nil {
		return nil, err
	}

	switch sub.Status {
	case models.SubscriptionFree, models.SubscriptionExpired, models.SubscriptionCanceled:
		return nil, invalidTransition("cancel", sub.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{}

	if opts.Immediate {
		updates["status"] = models.SubscriptionCanceled
		updates["cancel_at_period_end"] = false
		updates["current_period_ends_at"] = now
	} else {
		updates["cancel_at_period_end"] = true
		if sub.Status == models.SubscriptionTrialing && sub.TrialEndsAt != nil {
			// A canceled trial runs out with the trial itself.
			updates["current_period_ends_at"] = *sub.TrialEndsAt
		}
	}

	// Same status guard as startTrial: a concurrent transition (a lazy
	// expiry persist included) wins and this cancel reports it.
	res := s.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, sub.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidTransition("cancel", sub.Status)
	}

	if opts.Immediate {
		sub.Status = models.SubscriptionCanceled
		sub.CancelAtPeriodEnd = false
		sub.CurrentPeriodEndsAt = &now
	} else {
		sub.CancelAtPeriodEnd = true
		if sub.Status == models.SubscriptionTrialing && sub.TrialEndsAt != nil {
			sub.CurrentPeriodEndsAt = sub.TrialEndsAt
		}
	}

	if opts.ReasonCode != "" || opts.Note != "" {
		feedback := models.CancellationFeedback{
			SubscriptionID: sub.ID,
			ReasonCode:     opts.ReasonCode,
			Note:           opts.Note,
		}
		if err := s.db.Create(&feedback).Error; err != nil {
			utils.LogError(err, "Could not record cancellation feedback")
		}
	}

	return sub, nil
}

// Reactivate reverses a cancel-at-period-end (or an immediate cancel whose
// paid period has not yet lapsed). Illegal once the period has passed.
func (s *Service) Reactivate(orgID string) (*models.Subscription, error) {
	sub, err := s.EnsureSubscription(orgID)
	if err != nil {
		return nil, err
	}

	canceled := sub.Status == models.SubscriptionCanceled ||
		(sub.Status == models.SubscriptionActive && sub.CancelAtPeriodEnd)
	if !canceled {
		return nil, invalidTransition("reactivate", sub.Status)
	}
	if sub.CurrentPeriodEndsAt == nil || !time.Now().Before(*sub.CurrentPeriodEndsAt) {
		return nil, invalidTransition("reactivate", sub.Status)
	}

	res := s.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, sub.Status).
		Updates(map[string]interface{}{
			"status":               models.SubscriptionActive,
			"cancel_at_period_end": false,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidTransition("reactivate", sub.Status)
	}

	sub.Status = models.SubscriptionActive
	sub.CancelAtPeriodEnd = false
	return sub, nil
}
