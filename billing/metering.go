package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

// Usage is metered per calendar month. Paid confirmations reset the
// current counter so a fresh period always starts at zero.
func periodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func currentPeriodKey() string {
	return periodKey(time.Now())
}

// AssertCanConsume checks whether amount metered actions fit in the
// organization's remaining quota, without consuming anything.
func (s *Service) AssertCanConsume(orgID string, amount int64) error {
	ent, err := s.GetEntitlements(orgID)
	if err != nil {
		return err
	}
	if ent.IsBlocked {
		return ErrOrganizationBlocked
	}

	var counter models.UsageCounter
	err = s.db.Where("organization_id = ? AND period_key = ?", orgID, currentPeriodKey()).
		First(&counter).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if counter.Consumed+amount > ent.Limits.ProductMutationsPerPeriod {
		return ErrQuotaExceeded
	}
	return nil
}

// Consume atomically increments the organization's usage counter. The
// check and the increment are one conditional UPDATE, so concurrent
// callers can never push total consumption past the plan limit; the loser
// of a race at the boundary gets ErrQuotaExceeded.
func (s *Service) Consume(orgID string, amount int64) error {
	ent, err := s.GetEntitlements(orgID)
	if err != nil {
		return err
	}
	if ent.IsBlocked {
		return ErrOrganizationBlocked
	}
	limit := ent.Limits.ProductMutationsPerPeriod

	pk := currentPeriodKey()

	var counter models.UsageCounter
	err = s.db.Where("organization_id = ? AND period_key = ?", orgID, pk).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.UsageCounter{
			OrganizationID: orgID,
			PeriodKey:      pk,
			Consumed:       0,
		}
		if cerr := s.db.Create(&counter).Error; cerr != nil {
			// Lost a creation race; the row exists now either way.
			if ferr := s.db.Where("organization_id = ? AND period_key = ?", orgID, pk).
				First(&counter).Error; ferr != nil {
				return cerr
			}
		}
	} else if err != nil {
		return err
	}

	res := s.db.Model(&models.UsageCounter{}).
		Where("organization_id = ? AND period_key = ? AND consumed + ? <= ?", orgID, pk, amount, limit).
		Update("consumed", gorm.Expr("consumed + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaExceeded
	}

	var after models.UsageCounter
	if err := s.db.Where("organization_id = ? AND period_key = ?", orgID, pk).
		First(&after).Error; err == nil {
		s.notifyThresholds(orgID, after.Consumed-amount, after.Consumed, limit)
	}

	return nil
}

// notifyThresholds fires a best-effort alert for each usage threshold the
// increment crossed. Notification failure never fails the metered call.
func (s *Service) notifyThresholds(orgID string, before, after, limit int64) {
	if s.notifier == nil || limit <= 0 {
		return
	}
	for _, pct := range usageAlertThresholds {
		mark := limit * int64(pct) / 100
		if before < mark && after >= mark {
			s.notifier.UsageThresholdReached(orgID, pct, after, limit)
		}
	}
}
