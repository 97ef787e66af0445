package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// Block reasons surfaced through Entitlements.BlockReason.
const (
	BlockReasonTrialExpired   = "TRIAL_EXPIRED"
	BlockReasonPaymentOverdue = "PAYMENT_OVERDUE"
)

// Limits are the numeric entitlements of a plan.
type Limits struct {
	Organizations             int   `json:"organizations"`
	Users                     int   `json:"users"`
	ProductMutationsPerPeriod int64 `json:"productMutationsPerPeriod"`
}

// Entitlements is the resolved set of limits and feature flags an
// organization has access to right now. The effective plan may differ from
// the stored plan code when trial or grace windows have lapsed.
type Entitlements struct {
	EffectivePlanCode models.PlanCode `json:"effectivePlanCode"`
	Limits            Limits          `json:"limits"`
	FeatureFlags      []string        `json:"featureFlags"`
	IsBlocked         bool            `json:"isBlocked"`
	BlockReason       string          `json:"blockReason,omitempty"`
}

// EnsureSubscription returns the subscription row for an organization,
// creating the FREE default if none exists yet. Idempotent.
func (s *Service) EnsureSubscription(orgID string) (*models.Subscription, error) {
	return ensureSubscription(s.db, orgID)
}

func ensureSubscription(db *gorm.DB, orgID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Where("organization_id = ?", orgID).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var org models.Organization
	if err := db.First(&org, "id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	sub = models.Subscription{
		OwnerUserID:    org.OwnerUserID,
		OrganizationID: org.ID,
		Status:         models.SubscriptionFree,
		PlanCode:       models.PlanFree,
		BillingCycle:   models.CycleMonthly,
	}
	// The unique (owner, organization) index makes concurrent ensures safe:
	// the loser of the race re-reads the winner's row.
	if err := db.Create(&sub).Error; err != nil {
		if ferr := db.Where("organization_id = ?", orgID).First(&sub).Error; ferr == nil {
			return &sub, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetEntitlements resolves the effective plan for an organization. Expiry
// is lazy: there is no scheduler, so trial and period lapses are detected
// here and the status transition is persisted on read.
func (s *Service) GetEntitlements(orgID string) (*Entitlements, error) {
	sub, err := s.EnsureSubscription(orgID)
	if err != nil {
		return nil, err
	}

	plan, blocked, reason, lapsedStatus := resolveEffective(sub, time.Now())

	if lapsedStatus != "" && lapsedStatus != sub.Status {
		// Best-effort persistence of the lazy transition. A write failure
		// must not fail the read; the next resolution will retry.
		if err := s.db.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, sub.Status).
			Update("status", lapsedStatus).Error; err != nil {
			utils.LogError(err, "Could not persist lazy subscription status transition")
		}
	}

	return &Entitlements{
		EffectivePlanCode: plan.Code,
		Limits: Limits{
			Organizations:             plan.OrganizationsLimit,
			Users:                     plan.UsersLimit,
			ProductMutationsPerPeriod: plan.ProductMutationsPerPeriod,
		},
		FeatureFlags: plan.FeatureFlags,
		IsBlocked:    blocked,
		BlockReason:  reason,
	}, nil
}

// IsFeatureEnabled checks a feature flag against the effective plan.
// Unknown flags resolve to false.
func (s *Service) IsFeatureEnabled(orgID string, flag string) (bool, error) {
	ent, err := s.GetEntitlements(orgID)
	if err != nil {
		return false, err
	}
	if ent.IsBlocked {
		return false, nil
	}
	plan := PlanByCode(ent.EffectivePlanCode)
	if plan == nil {
		return false, nil
	}
	return plan.HasFeature(flag), nil
}

// AssertCanCreateOrganization enforces the owner's organization limit,
// resolved against the best effective plan across the owner's existing
// subscriptions (FREE if they have none).
func (s *Service) AssertCanCreateOrganization(ownerID string) error {
	var count int64
	if err := s.db.Model(&models.Organization{}).
		Where("owner_user_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return err
	}

	limit := PlanFree.OrganizationsLimit
	var subs []models.Subscription
	if err := s.db.Where("owner_user_id = ?", ownerID).Find(&subs).Error; err != nil {
		return err
	}
	now := time.Now()
	for i := range subs {
		plan, blocked, _, _ := resolveEffective(&subs[i], now)
		if blocked {
			continue
		}
		if plan.OrganizationsLimit > limit {
			limit = plan.OrganizationsLimit
		}
	}

	if count+1 > int64(limit) {
		return ErrQuotaExceeded
	}
	return nil
}

// AssertCanAddMember enforces the organization's seat limit. Pending
// invitations count against the limit so an invite burst cannot oversubscribe.
func (s *Service) AssertCanAddMember(orgID string) error {
	ent, err := s.GetEntitlements(orgID)
	if err != nil {
		return err
	}
	if ent.IsBlocked {
		return ErrOrganizationBlocked
	}

	var count int64
	if err := s.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error; err != nil {
		return err
	}

	if count+1 > int64(ent.Limits.Users) {
		return ErrQuotaExceeded
	}
	return nil
}

// resolveEffective computes the effective plan for a subscription at a
// point in time, without touching the database. The returned status is
// non-empty when a lazy transition (EXPIRED, PAST_DUE) should be persisted.
func resolveEffective(sub *models.Subscription, now time.Time) (*Plan, bool, string, models.SubscriptionStatus) {
	free := PlanFree

	plan := PlanByCode(sub.PlanCode)
	if plan == nil {
		// Unknown stored plan code: fail closed to FREE.
		plan = &free
	}

	switch sub.Status {
	case models.SubscriptionFree:
		return &free, false, "", ""

	case models.SubscriptionTrialing:
		if sub.TrialEndsAt == nil {
			return &free, true, BlockReasonTrialExpired, ""
		}
		if now.After(sub.TrialEndsAt.Add(TrialGracePeriod)) {
			// Hard cutover: blocked pending downgrade or checkout.
			return &free, true, BlockReasonTrialExpired, ""
		}
		return plan, false, "", ""

	case models.SubscriptionActive:
		if sub.CurrentPeriodEndsAt != nil && now.After(*sub.CurrentPeriodEndsAt) {
			if sub.CancelAtPeriodEnd {
				return &free, false, "", models.SubscriptionExpired
			}
			// The renewal payment never arrived: dunning starts, backdated
			// to the period end.
			if now.After(sub.CurrentPeriodEndsAt.Add(PastDueGracePeriod)) {
				return &free, true, BlockReasonPaymentOverdue, models.SubscriptionPastDue
			}
			return plan, false, "", models.SubscriptionPastDue
		}
		return plan, false, "", ""

	case models.SubscriptionPastDue:
		if sub.CurrentPeriodEndsAt == nil ||
			now.After(sub.CurrentPeriodEndsAt.Add(PastDueGracePeriod)) {
			return &free, true, BlockReasonPaymentOverdue, ""
		}
		return plan, false, "", ""

	case models.SubscriptionCanceled:
		if sub.CurrentPeriodEndsAt == nil || now.After(*sub.CurrentPeriodEndsAt) {
			return &free, false, "", models.SubscriptionExpired
		}
		return plan, false, "", ""

	case models.SubscriptionExpired:
		return &free, false, "", ""
	}

	return &free, false, "", ""
}
