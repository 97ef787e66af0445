package models

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionFree     SubscriptionStatus = "FREE"
	SubscriptionTrialing SubscriptionStatus = "TRIALING"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "MONTHLY"
	CycleAnnual  BillingCycle = "ANNUAL"
)

type PlanCode string

const (
	PlanFree      PlanCode = "FREE"
	PlanStarter50 PlanCode = "STARTER_50"
	PlanPro100    PlanCode = "PRO_100"
	PlanScale400  PlanCode = "SCALE_400"
)

// Subscription is the single billing row per (owner, organization) pair.
// Rows are never hard-deleted; lifecycle moves are status transitions only.
type Subscription struct {
	ID                  string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OwnerUserID         string             `json:"ownerUserId" gorm:"type:uuid;not null;uniqueIndex:idx_owner_org"`
	OrganizationID      string             `json:"organizationId" gorm:"type:uuid;not null;uniqueIndex:idx_owner_org"`
	Status              SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'FREE'"`
	PlanCode            PlanCode           `json:"planCode" gorm:"type:varchar(20);default:'FREE'"`
	BillingCycle        BillingCycle       `json:"billingCycle" gorm:"type:varchar(10);default:'MONTHLY'"`
	TrialEndsAt         *time.Time         `json:"trialEndsAt"`
	CurrentPeriodEndsAt *time.Time         `json:"currentPeriodEndsAt"`
	CancelAtPeriodEnd   bool               `json:"cancelAtPeriodEnd"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
