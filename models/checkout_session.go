package models

import (
	"time"
)

type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "PENDING"
	CheckoutCompleted CheckoutStatus = "COMPLETED"
	CheckoutExpired   CheckoutStatus = "EXPIRED"
)

// CheckoutSession links a pending provider payment to the plan change it
// will apply. Write-once, then closed by payment confirmation or expiry.
type CheckoutSession struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganizationID     string         `json:"organizationId" gorm:"type:uuid;not null;index"`
	TargetPlanCode     PlanCode       `json:"targetPlanCode" gorm:"type:varchar(20);not null"`
	BillingCycle       BillingCycle   `json:"billingCycle" gorm:"type:varchar(10);not null"`
	ProviderCheckoutID string         `json:"providerCheckoutId" gorm:"uniqueIndex;not null"`
	CheckoutURL        string         `json:"checkoutUrl"`
	Status             CheckoutStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	ExpiresAt          time.Time      `json:"expiresAt"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
