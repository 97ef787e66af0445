package models

import (
	"time"
)

type CancellationReason string

const (
	ReasonTooExpensive    CancellationReason = "TOO_EXPENSIVE"
	ReasonMissingFeatures CancellationReason = "MISSING_FEATURES"
	ReasonSwitched        CancellationReason = "SWITCHED"
	ReasonUnused          CancellationReason = "UNUSED"
	ReasonOther           CancellationReason = "OTHER"
)

// CancellationFeedback is an append-only side record. Writing it is
// best-effort: a failed insert never blocks the cancellation itself.
type CancellationFeedback struct {
	ID             string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SubscriptionID string             `json:"subscriptionId" gorm:"type:uuid;not null;index"`
	ReasonCode     CancellationReason `json:"reasonCode" gorm:"type:varchar(30)"`
	Note           string             `json:"note"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func (CancellationFeedback) TableName() string {
	return "cancellation_feedbacks"
}
