package models

import (
	"time"
)

// UsageCounter tracks metered actions for one organization during one billing
// period. consumed never exceeds the plan limit: the increment is a single
// conditional UPDATE, checked at mutation time.
type UsageCounter struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganizationID string    `json:"organizationId" gorm:"type:uuid;not null;uniqueIndex:idx_org_period"`
	PeriodKey      string    `json:"periodKey" gorm:"type:varchar(10);not null;uniqueIndex:idx_org_period"`
	Consumed       int64     `json:"consumed"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}
