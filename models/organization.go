package models

import (
	"time"
)

type Organization struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null" binding:"required"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	OwnerUserID string    `json:"ownerUserId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OrganizationCreate struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

func (Organization) TableName() string {
	return "organizations"
}
