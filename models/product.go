package models

import (
	"time"
)

type Product struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganizationID string    `json:"organizationId" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"not null" binding:"required"`
	Description    string    `json:"description"`
	SKU            string    `json:"sku"`
	PriceCents     int       `json:"priceCents"`
	ImageURL       string    `json:"imageUrl"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ProductCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	PriceCents  int    `json:"priceCents"`
}

type ProductUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	PriceCents  *int   `json:"priceCents"`
	Active      *bool  `json:"active"`
}

func (Product) TableName() string {
	return "products"
}
