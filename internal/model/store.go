package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeliveryOption is a named flat-rate shipping offering configured per store.
type DeliveryOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Store is the tenant root. Owner is the identity-provider subject of the
// vendor; one store per owner. Every other entity hangs off a StoreID and all
// dashboard queries are scoped by it.
type Store struct {
	ID          uint   `json:"id" gorm:"primarykey"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Email       string `json:"email" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text"`
	Owner       string `json:"owner" gorm:"type:varchar(64);uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`

	LogoID      string `json:"logo_id,omitempty" gorm:"type:varchar(64)"`
	SiteURL     string `json:"site_url,omitempty" gorm:"type:text"`
	ContentJSON string `json:"content_json,omitempty" gorm:"type:text"`
	// Contents holds the storefront content blocks (carousels, banners, ...)
	// edited in the dashboard; the backend treats them as opaque documents.
	Contents datatypes.JSON `json:"contents" gorm:"type:jsonb"`

	DeliveryOptions datatypes.JSONSlice[DeliveryOption] `json:"delivery_options" gorm:"type:jsonb"`

	// Payment provider credentials, per tenant. The secret key signs webhook
	// payloads and authorizes transaction initialization.
	PublicKey string `json:"public_key" gorm:"type:varchar(255)"`
	SecretKey string `json:"-" gorm:"type:varchar(255)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
