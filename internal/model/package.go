package model

import (
	"time"

	"gorm.io/gorm"
)

// Package types.
const (
	PackageTypeBox      = "box"
	PackageTypeEnvelope = "envelope"
	PackageTypeSoft     = "soft-packaging"
)

// Package is a shipping package preset a store configures once and reuses
// when arranging deliveries.
type Package struct {
	ID      uint    `json:"id" gorm:"primarykey"`
	Name    string  `json:"name" gorm:"type:varchar(100);not null"`
	Width   float64 `json:"width" gorm:"not null"`
	Height  float64 `json:"height" gorm:"not null"`
	Length  float64 `json:"length" gorm:"not null"`
	Weight  float64 `json:"weight" gorm:"not null"`
	Type    string  `json:"type" gorm:"type:varchar(20);not null"`
	StoreID uint    `json:"store_id" gorm:"index;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
