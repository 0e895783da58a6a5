package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Metadata value types.
const (
	MetadataTypeString = "string"
	MetadataTypeNumber = "number"
	MetadataTypeArray  = "array"
	MetadataTypeImage  = "image"
)

// Metadata is a named, typed extra-field definition a store can attach to
// its products.
type Metadata struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	StoreID   uint           `json:"store_id" gorm:"index;not null"`
	Type      string         `json:"type" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// MetadataPreset is a reusable named grouping of metadata definitions.
type MetadataPreset struct {
	ID          uint                      `json:"id" gorm:"primarykey"`
	Name        string                    `json:"name" gorm:"type:varchar(100);not null"`
	StoreID     uint                      `json:"store_id" gorm:"index;not null"`
	MetadataIDs datatypes.JSONSlice[uint] `json:"metadata_ids" gorm:"type:jsonb"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	DeletedAt   gorm.DeletedAt            `json:"-" gorm:"index"`
}

// UnitType names the unit a product is sold in ("Unit", "kg", ...). Each
// store gets a default "Unit" row at onboarding.
type UnitType struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(50);not null"`
	StoreID   uint           `json:"store_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// DefaultUnitTypeName is seeded for every new store.
const DefaultUnitTypeName = "Unit"
