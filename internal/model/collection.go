package model

import (
	"time"

	"gorm.io/gorm"
)

// Collection is a flat, store-scoped product grouping with a store-unique
// slug derived from its name.
type Collection struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex:idx_collections_store_slug"`
	StoreID   uint           `json:"store_id" gorm:"index;not null;uniqueIndex:idx_collections_store_slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CollectionProduct is the membership join between collections and products.
type CollectionProduct struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	CollectionID uint      `json:"collection_id" gorm:"not null;uniqueIndex:idx_collection_product"`
	ProductID    uint      `json:"product_id" gorm:"index;not null;uniqueIndex:idx_collection_product"`
	CreatedAt    time.Time `json:"created_at"`
}
