package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is a store-scoped, recursively parented product grouping.
// A nil ParentID marks a root category.
type Category struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	StoreID   uint           `json:"store_id" gorm:"index;not null"`
	ParentID  *uint          `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// PropertyType enumerates the value shapes a property can take.
const (
	PropertyTypeString = "string"
	PropertyTypeNumber = "number"
	PropertyTypeArray  = "array"
)

// Property is a declarative attribute definition attached to a category.
// Options accumulates the string values seen on products and backs the
// storefront filters.
type Property struct {
	ID         uint                        `json:"id" gorm:"primarykey"`
	Name       string                      `json:"name" gorm:"type:varchar(100);not null"`
	StoreID    uint                        `json:"store_id" gorm:"index;not null"`
	CategoryID uint                        `json:"category_id" gorm:"index;not null"`
	Type       string                      `json:"type" gorm:"type:varchar(20);not null"`
	Options    datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	DeletedAt  gorm.DeletedAt              `json:"-" gorm:"index"`
}

// CategoryLineage walks the tree from the given category up to its root,
// returning the chain child-first. Categories outside the store are treated
// as missing.
func CategoryLineage(db *gorm.DB, storeID, categoryID uint) ([]Category, error) {
	var lineage []Category
	next := &categoryID
	for next != nil {
		var c Category
		if err := db.Where("id = ? AND store_id = ?", *next, storeID).First(&c).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return lineage, nil
			}
			return nil, err
		}
		lineage = append(lineage, c)
		next = c.ParentID
	}
	return lineage, nil
}
