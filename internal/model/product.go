package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VariantOption is a single choice on a variant axis. Price is a delta added
// to the product's base price when the option is selected.
type VariantOption struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ImageID       string  `json:"imageId,omitempty"`
	Stock         int     `json:"stock"`
	IsUnspecified bool    `json:"isUnspecified"`
}

// Variant is a named axis of options, e.g. Size -> [S, M, L].
type Variant struct {
	Name    string          `json:"name"`
	Options []VariantOption `json:"options"`
}

// PropertyValue attaches a property value to a product. Value is a string,
// number or string list depending on the property's declared type.
type PropertyValue struct {
	PropertyID uint        `json:"propertyId"`
	Value      interface{} `json:"value"`
}

// Product belongs to exactly one store. Variants, properties and metadata
// references are flexible per-product documents, stored as JSONB.
type Product struct {
	ID      uint `json:"id" gorm:"primarykey"`
	StoreID uint `json:"store_id" gorm:"index;not null"`

	Name                  string  `json:"name" gorm:"type:varchar(255);not null"`
	AdditionalInformation string  `json:"additional_information" gorm:"type:text"`
	Price                 float64 `json:"price" gorm:"not null"`
	Stock                 int     `json:"stock" gorm:"default:0"`
	// IsUnspecified marks stock as not tracked; the positive-stock invariant
	// only applies when it is false.
	IsUnspecified bool  `json:"is_unspecified" gorm:"default:false"`
	UnitTypeID    uint  `json:"unit_type_id"`
	CategoryID    *uint `json:"category_id,omitempty" gorm:"index"`

	Images      datatypes.JSONSlice[string]        `json:"images" gorm:"type:jsonb"`
	Variants    datatypes.JSONSlice[Variant]       `json:"variants" gorm:"type:jsonb"`
	Properties  datatypes.JSONSlice[PropertyValue] `json:"properties" gorm:"type:jsonb"`
	MetadataIDs datatypes.JSONSlice[uint]          `json:"metadata_ids" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SelectedVariant is an order line item's choice on one variant axis,
// matched against the product's current variant definitions by name.
type SelectedVariant struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UnitPriceFor resolves the effective unit price for a selection of variant
// options: base price plus the delta of each matched option. Axes or options
// that no longer match contribute nothing.
func (p *Product) UnitPriceFor(selections []SelectedVariant) float64 {
	price := p.Price
	for _, sel := range selections {
		for _, axis := range p.Variants {
			if axis.Name != sel.Name {
				continue
			}
			for _, opt := range axis.Options {
				if opt.Name == sel.Value {
					price += opt.Price
					break
				}
			}
			break
		}
	}
	return price
}
