package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Order statuses. Anything else is a provider-reported status string stored
// verbatim; only the pending -> success transition has side effects.
const (
	OrderStatusPending = "pending"
	OrderStatusSuccess = "success"
)

// SelectedMetadata carries a buyer-supplied metadata value on a line item.
type SelectedMetadata struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// OrderItem references a live product; prices are re-resolved from current
// product data at read time rather than frozen at purchase time.
type OrderItem struct {
	ProductID uint               `json:"productId"`
	Quantity  int                `json:"quantity"`
	Variants  []SelectedVariant  `json:"variants,omitempty"`
	Metadatas []SelectedMetadata `json:"metadatas,omitempty"`
}

// DeliveryInfo records the delivery offering the buyer picked at checkout.
type DeliveryInfo struct {
	SelectedOffering string `json:"selectedOffering"`
}

// Order belongs to one store. Slug is a store-scoped sequential reference
// ("ORD-00001"); Reference is the payment provider's transaction reference
// and is how webhooks locate the order.
type Order struct {
	ID      uint   `json:"id" gorm:"primarykey"`
	Slug    string `json:"slug" gorm:"type:varchar(20);index;not null"`
	StoreID uint   `json:"store_id" gorm:"index;not null"`

	Items datatypes.JSONSlice[OrderItem] `json:"items" gorm:"type:jsonb"`

	// Shipping snapshot
	FirstName string `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName  string `json:"last_name" gorm:"type:varchar(100);not null"`
	Line1     string `json:"line1" gorm:"type:varchar(255);not null"`
	Line2     string `json:"line2,omitempty" gorm:"type:varchar(255)"`
	City      string `json:"city" gorm:"type:varchar(100);not null"`
	State     string `json:"state" gorm:"type:varchar(100);not null"`
	Zip       string `json:"zip" gorm:"type:varchar(20);not null"`
	Country   string `json:"country" gorm:"type:varchar(100);not null"`
	Phone     string `json:"phone" gorm:"type:varchar(30);not null;index"`
	Email     string `json:"email" gorm:"type:varchar(255);not null;index"`

	DeliveryInfo *datatypes.JSONType[DeliveryInfo] `json:"delivery_info,omitempty" gorm:"type:jsonb"`

	Amount   float64 `json:"amount" gorm:"not null"`
	Shipping float64 `json:"shipping" gorm:"not null"`

	// Payment provider fields, set by transaction initialization
	URL        string `json:"url,omitempty" gorm:"type:text"`
	AccessCode string `json:"access_code,omitempty" gorm:"type:varchar(100)"`
	Reference  string `json:"reference,omitempty" gorm:"type:varchar(100);index"`

	Status string `json:"status" gorm:"type:varchar(30);not null;default:pending"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderCounter backs order slug assignment with a per-store transactional
// sequence, so concurrent checkouts cannot mint duplicate slugs.
type OrderCounter struct {
	ID      uint  `gorm:"primarykey"`
	StoreID uint  `gorm:"uniqueIndex;not null"`
	Seq     int64 `gorm:"not null;default:0"`
}

// FormatOrderSlug renders a sequence number as a zero-padded order slug.
func FormatOrderSlug(seq int64) string {
	return fmt.Sprintf("ORD-%05d", seq)
}

// NextOrderSlug increments the store's order sequence and returns the new
// slug. Must be called inside the transaction that creates the order; the
// row lock serializes concurrent checkouts on the same store.
func NextOrderSlug(tx *gorm.DB, storeID uint) (string, error) {
	var counter OrderCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(OrderCounter{StoreID: storeID}).
		FirstOrCreate(&counter).Error
	if err != nil {
		return "", err
	}

	counter.Seq++
	if err := tx.Save(&counter).Error; err != nil {
		return "", err
	}
	return FormatOrderSlug(counter.Seq), nil
}

// ResolvedOrderItem is a line item joined with its live product: name, unit
// price with variant deltas applied, and the first product image.
type ResolvedOrderItem struct {
	OrderItem
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// ResolveOrderItems re-resolves an order's items against current product
// data. imageURL maps a storage id to a public URL; pass nil to skip images.
func ResolveOrderItems(db *gorm.DB, order *Order, imageURL func(string) string) ([]ResolvedOrderItem, error) {
	resolved := make([]ResolvedOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		var product Product
		if err := db.First(&product, item.ProductID).Error; err != nil {
			return nil, fmt.Errorf("product %d not found: %w", item.ProductID, err)
		}

		r := ResolvedOrderItem{
			OrderItem: item,
			Name:      product.Name,
			Price:     product.UnitPriceFor(item.Variants),
		}
		if imageURL != nil && len(product.Images) > 0 {
			r.ImageURL = imageURL(product.Images[0])
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}
