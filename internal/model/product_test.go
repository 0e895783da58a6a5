package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func acmeShirt() *Product {
	return &Product{
		Name:  "Acme Shirt",
		Price: 1000,
		Variants: []Variant{
			{
				Name: "Size",
				Options: []VariantOption{
					{Name: "S", Price: 0},
					{Name: "L", Price: 200},
				},
			},
			{
				Name: "Color",
				Options: []VariantOption{
					{Name: "Red", Price: 0},
					{Name: "Gold", Price: 150},
				},
			},
		},
	}
}

func TestUnitPriceForBasePrice(t *testing.T) {
	p := acmeShirt()
	assert.Equal(t, 1000.0, p.UnitPriceFor(nil))
	assert.Equal(t, 1000.0, p.UnitPriceFor([]SelectedVariant{}))
}

func TestUnitPriceForAddsOptionDelta(t *testing.T) {
	p := acmeShirt()

	price := p.UnitPriceFor([]SelectedVariant{{Name: "Size", Value: "L"}})
	assert.Equal(t, 1200.0, price)

	// Two items at base plus the L delta
	assert.Equal(t, 2400.0, price*2)
}

func TestUnitPriceForSumsMultipleAxes(t *testing.T) {
	p := acmeShirt()
	price := p.UnitPriceFor([]SelectedVariant{
		{Name: "Size", Value: "L"},
		{Name: "Color", Value: "Gold"},
	})
	assert.Equal(t, 1350.0, price)
}

func TestUnitPriceForUnmatchedSelections(t *testing.T) {
	p := acmeShirt()

	// Unknown axis contributes nothing
	assert.Equal(t, 1000.0, p.UnitPriceFor([]SelectedVariant{{Name: "Material", Value: "Silk"}}))

	// Known axis, unknown option contributes nothing
	assert.Equal(t, 1000.0, p.UnitPriceFor([]SelectedVariant{{Name: "Size", Value: "XXL"}}))

	// Unmatched selections alongside matched ones still price the matched ones
	price := p.UnitPriceFor([]SelectedVariant{
		{Name: "Size", Value: "L"},
		{Name: "Material", Value: "Silk"},
	})
	assert.Equal(t, 1200.0, price)
}

func TestUnitPriceForZeroDeltaOption(t *testing.T) {
	p := acmeShirt()
	assert.Equal(t, 1000.0, p.UnitPriceFor([]SelectedVariant{{Name: "Size", Value: "S"}}))
}
