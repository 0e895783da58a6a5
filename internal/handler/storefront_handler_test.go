package handler

import (
	"testing"

	"github.com/convertly-dev/convertlykit/internal/model"

	"github.com/stretchr/testify/assert"
)

func filterableProduct() *model.Product {
	return &model.Product{
		Name: "Woven Basket",
		Properties: []model.PropertyValue{
			{PropertyID: 1, Value: "Rattan"},
			{PropertyID: 2, Value: float64(40)},
		},
	}
}

func TestMatchesPropertyFiltersNoFilters(t *testing.T) {
	assert.True(t, matchesPropertyFilters(filterableProduct(), nil))
	assert.True(t, matchesPropertyFilters(filterableProduct(), []PropertyFilter{}))
}

func TestMatchesPropertyFiltersEmptyValueSetPasses(t *testing.T) {
	filters := []PropertyFilter{{Key: 1, Value: nil}}
	assert.True(t, matchesPropertyFilters(filterableProduct(), filters))
}

func TestMatchesPropertyFiltersStringValue(t *testing.T) {
	assert.True(t, matchesPropertyFilters(filterableProduct(), []PropertyFilter{
		{Key: 1, Value: []string{"Rattan", "Bamboo"}},
	}))
	assert.False(t, matchesPropertyFilters(filterableProduct(), []PropertyFilter{
		{Key: 1, Value: []string{"Bamboo"}},
	}))
}

func TestMatchesPropertyFiltersMissingProperty(t *testing.T) {
	filters := []PropertyFilter{{Key: 99, Value: []string{"anything"}}}
	assert.False(t, matchesPropertyFilters(filterableProduct(), filters))
}

func TestMatchesPropertyFiltersNonStringValuePasses(t *testing.T) {
	// Numeric property values are not filterable and never exclude a product
	filters := []PropertyFilter{{Key: 2, Value: []string{"40"}}}
	assert.True(t, matchesPropertyFilters(filterableProduct(), filters))
}

func TestMatchesPropertyFiltersConjunction(t *testing.T) {
	product := filterableProduct()
	filters := []PropertyFilter{
		{Key: 1, Value: []string{"Rattan"}},
		{Key: 99, Value: []string{"anything"}},
	}
	assert.False(t, matchesPropertyFilters(product, filters))
}
