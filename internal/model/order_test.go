package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrderSlug(t *testing.T) {
	assert.Equal(t, "ORD-00001", FormatOrderSlug(1))
	assert.Equal(t, "ORD-00042", FormatOrderSlug(42))
	assert.Equal(t, "ORD-99999", FormatOrderSlug(99999))
	// Sequences beyond the padding width keep growing rather than wrapping
	assert.Equal(t, "ORD-100000", FormatOrderSlug(100000))
}

func TestFormatOrderSlugStrictlyIncreasing(t *testing.T) {
	prev := FormatOrderSlug(1)
	for seq := int64(2); seq <= 200; seq++ {
		next := FormatOrderSlug(seq)
		assert.Greater(t, next, prev)
		prev = next
	}
}
