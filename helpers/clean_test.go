package helpers

import (
	"testing"

	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestCleanPrice(t *testing.T) {
	price, err := CleanPrice("$1,234.56")
	assert.NoError(t, err)
	assert.Equal(t, 1234.56, price)

	price, err = CleanPrice("US $12.99")
	assert.NoError(t, err)
	assert.Equal(t, 12.99, price)

	price, err = CleanPrice("30")
	assert.NoError(t, err)
	assert.Equal(t, 30.0, price)

	_, err = CleanPrice("Free")
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParsing))

	_, err = CleanPrice("")
	assert.Error(t, err)

	_, err = CleanPrice("Contact seller")
	assert.Error(t, err)
}

func TestCleanRating(t *testing.T) {
	rating, err := CleanRating("99.4% positive feedback")
	assert.NoError(t, err)
	assert.Equal(t, 99.4, rating)

	rating, err = CleanRating("100%")
	assert.NoError(t, err)
	assert.Equal(t, 100.0, rating)

	// Feedback count before the percentage must not win
	rating, err = CleanRating("techdeals_store (52,786) 99.4%")
	assert.NoError(t, err)
	assert.Equal(t, 99.4, rating)

	rating, err = CleanRating("Seller with 1,024 reviews, 98% positive")
	assert.NoError(t, err)
	assert.Equal(t, 98.0, rating)

	_, err = CleanRating("no feedback yet")
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParsing))

	_, err = CleanRating("850%")
	assert.Error(t, err)
}
