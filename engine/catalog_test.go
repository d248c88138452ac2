package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-exchange-game/models"
)

func TestCatalogFromSeries(t *testing.T) {
	points := []models.PricePoint{
		{StockID: 2, Name: "Marconi", Category: "science", Year: 1909, Price: 0},
		{StockID: 2, Name: "Marconi", Category: "science", Year: 1910, Price: 8},
		{StockID: 1, Name: "Chaplin", Category: "film_&_television", Year: 1909, Price: 14},
		{StockID: 1, Name: "Chaplin", Category: "film_&_television", Year: 1910, Price: 17},
		{StockID: 3, Name: "Einstein", Category: "science", Year: 1910, Price: 0},
		{StockID: 1, Name: "Chaplin", Category: "film_&_television", Year: 1908, Price: 11},
	}

	catalog, err := CatalogFromSeries(points, 1910)
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, []models.Stock{
		{StockID: 1, Name: "Chaplin", Category: "film_&_television", Price: 17, PreviousPrice: 14},
		{StockID: 2, Name: "Marconi", Category: "science", Price: 8, PreviousPrice: 0},
		{StockID: 3, Name: "Einstein", Category: "science", Price: 0, PreviousPrice: 0},
	}, catalog.Stocks())
	assert.Equal(t, []string{"film_&_television", "science"}, catalog.Categories())
	assert.Len(t, catalog.ByCategory("science"), 2)
	assert.Empty(t, catalog.ByCategory("sport"))
}

func TestCatalog_LookupUnknownFailsFast(t *testing.T) {
	catalog, err := NewCatalog([]models.Stock{{StockID: 1, Price: 3}})
	require.NoError(t, err)

	s, err := catalog.Lookup(1)
	require.NoError(t, err)
	assert.True(t, Born(s))

	_, err = catalog.Lookup(42)
	assert.ErrorIs(t, err, ErrUnknownStock)
	assert.Equal(t, 0.0, catalog.Price(42))
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog([]models.Stock{{StockID: 1}, {StockID: 1}})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = NewCatalog([]models.Stock{{StockID: 1, Price: -1}})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = CatalogFromSeries([]models.PricePoint{
		{StockID: 1, Year: 1900, Price: 1},
		{StockID: 1, Year: 1900, Price: 2},
	}, 1900)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
