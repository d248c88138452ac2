package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-exchange-game/models"
)

func TestCurrentValueAndPotentialProfit(t *testing.T) {
	h := models.Holding{Owned: 4, PurchasePrice: 12}
	s := models.Stock{StockID: 1, Price: 15}

	assert.Equal(t, 60.0, CurrentValue(h, s))
	assert.Equal(t, 12.0, PotentialProfit(h, s))
	assert.Equal(t, 0.0, CurrentValue(models.Holding{}, s))
}

func TestAggregates(t *testing.T) {
	catalog, err := NewCatalog([]models.Stock{
		{StockID: 1, Name: "Pathé", Price: 10},
		{StockID: 2, Name: "Reuters", Price: 20},
	})
	require.NoError(t, err)

	team := teamWith(50, map[int]models.Holding{
		1: {Owned: 3, PurchasePrice: 8},
		2: {Owned: 2, PurchasePrice: 25},
		9: {Owned: 5, PurchasePrice: 4}, // not in this year's catalog
	})

	assert.Equal(t, 10, TotalOwned(team))
	assert.Equal(t, 70.0, TotalValue(team, catalog))
	assert.Equal(t, 70.0-24-50-20, TotalProfit(team, catalog))
	assert.Equal(t, 120.0, NetWorth(team, catalog))
}

func TestValuate_SortsByProfit(t *testing.T) {
	catalog, err := NewCatalog([]models.Stock{
		{StockID: 1, Name: "Low", Category: "music", Price: 10},
		{StockID: 2, Name: "High", Category: "sport", Price: 30},
		{StockID: 3, Name: "Flat", Category: "music", Price: 5},
	})
	require.NoError(t, err)
	team := teamWith(0, map[int]models.Holding{
		1: {Owned: 2, PurchasePrice: 12},
		2: {Owned: 1, PurchasePrice: 10},
		3: {Owned: 6, PurchasePrice: 5},
	})

	rows := Valuate(team, catalog)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].StockID, rows[1].StockID, rows[2].StockID})

	ByProfitDesc(rows)
	assert.Equal(t, "High", rows[0].Name)
	assert.Equal(t, 20.0, rows[0].PotentialProfit)
	assert.Equal(t, "Flat", rows[1].Name)
	assert.Equal(t, "Low", rows[2].Name)
	assert.Equal(t, -4.0, rows[2].PotentialProfit)
}

func TestValuate_UnknownStock(t *testing.T) {
	catalog, err := NewCatalog(nil)
	require.NoError(t, err)
	team := teamWith(0, map[int]models.Holding{7: {Owned: 2, PurchasePrice: 3}})

	rows := Valuate(team, catalog)
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown", rows[0].Name)
	assert.Equal(t, 0.0, rows[0].CurrentValue)
	assert.Equal(t, -6.0, rows[0].PotentialProfit)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1234.6, Round(1234.55, 1))
	assert.Equal(t, 0.33, Round(1.0/3.0, 2))
	assert.Equal(t, -2.5, Round(-2.45, 1))
}
