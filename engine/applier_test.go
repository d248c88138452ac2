package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-exchange-game/models"
)

func newTestApplier(policy Policy) *Applier {
	a := NewApplier(NewValidator(policy))
	a.newID = func() string { return "sale-1" }
	return a
}

func assertInvariants(t *testing.T, team *models.Team, policy Policy) {
	t.Helper()
	assert.GreaterOrEqual(t, team.Balance, 0.0)
	total := 0
	for id, h := range team.Holdings {
		assert.GreaterOrEqual(t, h.Owned, 0, "stock %d", id)
		assert.LessOrEqual(t, h.Owned, policy.PerStockCap, "stock %d", id)
		total += h.Owned
	}
	assert.LessOrEqual(t, total, policy.PortfolioCap)
}

func TestApply_BuyNewPosition(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(100, nil)

	res, err := a.Apply(team, stock(1, 10), 10, 1925)
	require.NoError(t, err)

	assert.Equal(t, models.Holding{Owned: 10, PurchasePrice: 10, YearPurchased: 1925}, res.Holding)
	assert.Nil(t, res.Sale)
	assert.Equal(t, 0.0, team.Balance)
	assert.Equal(t, res.Holding, team.Holding(1))
	assertInvariants(t, team, DefaultPolicy())
}

func TestApply_AveragesCostBasis(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(1000, map[int]models.Holding{1: {Owned: 10, PurchasePrice: 10, YearPurchased: 1910}})

	res, err := a.Apply(team, stock(1, 20), 10, 1920)
	require.NoError(t, err)

	assert.Equal(t, 20, res.Holding.Owned)
	assert.InDelta(t, 15.0, res.Holding.PurchasePrice, 1e-9)
	assert.Equal(t, 1910, res.Holding.YearPurchased)
	assert.Equal(t, 800.0, team.Balance)
}

func TestApply_PartialSellRecordsSale(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(0, map[int]models.Holding{1: {Owned: 5, PurchasePrice: 20}})
	s := stock(1, 35)

	res, err := a.Apply(team, s, -3, 1950)
	require.NoError(t, err)
	require.NotNil(t, res.Sale)

	assert.Equal(t, models.SaleRecord{
		ID:               "sale-1",
		StockID:          1,
		StockName:        s.Name,
		PricePurchased:   20,
		QuantitySold:     3,
		PriceSold:        35,
		Profit:           45,
		PercentageReturn: 75,
		SaleYear:         1950,
	}, *res.Sale)
	assert.Equal(t, 2, team.Holding(1).Owned)
	assert.Equal(t, 20.0, team.Holding(1).PurchasePrice)
	assert.Equal(t, 105.0, team.Balance)
	require.Len(t, team.CompletedSales, 1)
	assert.Equal(t, *res.Sale, team.CompletedSales[0])
}

func TestApply_RoundTripRestoresBalance(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(500, nil)

	_, err := a.Apply(team, stock(3, 12.5), 7, 1930)
	require.NoError(t, err)
	_, err = a.Apply(team, stock(3, 12.5), -7, 1930)
	require.NoError(t, err)

	assert.Equal(t, 500.0, team.Balance)
	assert.Equal(t, models.Holding{}, team.Holding(3))
	_, present := team.Holdings[3]
	assert.False(t, present)
	require.Len(t, team.CompletedSales, 1)
	assert.Equal(t, 0.0, team.CompletedSales[0].Profit)
}

func TestApply_LiquidateDelisted(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(0, map[int]models.Holding{1: {Owned: 5, PurchasePrice: 10}})

	res, err := a.Apply(team, stock(1, 0), -5, 1960)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Holding.Owned)
	assert.Equal(t, 0.0, res.Holding.PurchasePrice)
	assert.Equal(t, -50.0, res.Sale.Profit)
	assert.Equal(t, -100.0, res.Sale.PercentageReturn)
	assert.Equal(t, 0.0, team.Balance)
}

func TestApply_ZeroCostBasisHasZeroReturn(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(0, map[int]models.Holding{1: {Owned: 4, PurchasePrice: 0}})

	res, err := a.Apply(team, stock(1, 10), -4, 1960)
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Sale.Profit)
	assert.Equal(t, 0.0, res.Sale.PercentageReturn)
}

func TestApply_SpendsBalanceToExactlyZero(t *testing.T) {
	policy := DefaultPolicy()
	a := newTestApplier(policy)
	team := teamWith(0.3, nil)

	res, err := a.Apply(team, stock(1, 0.1), 3, 1900)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Balance)
	assertInvariants(t, team, policy)

	res, err = a.Apply(team, stock(1, 0.1), -3, 1901)
	require.NoError(t, err)
	assert.Equal(t, 0.3, res.Balance)
}

func TestApply_StaleStateLeavesTeamUntouched(t *testing.T) {
	a := newTestApplier(DefaultPolicy())
	team := teamWith(50, nil)
	before := team.Clone()

	_, err := a.Apply(team, stock(1, 10), 6, 1900)
	require.Error(t, err)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, StaleStateRejected, rej.Reason)
	assert.Equal(t, InsufficientBalance, rej.Cause)
	assert.True(t, IsStale(err))
	assert.Equal(t, before, team)
}

func TestApply_InvariantsAcrossSequence(t *testing.T) {
	policy := DefaultPolicy()
	a := newTestApplier(policy)
	team := teamWith(100000, nil)

	deltas := []struct {
		id    int
		delta int
	}{
		{1, 75}, {1, 1}, {2, 75}, {3, 75}, {4, 75}, {5, 75}, {6, 75}, {7, 75}, {8, 75}, {9, 1},
		{1, -75}, {9, 1}, {2, -10}, {2, -66},
	}
	for _, d := range deltas {
		_, _ = a.Apply(team, stock(d.id, 3), d.delta, 1970)
		assertInvariants(t, team, policy)
	}
	assert.Equal(t, 600-75-10+1, TotalOwned(team))
}
