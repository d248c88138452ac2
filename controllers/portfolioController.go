package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

// TeamSummary is the list view of a team with its valuation at current
// prices.
type TeamSummary struct {
	Name           string  `json:"teamName"`
	Balance        float64 `json:"balance"`
	StocksOwned    int     `json:"stocks_owned"`
	PortfolioValue float64 `json:"portfolio_value"`
	NetWorth       float64 `json:"net_worth"`
}

// CreatePortfolioHandler creates a team with the starting balance and
// broadcasts the event.
func (ctl *Controller) CreatePortfolioHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	team := models.NewTeam(player, ctl.StartingBalance)
	if err := ctl.Store.CreateTeam(ctx, team); err != nil {
		ctl.respondError(c, err)
		return
	}

	ctl.log.Info().Str("team", player).Float64("balance", team.Balance).Msg("Team created")
	c.JSON(http.StatusCreated, gin.H{"message": "portfolio created", "portfolio": team})
	ctl.Hub.Publish(EventPortfolioCreated, player)
}

// GetPortfolioHandler lists the team's open positions at current prices,
// most profitable first.
func (ctl *Controller) GetPortfolioHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	team, err := ctl.Store.GetTeam(ctx, player)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	catalog, year, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	rows := engine.Valuate(team, catalog)
	engine.ByProfitDesc(rows)
	c.JSON(http.StatusOK, gin.H{
		"current_year": year,
		"positions":    rows,
		"total_value":  engine.TotalValue(team, catalog),
		"total_profit": engine.TotalProfit(team, catalog),
	})
}

// DeletePortfolioHandler removes a team and its watch list.
func (ctl *Controller) DeletePortfolioHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ctl.Store.DeleteTeam(ctx, player); err != nil {
		ctl.respondError(c, err)
		return
	}

	ctl.log.Info().Str("team", player).Msg("Team deleted")
	c.JSON(http.StatusOK, gin.H{"message": "portfolio deleted"})
	ctl.Hub.Publish(EventPortfolioDeleted, player)
}

// GetPortfoliosHandler lists every team with its valuation.
func (ctl *Controller) GetPortfoliosHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	teams, err := ctl.Store.ListTeams(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	catalog, _, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	out := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		value := engine.TotalValue(t, catalog)
		out = append(out, TeamSummary{
			Name:           t.Name,
			Balance:        t.Balance,
			StocksOwned:    engine.TotalOwned(t),
			PortfolioValue: value,
			NetWorth:       t.Balance + value,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PlayerInfoHandler returns the header data of a team: cash, holdings
// summary, the game clock and the completed sales log.
func (ctl *Controller) PlayerInfoHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	team, err := ctl.Store.GetTeam(ctx, player)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	game, err := ctl.Store.GetGame(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	catalog, err := ctl.Desk.CatalogAt(ctx, game.CurrentYear)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teamName":        team.Name,
		"stocks_owned":    engine.TotalOwned(team),
		"balance":         team.Balance,
		"portfolio_value": engine.TotalValue(team, catalog),
		"game_running":    game.Running,
		"current_year":    game.CurrentYear,
		"completed_sales": team.CompletedSales,
	})
}
