package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

// GetWatchListHandler returns the team's watch list.
func (ctl *Controller) GetWatchListHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := ctl.Store.GetTeam(ctx, player); err != nil {
		ctl.respondError(c, err)
		return
	}
	list, err := ctl.Store.GetWatchList(ctx, player)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateWatchListHandler creates, replaces or removes the entry for one
// stock. An entry with both alerts off removes the stock from the list.
func (ctl *Controller) UpdateWatchListHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	var entry models.WatchListEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry.StockID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_id is required"})
		return
	}
	if entry.ValueAlertEnabled && entry.ValueAlert == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valueAlert is required when valueAlertEnabled is set"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	outcome, err := ctl.Desk.UpdateWatchList(ctx, player, entry)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// GetAlertsHandler evaluates the team's watch list against current prices.
func (ctl *Controller) GetAlertsHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := ctl.Store.GetTeam(ctx, player); err != nil {
		ctl.respondError(c, err)
		return
	}
	list, err := ctl.Store.GetWatchList(ctx, player)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	catalog, year, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	events := engine.NewAlertEvaluator(ctl.Desk.Policy()).Evaluate(list, catalog.Stocks())
	c.JSON(http.StatusOK, gin.H{"current_year": year, "alerts": events})
}
