package controllers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

type tradeRequest struct {
	Player  string `json:"player" binding:"required"`
	StockID int    `json:"stock_id" binding:"required"`
	Delta   int    `json:"delta"`
}

// ExecuteTradeHandler runs one buy (positive delta) or sell (negative
// delta) through the trade desk.
func (ctl *Controller) ExecuteTradeHandler(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	intent := models.TransactionIntent{Team: req.Player, StockID: req.StockID, Delta: req.Delta}
	res, err := ctl.Desk.Execute(ctx, intent)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
	ctl.Hub.Publish(EventTradeExecuted, gin.H{
		"player":   req.Player,
		"stock_id": req.StockID,
		"delta":    req.Delta,
		"holding":  res.Holding,
		"balance":  res.Balance,
	})
}

// ValidateTradeHandler is a dry run of a trade. Rejections are reported in
// the body with a 200.
func (ctl *Controller) ValidateTradeHandler(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := ctl.Desk.Validate(ctx, req.Player, req.StockID, req.Delta)
	if reason, ok := engine.ReasonOf(err); ok {
		c.JSON(http.StatusOK, gin.H{"accepted": false, "reason": reason})
		return
	}
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

// UpdatePortfolioHandler applies a map of stock id to delta for one team,
// in ascending stock id order, stopping at the first failure.
func (ctl *Controller) UpdatePortfolioHandler(c *gin.Context) {
	player, ok := playerParam(c)
	if !ok {
		return
	}

	var changes map[string]int
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data format"})
		return
	}

	intents := make([]models.TransactionIntent, 0, len(changes))
	for key, delta := range changes {
		id, err := strconv.Atoi(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id: " + key})
			return
		}
		intents = append(intents, models.TransactionIntent{Team: player, StockID: id, Delta: delta})
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i].StockID < intents[j].StockID })

	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := ctl.Desk.ExecuteBatch(ctx, player, intents)
	if len(results) > 0 {
		ctl.Hub.Publish(EventTradeExecuted, gin.H{"player": player, "applied": len(results)})
	}
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}
