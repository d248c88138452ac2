package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/db"
	"stock-exchange-game/models"
)

// GetCategoriesHandler lists the categories present in the current year.
func (ctl *Controller) GetCategoriesHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	catalog, _, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	categories := catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetStocksHandler returns the current-year catalog with each stock's
// previous-year price.
func (ctl *Controller) GetStocksHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	catalog, _, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog.Stocks())
}

// GetStocksByCategoryHandler returns the stocks of one category.
func (ctl *Controller) GetStocksByCategoryHandler(c *gin.Context) {
	category := c.Param("category")

	ctx, cancel := requestContext(c)
	defer cancel()

	catalog, _, err := ctl.Desk.Catalog(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	stocks := catalog.ByCategory(category)
	if stocks == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid category"})
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// UploadPricesHandler stores a batch of price timeline entries.
func (ctl *Controller) UploadPricesHandler(c *gin.Context) {
	var points []models.PricePoint
	if err := c.ShouldBindJSON(&points); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := db.ValidatePricePoints(points); err != nil {
		ctl.respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ctl.Store.UpsertPricePoints(ctx, points); err != nil {
		ctl.respondError(c, err)
		return
	}
	ctl.log.Info().Int("points", len(points)).Msg("Price points stored")
	c.JSON(http.StatusOK, gin.H{"stored": len(points)})
}
