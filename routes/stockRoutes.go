package routes

import (
	"github.com/gin-gonic/gin"

	"stock-exchange-game/controllers"
)

func StockRoutes(r gin.IRouter, ctl *controllers.Controller) {
	r.GET("/categories", ctl.GetCategoriesHandler)
	r.GET("/stocks", ctl.GetStocksHandler)
	r.GET("/stocks/:category", ctl.GetStocksByCategoryHandler)
	r.POST("/prices", ctl.UploadPricesHandler)
}
