package routes

import (
	"github.com/gin-gonic/gin"

	"stock-exchange-game/controllers"
)

func TradeRoutes(r gin.IRouter, ctl *controllers.Controller) {
	r.POST("/trades", ctl.ExecuteTradeHandler)
	r.POST("/trades/validate", ctl.ValidateTradeHandler)
	r.POST("/update_portfolio", ctl.UpdatePortfolioHandler)
}
