package routes

import (
	"github.com/gin-gonic/gin"

	"stock-exchange-game/controllers"
)

func PortfolioRoutes(r gin.IRouter, ctl *controllers.Controller) {
	r.POST("/portfolio", ctl.CreatePortfolioHandler)
	r.GET("/portfolio", ctl.GetPortfolioHandler)
	r.DELETE("/portfolio", ctl.DeletePortfolioHandler)
	r.GET("/portfolios", ctl.GetPortfoliosHandler)
	r.GET("/player_info", ctl.PlayerInfoHandler)
	r.GET("/watch_list", ctl.GetWatchListHandler)
	r.POST("/watch_list", ctl.UpdateWatchListHandler)
	r.GET("/alerts", ctl.GetAlertsHandler)
}
