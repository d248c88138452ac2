package routes

import (
	"github.com/gin-gonic/gin"

	"stock-exchange-game/controllers"
)

func GameRoutes(r gin.IRouter, ctl *controllers.Controller) {
	r.GET("/game", ctl.GetGameHandler)
	r.POST("/game/start", ctl.StartGameHandler)
	r.POST("/game/stop", ctl.StopGameHandler)
	r.POST("/game/restart", ctl.RestartGameHandler)
	r.POST("/game/year", ctl.SetYearHandler)
	r.GET("/leaderboard", ctl.LeaderboardHandler)
	r.GET("/scores", ctl.HighScoresHandler)
	r.POST("/scores", ctl.RecordScoresHandler)
}
