package routes

import (
	"github.com/gin-gonic/gin"

	"stock-exchange-game/controllers"
	"stock-exchange-game/models"
)

func WebSocketRoutes(r gin.IRouter, ctl *controllers.Controller, hub *models.Hub) {
	r.GET("/ws", ctl.WebSocketHandler(hub))
}
