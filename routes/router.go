// Package routes mounts the game API on a gin engine.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stock-exchange-game/controllers"
	"stock-exchange-game/models"
)

// Setup builds the engine with recovery, CORS and request logging, and
// mounts every route. hub may be nil when no websocket endpoint is wanted.
func Setup(ctl *controllers.Controller, hub *models.Hub, log zerolog.Logger) *gin.Engine {
	log = log.With().Str("component", "server").Logger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Link"},
		MaxAge:          5 * time.Minute,
	}))
	r.Use(requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	StockRoutes(api, ctl)
	PortfolioRoutes(api, ctl)
	TradeRoutes(api, ctl)
	GameRoutes(api, ctl)

	if hub != nil {
		WebSocketRoutes(r, ctl, hub)
	}
	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("duration_ms", time.Since(start)).
			Msg("HTTP request")
	}
}
