// Package controllers holds the gin handlers of the game API and the game
// clock they drive.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stock-exchange-game/db"
	"stock-exchange-game/engine"
	"stock-exchange-game/trading"
)

// Websocket events published by the API.
const (
	EventTradeExecuted    = "trade_executed"
	EventYearUpdated      = "year_updated"
	EventGameStarted      = "game_started"
	EventGameStopped      = "game_stopped"
	EventPortfolioCreated = "portfolio_created"
	EventPortfolioDeleted = "portfolio_deleted"
)

const requestTimeout = 10 * time.Second

// Broadcaster publishes an event to every connected websocket client.
type Broadcaster interface {
	Publish(event string, data interface{})
}

// Controller carries the dependencies shared by the handlers.
type Controller struct {
	Store           db.Store
	Desk            *trading.Desk
	Hub             Broadcaster
	Game            *GameManager
	StartingBalance float64
	log             zerolog.Logger
}

// New returns a controller. game may be nil for handlers that do not touch
// the clock.
func New(store db.Store, desk *trading.Desk, hub Broadcaster, game *GameManager, startingBalance float64, log zerolog.Logger) *Controller {
	return &Controller{
		Store:           store,
		Desk:            desk,
		Hub:             hub,
		Game:            game,
		StartingBalance: startingBalance,
		log:             log.With().Str("component", "api").Logger(),
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// playerParam reads the mandatory player query parameter, writing a 400
// when it is missing.
func playerParam(c *gin.Context) (string, bool) {
	player := c.Query("player")
	if player == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player parameter is required"})
		return "", false
	}
	return player, true
}

// respondError maps domain errors onto HTTP status codes.
func (ctl *Controller) respondError(c *gin.Context, err error) {
	var r *engine.Rejection
	if errors.As(err, &r) {
		body := gin.H{"error": r.Error(), "reason": r.Reason}
		if r.Cause != "" {
			body["cause"] = r.Cause
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	switch {
	case errors.Is(err, engine.ErrUnknownStock), errors.Is(err, db.ErrTeamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrTeamExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrYearOutOfRange), errors.Is(err, db.ErrInvalidPricePoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctl.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
