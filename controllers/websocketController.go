package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/models"
	"stock-exchange-game/websocket"
)

// WebSocketHandler upgrades the connection and registers it with hub. The
// client first receives the game clock and the team list.
func (ctl *Controller) WebSocketHandler(hub *models.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		websocket.ServeWs(hub, c.Writer, c.Request, ctl.greeting, ctl.log)
	}
}

func (ctl *Controller) greeting(r *http.Request) []models.WSMessage {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msgs := []models.WSMessage{{Event: "welcome", Data: "connected to server"}}

	if state, err := ctl.Store.GetGame(ctx); err == nil {
		msgs = append(msgs, models.WSMessage{Event: "current_game", Data: gin.H{
			"current_year":  state.CurrentYear,
			"game_running":  state.Running,
			"next_interval": YearInterval(state.CurrentYear),
		}})
	} else {
		ctl.log.Warn().Err(err).Msg("Failed to load game for greeting")
	}

	if teams, err := ctl.Store.ListTeams(ctx); err == nil {
		names := make([]string, 0, len(teams))
		for _, t := range teams {
			names = append(names, t.Name)
		}
		msgs = append(msgs, models.WSMessage{Event: "all_portfolios", Data: names})
	} else {
		ctl.log.Warn().Err(err).Msg("Failed to load teams for greeting")
	}
	return msgs
}
