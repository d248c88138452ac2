package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type setYearRequest struct {
	Year int `json:"year" binding:"required"`
}

// GetGameHandler returns the game clock.
func (ctl *Controller) GetGameHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := ctl.Game.State(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current_year":  state.CurrentYear,
		"game_running":  state.Running,
		"next_interval": YearInterval(state.CurrentYear),
	})
}

// StartGameHandler starts the year clock.
func (ctl *Controller) StartGameHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := ctl.Game.Start(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game started", "game": state})
}

// StopGameHandler liquidates every team and stops the clock.
func (ctl *Controller) StopGameHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sales, err := ctl.Game.Stop(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game stopped", "sales": sales})
}

// RestartGameHandler rewinds the game and clears all teams.
func (ctl *Controller) RestartGameHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := ctl.Game.Restart(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game restarted", "game": state})
}

// SetYearHandler moves the clock to the requested year.
func (ctl *Controller) SetYearHandler(c *gin.Context) {
	var req setYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := ctl.Game.SetYear(ctx, req.Year)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "year updated", "game": state})
}

// LeaderboardHandler ranks the teams by net worth.
func (ctl *Controller) LeaderboardHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := ctl.Game.Leaderboard(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RecordScoresHandler stores the current net worth of every team.
func (ctl *Controller) RecordScoresHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	scores, err := ctl.Game.RecordScores(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// HighScoresHandler lists recorded scores, best first.
func (ctl *Controller) HighScoresHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	scores, err := ctl.Store.HighScores(ctx)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}
