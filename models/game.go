package models

import (
	"time"
)

// Timeline bounds of the game.
const (
	FirstYear = 1900
	LastYear  = 2024
)

// GameState is the persisted clock of the game.
type GameState struct {
	CurrentYear int       `json:"current_year" bson:"current_year"`
	Running     bool      `json:"game_running" bson:"game_running"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at"`
}

// HighScore is a recorded end-of-game result.
type HighScore struct {
	TeamName   string    `json:"team_name" bson:"team_name"`
	TotalValue float64   `json:"total_value" bson:"total_value"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}

// LeaderboardRow is one line of the live player table.
type LeaderboardRow struct {
	Name       string  `json:"name"`
	TotalValue float64 `json:"total_value"`
}
