package dto

import "github.com/google/uuid"

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Rank    int       `json:"rank"`
	UserID  uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Points  int       `json:"points"`
	Reports int       `json:"reports"`
}

type IncrementRequest struct {
	Field  string `json:"field"`
	Amount int    `json:"amount"`
}
