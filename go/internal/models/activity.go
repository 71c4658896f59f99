package models

import "time"

// GameActivity is one entry of a game's append-only activity feed
type GameActivity struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	Description string    `json:"description"`
	PerformedBy string    `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
