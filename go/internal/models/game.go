package models

import "time"

// GameStatus is the lifecycle state stored on a game
type GameStatus string

const (
	GameStatusUpcoming  GameStatus = "upcoming"
	GameStatusLive      GameStatus = "live"
	GameStatusCompleted GameStatus = "completed"
)

// Valid reports whether s is one of the known statuses
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusUpcoming, GameStatusLive, GameStatusCompleted:
		return true
	}
	return false
}

// Game represents a single scheduled game between two teams
type Game struct {
	ID           string     `json:"id"`
	ScheduledAt  time.Time  `json:"scheduledAt"`
	HomeTeam     string     `json:"homeTeam"`
	AwayTeam     string     `json:"awayTeam"`
	HomeScore    *int       `json:"homeScore"` // nil until recorded
	AwayScore    *int       `json:"awayScore"` // nil until recorded
	Status       GameStatus `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	SharedToFeed bool       `json:"isSharedToFeed"`
}

// HasScore reports whether both scores have been recorded
func (g *Game) HasScore() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Comment is a free-text comment left on a game
type Comment struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameDetail is the payload of GET /games/:id
type GameDetail struct {
	Game     Game      `json:"game"`
	Comments []Comment `json:"comments"`
}

// ScoreUpdate is the body of PATCH /games/:id/score
type ScoreUpdate struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

// StatusUpdate is the body of PATCH /games/:id/status
type StatusUpdate struct {
	Status GameStatus `json:"status"`
	Notes  string     `json:"notes"`
}
