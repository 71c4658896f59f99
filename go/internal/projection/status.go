package projection

import (
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// DisplayStatus is the status shown to users, derived from scores and time
type DisplayStatus string

const (
	StatusUpcoming   DisplayStatus = "upcoming"
	StatusInProgress DisplayStatus = "in-progress"
	StatusCompleted  DisplayStatus = "completed"
)

// Winner of a completed game
type Winner string

const (
	WinnerNone Winner = ""
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerTie  Winner = "tie"
)

// DeriveStatus is completed once both scores exist, in progress once the
// scheduled time has passed, and upcoming otherwise.
func DeriveStatus(game models.Game, now time.Time) DisplayStatus {
	if game.HasScore() {
		return StatusCompleted
	}
	if !game.ScheduledAt.IsZero() && game.ScheduledAt.Before(now) {
		return StatusInProgress
	}
	return StatusUpcoming
}

// DeriveWinner compares the scores of a completed game
func DeriveWinner(game models.Game) Winner {
	if !game.HasScore() {
		return WinnerNone
	}
	switch {
	case *game.HomeScore > *game.AwayScore:
		return WinnerHome
	case *game.AwayScore > *game.HomeScore:
		return WinnerAway
	default:
		return WinnerTie
	}
}
