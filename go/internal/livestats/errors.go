package livestats

import "errors"

var (
	// ErrUnknownPlayer is returned when a stat targets a player that is not on
	// the loaded roster
	ErrUnknownPlayer = errors.New("player is not on this game's roster")

	// ErrNotLoaded is returned by operations that need the game to be loaded
	ErrNotLoaded = errors.New("game not loaded")
)
