package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownStatType is returned when a stat type is outside the fixed enumeration
var ErrUnknownStatType = errors.New("unknown stat type")

// StatType is the kind of event recorded for a player
type StatType string

const (
	StatTwoPointer   StatType = "2pt"
	StatThreePointer StatType = "3pt"
	StatFreeThrow    StatType = "1pt"
	StatSteal        StatType = "steal"
	StatRebound      StatType = "rebound"
)

// ParseStatType validates a raw stat type string
func ParseStatType(s string) (StatType, error) {
	t := StatType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known stat types
func (t StatType) Valid() bool {
	switch t {
	case StatTwoPointer, StatThreePointer, StatFreeThrow, StatSteal, StatRebound:
		return true
	}
	return false
}

// IsPoints reports whether t is a scoring stat
func (t StatType) IsPoints() bool {
	return t.Points() > 0
}

// Points is the canonical point value of t. Totals must use this and never
// the stored value of a stat.
func (t StatType) Points() int {
	switch t {
	case StatThreePointer:
		return 3
	case StatTwoPointer:
		return 2
	case StatFreeThrow:
		return 1
	}
	return 0
}

// DefaultValue is the value sent when the caller does not provide one
func (t StatType) DefaultValue() int {
	if p := t.Points(); p > 0 {
		return p
	}
	return 1
}

// StatSource tells whether a stat was entered during the game or afterwards
type StatSource string

const (
	StatSourceLive   StatSource = "live"
	StatSourceManual StatSource = "manual"
)

// PlayerStat is a single recorded stat for a roster entry
type PlayerStat struct {
	ID            string     `json:"id"`
	GamePlayerID  string     `json:"gamePlayerId"`
	StatType      StatType   `json:"statType"`
	Value         int        `json:"value"`
	Quarter       *int       `json:"quarter,omitempty"`
	TimeInQuarter *string    `json:"timeInQuarter,omitempty"`
	Source        StatSource `json:"source"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewStat is the body of POST /games/:id/players/:playerId/stats
type NewStat struct {
	StatType StatType `json:"statType"`
	Value    int      `json:"value"`
}
