package push

import (
	"encoding/json"
	"fmt"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// Event is the envelope of every server-to-client message
type Event struct {
	Name EventName       `json:"event"`
	Data json.RawMessage `json:"data"`
}

// EventName identifies the payload carried by an Event
type EventName string

const (
	EventScoreUpdated  EventName = "game:score-updated"
	EventActivityAdded EventName = "game:activity-added"
)

// ScoreUpdated is authoritative: receivers overwrite their scores with it
type ScoreUpdated struct {
	GameID    string `json:"gameId"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

// ActivityAdded announces a new feed entry. Stat and StatRemoved only say
// that stats changed; the payload is not a complete picture of them.
type ActivityAdded struct {
	GameID      string              `json:"gameId"`
	Activity    models.GameActivity `json:"activity"`
	Stat        *models.PlayerStat  `json:"stat,omitempty"`
	StatRemoved bool                `json:"statRemoved,omitempty"`
}

// StatChanged reports whether receivers have to refetch stats
func (a ActivityAdded) StatChanged() bool {
	return a.Stat != nil || a.StatRemoved
}

// NewEvent wraps a payload into an envelope
func NewEvent(name EventName, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return &Event{Name: name, Data: data}, nil
}

// ParseEventPayload decodes the event data into the matching payload struct.
// Unknown events yield a nil payload and no error.
func ParseEventPayload(event *Event) (interface{}, error) {
	switch event.Name {
	case EventScoreUpdated:
		var payload ScoreUpdated
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventActivityAdded:
		var payload ActivityAdded
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil
	}
}

// GameIDOf returns the game a decoded payload belongs to
func GameIDOf(payload interface{}) string {
	switch p := payload.(type) {
	case ScoreUpdated:
		return p.GameID
	case ActivityAdded:
		return p.GameID
	}
	return ""
}

// ControlType is the kind of a client-to-server subscription message
type ControlType string

const (
	ControlJoinGame  ControlType = "join_game"
	ControlLeaveGame ControlType = "leave_game"
)

// ControlMessage subscribes to or unsubscribes from one game's channel
type ControlMessage struct {
	Type   ControlType `json:"type"`
	GameID string      `json:"gameId"`
}
