package models

// ParticipationType discriminates how a roster entry refers to a player
type ParticipationType string

const (
	ParticipationDirect ParticipationType = "direct" // registered user account
	ParticipationManual ParticipationType = "manual" // historical player record
	ParticipationMixed  ParticipationType = "mixed"  // manual record linked to a user
)

// ManualPlayer is a player record that is not tied to a registered account.
// It may be linked to a user later on.
type ManualPlayer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LinkedUserID *string `json:"linkedUserId,omitempty"`
}

// GamePlayer is one roster entry of a game together with its stats
type GamePlayer struct {
	ID                string            `json:"id"`
	GameID            string            `json:"gameId"`
	Name              string            `json:"name"`
	UserID            *string           `json:"userId,omitempty"`
	ManualPlayerID    *string           `json:"manualPlayerId,omitempty"`
	ManualPlayer      *ManualPlayer     `json:"manualPlayer,omitempty"`
	ParticipationType ParticipationType `json:"participationType"`
	JerseyNumber      *int              `json:"jerseyNumber,omitempty"`
	IsStarter         bool              `json:"isStarter"`
	Stats             []PlayerStat      `json:"stats"`
}

// LinkedUserIDs returns every user account this roster entry belongs to,
// either directly or through its manual player record.
func (p *GamePlayer) LinkedUserIDs() []string {
	var ids []string
	if p.UserID != nil && *p.UserID != "" {
		ids = append(ids, *p.UserID)
	}
	if p.ManualPlayer != nil && p.ManualPlayer.LinkedUserID != nil && *p.ManualPlayer.LinkedUserID != "" {
		ids = append(ids, *p.ManualPlayer.LinkedUserID)
	}
	return ids
}

// HasStat reports whether a stat with the given id is in the player's list
func (p *GamePlayer) HasStat(statID string) bool {
	for _, s := range p.Stats {
		if s.ID == statID {
			return true
		}
	}
	return false
}
