package projection

import (
	"github.com/girlsgotgame/courtside/go/internal/livestats"
	"github.com/girlsgotgame/courtside/go/internal/models"
)

// PlayerTotals are the display aggregates of one roster entry
type PlayerTotals struct {
	Points   int `json:"points"`
	Rebounds int `json:"rebounds"`
	Steals   int `json:"steals"`
	Pending  int `json:"pending"` // optimistic entries not yet confirmed
}

func (t *PlayerTotals) add(statType models.StatType) {
	// canonical mapping, never the stored value
	t.Points += statType.Points()
	switch statType {
	case models.StatRebound:
		t.Rebounds++
	case models.StatSteal:
		t.Steals++
	}
}

// TotalsFor aggregates confirmed stats plus pending optimistic entries
func TotalsFor(stats []models.PlayerStat, pending []livestats.OptimisticEntry) PlayerTotals {
	var t PlayerTotals
	for _, s := range stats {
		t.add(s.StatType)
	}
	for _, e := range pending {
		t.add(e.StatType)
		t.Pending++
	}
	return t
}

// Totals returns the aggregates of every roster entry keyed by player id
func Totals(snap livestats.Snapshot) map[string]PlayerTotals {
	out := make(map[string]PlayerTotals, len(snap.Players))
	for _, p := range snap.Players {
		out[p.ID] = TotalsFor(p.Stats, snap.Pending[p.ID])
	}
	return out
}

// TeamPoints sums the points of all given players
func TeamPoints(totals map[string]PlayerTotals) int {
	sum := 0
	for _, t := range totals {
		sum += t.Points
	}
	return sum
}
