package projection

import (
	"time"

	"github.com/girlsgotgame/courtside/go/internal/livestats"
	"github.com/girlsgotgame/courtside/go/internal/models"
)

// View is everything a game-detail screen renders, derived from one snapshot
type View struct {
	Game        models.Game             `json:"game"`
	Status      DisplayStatus           `json:"status"`
	Winner      Winner                  `json:"winner,omitempty"`
	Roster      []models.GamePlayer     `json:"roster"`
	Totals      map[string]PlayerTotals `json:"totals"`
	LiveFeed    []models.GameActivity   `json:"liveFeed"`
	AuditLog    []models.GameActivity   `json:"auditLog"`
	Comments    []models.Comment        `json:"comments"`
	LiveUpdates bool                    `json:"liveUpdates"`
}

// Build derives the view. It holds no state of its own.
func Build(snap livestats.Snapshot, viewer models.Viewer, now time.Time) View {
	roster := VisibleRoster(snap.Players, viewer)

	totals := make(map[string]PlayerTotals, len(roster))
	for _, p := range roster {
		totals[p.ID] = TotalsFor(p.Stats, snap.Pending[p.ID])
	}

	return View{
		Game:        snap.Game,
		Status:      DeriveStatus(snap.Game, now),
		Winner:      DeriveWinner(snap.Game),
		Roster:      roster,
		Totals:      totals,
		LiveFeed:    ActivityFeed(snap.Activities, LiveFeedLimit),
		AuditLog:    ActivityFeed(snap.Activities, AuditLogLimit),
		Comments:    snap.Comments,
		LiveUpdates: snap.Connected,
	}
}
