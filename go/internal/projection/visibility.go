package projection

import "github.com/girlsgotgame/courtside/go/internal/models"

// VisibleRoster filters the roster for the viewer. Parents only see players
// linked, directly or through a manual player record, to one of their
// children. Every other role sees the full roster.
func VisibleRoster(players []models.GamePlayer, viewer models.Viewer) []models.GamePlayer {
	if viewer.Role != models.RoleParent {
		return players
	}

	children := make(map[string]bool, len(viewer.ChildIDs))
	for _, id := range viewer.ChildIDs {
		children[id] = true
	}

	visible := make([]models.GamePlayer, 0, len(players))
	for _, p := range players {
		for _, id := range p.LinkedUserIDs() {
			if children[id] {
				visible = append(visible, p)
				break
			}
		}
	}
	return visible
}
