package projection

import "github.com/girlsgotgame/courtside/go/internal/models"

const (
	LiveFeedLimit = 20
	AuditLogLimit = 10
)

// ActivityFeed returns at most limit entries of a most-recent-first feed
func ActivityFeed(activities []models.GameActivity, limit int) []models.GameActivity {
	if limit < 0 || len(activities) <= limit {
		return activities
	}
	return activities[:limit]
}
