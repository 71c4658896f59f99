package livestats

import (
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// OptimisticEntry is a stat shown before the server has confirmed it. It is
// identified by (PlayerID, Timestamp) and never changed after creation.
type OptimisticEntry struct {
	PlayerID  string
	StatType  models.StatType
	Value     int
	Timestamp time.Time // client-side, used as the correlation key
	Seq       uint64    // session sequence number at creation
}

// Queue holds pending optimistic entries per player in insertion order
type Queue struct {
	entries map[string][]OptimisticEntry
}

func NewQueue() *Queue {
	return &Queue{entries: make(map[string][]OptimisticEntry)}
}

// Add appends an entry to its player's list
func (q *Queue) Add(entry OptimisticEntry) {
	q.entries[entry.PlayerID] = append(q.entries[entry.PlayerID], entry)
}

// Remove drops the entry whose timestamp matches exactly. It reports whether
// an entry was removed; removing an unknown entry is a no-op.
func (q *Queue) Remove(playerID string, ts time.Time) bool {
	list := q.entries[playerID]
	for i, e := range list {
		if e.Timestamp.Equal(ts) {
			rest := make([]OptimisticEntry, 0, len(list)-1)
			rest = append(rest, list[:i]...)
			rest = append(rest, list[i+1:]...)
			if len(rest) == 0 {
				delete(q.entries, playerID)
			} else {
				q.entries[playerID] = rest
			}
			return true
		}
	}
	return false
}

// Pending returns a copy of the player's pending entries
func (q *Queue) Pending(playerID string) []OptimisticEntry {
	return append([]OptimisticEntry(nil), q.entries[playerID]...)
}

// Len is the number of pending entries across all players
func (q *Queue) Len() int {
	n := 0
	for _, list := range q.entries {
		n += len(list)
	}
	return n
}

// All returns a copy of every pending list keyed by player id
func (q *Queue) All() map[string][]OptimisticEntry {
	out := make(map[string][]OptimisticEntry, len(q.entries))
	for id, list := range q.entries {
		out[id] = append([]OptimisticEntry(nil), list...)
	}
	return out
}
