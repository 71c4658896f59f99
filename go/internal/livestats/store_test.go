package livestats

import (
	"errors"
	"testing"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

func loadedStore(t *testing.T, stats ...models.PlayerStat) *Store {
	t.Helper()
	s := NewStore("g1")
	seq := s.BeginRefetch()
	players := []models.GamePlayer{{ID: "p1", GameID: "g1", Stats: stats}, {ID: "p2", GameID: "g1"}}
	if !s.ApplyRefetch(seq, &models.GameDetail{Game: models.Game{ID: "g1"}}, players) {
		t.Fatal("initial load was not applied")
	}
	return s
}

func statIDs(p models.GamePlayer) []string {
	ids := make([]string, 0, len(p.Stats))
	for _, s := range p.Stats {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestStoreDiscardsStaleRefetch(t *testing.T) {
	s := loadedStore(t)

	older := s.BeginRefetch()
	newer := s.BeginRefetch()

	fresh := []models.GamePlayer{{ID: "p1", Stats: []models.PlayerStat{{ID: "s2", StatType: models.StatTwoPointer}}}}
	stale := []models.GamePlayer{{ID: "p1"}}

	if !s.ApplyRefetch(newer, nil, fresh) {
		t.Fatal("newer refetch should apply")
	}
	if s.ApplyRefetch(older, nil, stale) {
		t.Fatal("older refetch landing late must be discarded")
	}

	snap := s.Snapshot()
	if len(snap.Players) != 1 || len(snap.Players[0].Stats) != 1 {
		t.Fatalf("stale data overwrote newer data: %+v", snap.Players)
	}
}

func TestStoreConfirmSwapsEntryForStat(t *testing.T) {
	s := loadedStore(t)
	ts := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	entry, err := s.AddOptimistic("p1", models.StatThreePointer, 3, ts)
	if err != nil {
		t.Fatalf("AddOptimistic: %v", err)
	}
	s.ConfirmOptimistic(entry, models.PlayerStat{ID: "s9", StatType: models.StatThreePointer, Value: 3})

	snap := s.Snapshot()
	if len(snap.Pending["p1"]) != 0 {
		t.Errorf("pending = %+v", snap.Pending["p1"])
	}
	if ids := statIDs(snap.Players[0]); len(ids) != 1 || ids[0] != "s9" {
		t.Fatalf("stats = %v", ids)
	}
	if snap.Players[0].Stats[0].GamePlayerID != "p1" {
		t.Errorf("folded stat not attached to player: %+v", snap.Players[0].Stats[0])
	}
}

func TestStoreKeepsFoldedStatAgainstOlderRefetch(t *testing.T) {
	s := loadedStore(t)
	ts := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	// a refetch starts before the write is confirmed, and lands after
	inflight := s.BeginRefetch()

	entry, _ := s.AddOptimistic("p1", models.StatTwoPointer, 2, ts)
	s.ConfirmOptimistic(entry, models.PlayerStat{ID: "s9", StatType: models.StatTwoPointer, Value: 2})

	if !s.ApplyRefetch(inflight, nil, []models.GamePlayer{{ID: "p1"}, {ID: "p2"}}) {
		t.Fatal("refetch should apply")
	}
	if ids := statIDs(s.Snapshot().Players[0]); len(ids) != 1 || ids[0] != "s9" {
		t.Fatalf("confirmed stat lost to an older refetch: %v", ids)
	}

	// a refetch started after the confirmation is authoritative
	later := s.BeginRefetch()
	s.ApplyRefetch(later, nil, []models.GamePlayer{{ID: "p1"}, {ID: "p2"}})
	if ids := statIDs(s.Snapshot().Players[0]); len(ids) != 0 {
		t.Fatalf("newer refetch should win, stats = %v", ids)
	}
}

func TestStoreConfirmDoesNotDuplicateRefetchedStat(t *testing.T) {
	s := loadedStore(t)
	ts := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	entry, _ := s.AddOptimistic("p1", models.StatSteal, 1, ts)

	// a push-triggered refetch already brought the stat in
	seq := s.BeginRefetch()
	s.ApplyRefetch(seq, nil, []models.GamePlayer{{ID: "p1", Stats: []models.PlayerStat{{ID: "s5", StatType: models.StatSteal}}}})

	s.ConfirmOptimistic(entry, models.PlayerStat{ID: "s5", StatType: models.StatSteal, Value: 1})
	snap := s.Snapshot()
	if ids := statIDs(snap.Players[0]); len(ids) != 1 {
		t.Fatalf("stat counted twice: %v", ids)
	}
	if len(snap.Pending["p1"]) != 0 {
		t.Fatalf("pending = %+v", snap.Pending["p1"])
	}
}

func TestStoreAddOptimisticValidatesRoster(t *testing.T) {
	empty := NewStore("g1")
	if _, err := empty.AddOptimistic("p1", models.StatSteal, 1, time.Now()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}

	s := loadedStore(t)
	if _, err := s.AddOptimistic("nobody", models.StatSteal, 1, time.Now()); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("expected ErrUnknownPlayer, got %v", err)
	}
}

func TestStorePrependActivity(t *testing.T) {
	s := loadedStore(t)
	s.SetActivities([]models.GameActivity{{ID: "a1"}})
	s.PrependActivity(models.GameActivity{ID: "a2"})

	feed := s.Snapshot().Activities
	if len(feed) != 2 || feed[0].ID != "a2" || feed[1].ID != "a1" {
		t.Fatalf("feed = %+v", feed)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := loadedStore(t, models.PlayerStat{ID: "s1", StatType: models.StatRebound})
	s.SetScore(10, 12)

	snap := s.Snapshot()
	snap.Players[0].Stats[0].StatType = models.StatThreePointer
	*snap.Game.HomeScore = 99

	again := s.Snapshot()
	if again.Players[0].Stats[0].StatType != models.StatRebound {
		t.Error("snapshot shares stats with the store")
	}
	if *again.Game.HomeScore != 10 {
		t.Error("snapshot shares scores with the store")
	}
}
