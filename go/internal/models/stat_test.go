package models

import (
	"errors"
	"testing"
)

func TestStatTypePoints(t *testing.T) {
	tests := []struct {
		name         string
		statType     StatType
		wantPoints   int
		wantDefault  int
		wantIsPoints bool
	}{
		{name: "three pointer", statType: StatThreePointer, wantPoints: 3, wantDefault: 3, wantIsPoints: true},
		{name: "two pointer", statType: StatTwoPointer, wantPoints: 2, wantDefault: 2, wantIsPoints: true},
		{name: "free throw", statType: StatFreeThrow, wantPoints: 1, wantDefault: 1, wantIsPoints: true},
		{name: "steal", statType: StatSteal, wantPoints: 0, wantDefault: 1, wantIsPoints: false},
		{name: "rebound", statType: StatRebound, wantPoints: 0, wantDefault: 1, wantIsPoints: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.statType.Points(); got != tt.wantPoints {
				t.Errorf("Points() = %d, want %d", got, tt.wantPoints)
			}
			if got := tt.statType.DefaultValue(); got != tt.wantDefault {
				t.Errorf("DefaultValue() = %d, want %d", got, tt.wantDefault)
			}
			if got := tt.statType.IsPoints(); got != tt.wantIsPoints {
				t.Errorf("IsPoints() = %v, want %v", got, tt.wantIsPoints)
			}
		})
	}
}

func TestParseStatType(t *testing.T) {
	if got, err := ParseStatType("3pt"); err != nil || got != StatThreePointer {
		t.Fatalf("ParseStatType(3pt) = %q, %v", got, err)
	}
	if _, err := ParseStatType("dunk"); !errors.Is(err, ErrUnknownStatType) {
		t.Fatalf("expected ErrUnknownStatType, got %v", err)
	}
}

func TestGamePlayerLinkedUserIDs(t *testing.T) {
	user := "u1"
	linked := "u2"

	direct := GamePlayer{UserID: &user, ParticipationType: ParticipationDirect}
	if ids := direct.LinkedUserIDs(); len(ids) != 1 || ids[0] != "u1" {
		t.Errorf("direct player ids = %v", ids)
	}

	manual := GamePlayer{
		ParticipationType: ParticipationMixed,
		ManualPlayer:      &ManualPlayer{ID: "m1", LinkedUserID: &linked},
	}
	if ids := manual.LinkedUserIDs(); len(ids) != 1 || ids[0] != "u2" {
		t.Errorf("manual player ids = %v", ids)
	}

	historical := GamePlayer{ParticipationType: ParticipationManual, ManualPlayer: &ManualPlayer{ID: "m2"}}
	if ids := historical.LinkedUserIDs(); len(ids) != 0 {
		t.Errorf("unlinked manual player ids = %v", ids)
	}
}
