package main

import (
	"fmt"

	"github.com/girlsgotgame/courtside/go/internal/livestats"
	"github.com/girlsgotgame/courtside/go/internal/projection"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func renderView(v projection.View) {
	players := zerolog.Dict()
	for _, p := range v.Roster {
		t := v.Totals[p.ID]
		line := fmt.Sprintf("%d pts %d reb %d stl", t.Points, t.Rebounds, t.Steals)
		if t.Pending > 0 {
			line += fmt.Sprintf(" (%d saving)", t.Pending)
		}
		players.Str(fmt.Sprintf("%s [%s]", p.Name, p.ID), line)
	}

	event := log.Info().
		Str("game", fmt.Sprintf("%s vs %s", v.Game.HomeTeam, v.Game.AwayTeam)).
		Str("status", string(v.Status)).
		Bool("live_updates", v.LiveUpdates)

	if v.Game.HasScore() {
		event = event.Str("score", fmt.Sprintf("%d - %d", *v.Game.HomeScore, *v.Game.AwayScore))
		if v.Winner != projection.WinnerNone {
			event = event.Str("winner", string(v.Winner))
		}
	}
	if len(v.LiveFeed) > 0 {
		event = event.Str("latest", v.LiveFeed[0].Description)
	}

	event.Dict("players", players).Msg("game")
}

func renderNotice(n livestats.Notice) {
	switch n.Level {
	case livestats.NoticeError:
		log.Error().Msg(n.Message)
	default:
		log.Info().Msg(n.Message)
	}
}
