package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

var errQuit = errors.New("quit")

// scorekeeper is what the command loop drives; *livestats.Session satisfies it
type scorekeeper interface {
	RecordStat(ctx context.Context, playerID string, statType models.StatType) error
	RemoveStat(ctx context.Context, statID string) error
	UpdateScore(ctx context.Context, home, away int) error
	UpdateStatus(ctx context.Context, status models.GameStatus, notes string) error
	AddComment(ctx context.Context, content string) error
	Refetch(ctx context.Context) error
}

const usage = `commands:
  stat <playerId> <2pt|3pt|1pt|steal|rebound>
  undo <statId>
  score <home> <away>
  status <upcoming|live|completed> [notes]
  comment <text>
  refresh
  quit`

// runCommand executes one input line
func runCommand(ctx context.Context, sk scorekeeper, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "stat":
		if len(args) != 2 {
			return fmt.Errorf("usage: stat <playerId> <type>")
		}
		statType, err := models.ParseStatType(args[1])
		if err != nil {
			return err
		}
		return sk.RecordStat(ctx, args[0], statType)

	case "undo":
		if len(args) != 1 {
			return fmt.Errorf("usage: undo <statId>")
		}
		return sk.RemoveStat(ctx, args[0])

	case "score":
		if len(args) != 2 {
			return fmt.Errorf("usage: score <home> <away>")
		}
		home, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("home score: %w", err)
		}
		away, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("away score: %w", err)
		}
		return sk.UpdateScore(ctx, home, away)

	case "status":
		if len(args) == 0 {
			return fmt.Errorf("usage: status <status> [notes]")
		}
		return sk.UpdateStatus(ctx, models.GameStatus(args[0]), strings.Join(args[1:], " "))

	case "comment":
		content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), name))
		if content == "" {
			return fmt.Errorf("usage: comment <text>")
		}
		return sk.AddComment(ctx, content)

	case "refresh":
		return sk.Refetch(ctx)

	case "quit", "exit":
		return errQuit

	case "help":
		fmt.Println(usage)
		return nil
	}

	return fmt.Errorf("unknown command %q, try help", name)
}

// commandLoop reads lines until EOF, quit or ctx is done. Command failures
// are reported through onError and do not end the loop.
func commandLoop(ctx context.Context, sk scorekeeper, in io.Reader, onError func(error)) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := runCommand(ctx, sk, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			onError(err)
		}
	}
	return scanner.Err()
}
