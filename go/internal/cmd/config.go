package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// options are the command line settings layered over config.Config
type options struct {
	ConfigPath  string
	GameID      string
	Viewer      models.Viewer
	Interactive bool
}

func parseOptions(args []string) (*options, error) {
	fs := flag.NewFlagSet("courtside", flag.ContinueOnError)

	var (
		opts     options
		role     string
		children string
	)
	fs.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.GameID, "game", "", "id of the game to follow (required)")
	fs.StringVar(&opts.Viewer.UserID, "user", "", "user id of the viewer")
	fs.StringVar(&role, "role", string(models.RoleAdmin), "viewer role: admin, parent or player")
	fs.StringVar(&children, "children", "", "comma separated user ids of a parent's children")
	fs.BoolVar(&opts.Interactive, "i", true, "read scorekeeping commands from stdin")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.GameID == "" {
		return nil, fmt.Errorf("-game is required")
	}

	opts.Viewer.Role = models.Role(role)
	switch opts.Viewer.Role {
	case models.RoleAdmin, models.RoleParent, models.RolePlayer:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	for _, id := range strings.Split(children, ",") {
		if id = strings.TrimSpace(id); id != "" {
			opts.Viewer.ChildIDs = append(opts.Viewer.ChildIDs, id)
		}
	}
	if opts.Viewer.Role == models.RoleParent && len(opts.Viewer.ChildIDs) == 0 {
		return nil, fmt.Errorf("-children is required for the parent role")
	}

	return &opts, nil
}
