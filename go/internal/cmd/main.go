package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/girlsgotgame/courtside/go/clients/ggg_client"
	"github.com/girlsgotgame/courtside/go/internal/config"
	"github.com/girlsgotgame/courtside/go/internal/livestats"
	"github.com/girlsgotgame/courtside/go/internal/projection"
	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("invalid arguments")
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		log.Fatal().Err(err).Msg("courtside stopped")
	}
}

type gameChannel interface {
	Join(gameID string) bool
	Leave(gameID string) bool
}

// followGame joins gameID and returns the call that leaves it again
func followGame(ch gameChannel, gameID string) (unfollow func()) {
	ch.Join(gameID)
	return func() { ch.Leave(gameID) }
}

func run(ctx context.Context, cfg *config.Config, opts *options) error {
	clock := clockwork.NewRealClock()

	client := ggg_client.NewClient(cfg.API.BaseURL,
		ggg_client.WithToken(cfg.API.Token),
		ggg_client.WithTimeout(cfg.API.RequestTimeout),
	)

	session := livestats.NewSession(client, opts.GameID,
		livestats.WithClock(clock),
		livestats.WithRequestTimeout(cfg.API.RequestTimeout),
	)
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		return err
	}

	pushCfg := push.DefaultConfig(cfg.Push.URL)
	pushCfg.MinBackoff = cfg.Push.MinBackoff
	pushCfg.MaxBackoff = cfg.Push.MaxBackoff
	pushCfg.PingInterval = cfg.Push.PingInterval
	if cfg.API.Token != "" {
		pushCfg.Header.Set(ggg_client.AuthorizationHeader, "Bearer "+cfg.API.Token)
	}

	listener := push.NewListener(pushCfg, session, push.WithClock(clock))
	defer followGame(listener, opts.GameID)()

	changed := make(chan struct{}, 1)
	markChanged := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	session.Subscribe(func(livestats.Snapshot) { markChanged() })
	markChanged()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listener.Run(ctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changed:
				renderView(projection.Build(session.Snapshot(), opts.Viewer, clock.Now()))
			case n := <-session.Notices():
				renderNotice(n)
			}
		}
	})

	if opts.Interactive {
		done := make(chan struct{})
		go func() {
			defer close(done)
			err := commandLoop(ctx, session, os.Stdin, func(err error) {
				log.Warn().Err(err).Msg("command failed")
			})
			if err != nil {
				log.Error().Err(err).Msg("reading commands failed")
			}
		}()
		g.Go(func() error {
			select {
			case <-done:
				return errQuit
			case <-ctx.Done():
				return nil
			}
		})
	}

	log.Info().
		Str("game_id", opts.GameID).
		Str("api", cfg.API.BaseURL).
		Str("push", cfg.Push.URL).
		Str("role", string(opts.Viewer.Role)).
		Msg("following game")

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
