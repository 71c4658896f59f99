package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/config"
	"github.com/girlsgotgame/courtside/go/internal/devapi"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	store := devapi.NewStore(clockwork.NewRealClock())
	if cfg.DevServer.Seed {
		gameID := store.Seed()
		log.Info().Str("game_id", gameID).Msg("seeded demo game")
	}

	hub := devapi.NewHub(devapi.DefaultHubConfig())
	opts := []devapi.ServerOption{devapi.WithToken(cfg.DevServer.Token)}

	var bridge *devapi.NATSBridge
	if cfg.NATS.URL != "" {
		natsCfg := devapi.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		bridge, err = devapi.NewNATSBridge(hub, natsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect NATS bridge")
		}
		defer bridge.Close()
		opts = append(opts, devapi.WithPublisher(bridge))
	}

	server := &http.Server{
		Addr:        cfg.DevServer.Addr,
		Handler:     devapi.NewServer(store, hub, opts...).Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Start(ctx)
		return nil
	})

	if bridge != nil {
		g.Go(func() error {
			return bridge.Start(ctx)
		})
	}

	g.Go(func() error {
		log.Info().
			Str("addr", server.Addr).
			Bool("nats", bridge != nil).
			Bool("auth", cfg.DevServer.Token != "").
			Msg("dev API starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("dev API stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("dev API shutdown complete")
}
