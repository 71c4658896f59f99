package devapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher fans a game event out to push clients
type Publisher interface {
	Publish(gameID string, event *push.Event) error
}

// Publish lets the hub act as a Publisher when no broker is configured
func (h *Hub) Publish(gameID string, event *push.Event) error {
	h.Broadcast(gameID, event)
	return nil
}

// NATSConfig holds configuration for the NATS bridge
type NATSConfig struct {
	URL           string
	SubjectPrefix string // events go to <prefix>.<gameId>.events
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "games",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSBridge publishes game events to NATS and relays every game event it
// receives into the hub, so several dev API instances share one push stream.
type NATSBridge struct {
	hub    *Hub
	nc     *nats.Conn
	config NATSConfig
}

func NewNATSBridge(hub *Hub, config NATSConfig) (*NATSBridge, error) {
	opts := []nats.Option{
		nats.Name("courtside-devapi"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSBridge{hub: hub, nc: nc, config: config}, nil
}

// Subject is the subject events of gameID are published on
func (b *NATSBridge) Subject(gameID string) string {
	return eventSubject(b.config.SubjectPrefix, gameID)
}

func (b *NATSBridge) Publish(gameID string, event *push.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.nc.Publish(b.Subject(gameID), data); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	return nil
}

// Start relays NATS messages into the hub until ctx is done
func (b *NATSBridge) Start(ctx context.Context) error {
	filter := eventSubject(b.config.SubjectPrefix, "*")

	msgCh := make(chan *nats.Msg, 100)
	sub, err := b.nc.ChanSubscribe(filter, msgCh)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", filter, err)
	}
	defer sub.Unsubscribe()

	log.Info().Str("subject", filter).Msg("NATS bridge started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("NATS bridge shutting down")
			return nil
		case msg := <-msgCh:
			if err := b.relay(msg); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject).
					Msg("failed to relay NATS message")
			}
		}
	}
}

func (b *NATSBridge) relay(msg *nats.Msg) error {
	gameID, event, err := decodeEventMessage(b.config.SubjectPrefix, msg)
	if err != nil {
		return err
	}
	b.hub.Broadcast(gameID, event)
	return nil
}

func (b *NATSBridge) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

func eventSubject(prefix, gameID string) string {
	return prefix + "." + gameID + ".events"
}

// decodeEventMessage extracts the game id from the subject and the push
// envelope from the payload
func decodeEventMessage(prefix string, msg *nats.Msg) (string, *push.Event, error) {
	rest, ok := strings.CutPrefix(msg.Subject, prefix+".")
	if !ok {
		return "", nil, fmt.Errorf("unexpected subject %q", msg.Subject)
	}
	gameID, ok := strings.CutSuffix(rest, ".events")
	if !ok || gameID == "" || strings.Contains(gameID, ".") {
		return "", nil, fmt.Errorf("unexpected subject %q", msg.Subject)
	}

	var event push.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return "", nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Name == "" {
		return "", nil, fmt.Errorf("event without name on %s", msg.Subject)
	}
	return gameID, &event, nil
}
