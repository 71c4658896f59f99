package ggg_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/girlsgotgame/courtside/go/clients"
	"github.com/rs/zerolog/log"
)

// Client talks to the Girls Got Game REST API. It holds configuration only,
// so one instance can be shared by every view.
type Client struct {
	*clients.BaseClient
}

// Option configures a Client at construction time
type Option func(*Client)

// WithToken sends a bearer token with every request
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.SetHeader(AuthorizationHeader, "Bearer "+token)
		}
	}
}

// WithTimeout overrides the default per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithHTTPClient swaps the transport, e.g. for an httptest server client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.SetHTTPClient(hc)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader(AcceptHeader, JSONContentType)
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// envelope is the uniform response shape of the API
type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error,omitempty"`
}

func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader) (*clients.Response, error) {
	switch method {
	case http.MethodGet:
		return c.Get(ctx, endpoint)
	case http.MethodPost:
		return c.Post(ctx, endpoint, body)
	case http.MethodPatch:
		return c.Patch(ctx, endpoint, body)
	case http.MethodDelete:
		return c.Delete(ctx, endpoint)
	default:
		return c.MakeRequest(ctx, method, endpoint, body)
	}
}

// do performs one call and folds every failure mode into the Result
func do[T any](ctx context.Context, c *Client, method, endpoint string, payload any) Result[T] {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Fail[T](&APIError{Kind: KindApplication, Message: fmt.Sprintf("encode request: %v", err), Err: err})
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		log.Error().
			Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Msg("API request failed")
		return Fail[T](NetworkError(err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return Fail[T](&APIError{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "Unauthorized"})
	}

	var env envelope[T]
	decodeErr := decodeEnvelope(resp.Body, &env)

	if !resp.OK() {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("endpoint", endpoint).
			Str("error", msg).
			Msg("API returned error status")
		return Fail[T](&APIError{Kind: KindApplication, StatusCode: resp.StatusCode, Message: msg})
	}

	if decodeErr != nil {
		log.Error().
			Err(decodeErr).
			Str("method", method).
			Str("endpoint", endpoint).
			Msg("failed to decode API response")
		return Fail[T](NetworkError(decodeErr))
	}

	if env.Error != "" {
		return Fail[T](&APIError{Kind: KindApplication, StatusCode: resp.StatusCode, Message: env.Error})
	}

	return OK(env.Data)
}

func decodeEnvelope[T any](body []byte, env *envelope[T]) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
