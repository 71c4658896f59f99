package ggg_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// DeleteResult is the confirmation returned by DELETE /games/:id/stats/:statId
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AddStat records a stat for a roster entry. The server answers with the
// created stat, which may carry fields the caller did not send.
func (c *Client) AddStat(ctx context.Context, gameID, playerID string, stat models.NewStat) Result[models.PlayerStat] {
	endpoint := fmt.Sprintf(PlayerStatsEndpoint, url.PathEscape(gameID), url.PathEscape(playerID))
	return do[models.PlayerStat](ctx, c, http.MethodPost, endpoint, stat)
}

func (c *Client) DeleteStat(ctx context.Context, gameID, statID string) Result[DeleteResult] {
	endpoint := fmt.Sprintf(StatEndpoint, url.PathEscape(gameID), url.PathEscape(statID))
	return do[DeleteResult](ctx, c, http.MethodDelete, endpoint, nil)
}
