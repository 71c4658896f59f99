package ggg_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// CommentInput is the body of POST /games/:id/comments
type CommentInput struct {
	Content string `json:"content"`
}

func (c *Client) GetGame(ctx context.Context, gameID string) Result[models.GameDetail] {
	return do[models.GameDetail](ctx, c, http.MethodGet, fmt.Sprintf(GameEndpoint, url.PathEscape(gameID)), nil)
}

func (c *Client) GetPlayers(ctx context.Context, gameID string) Result[[]models.GamePlayer] {
	return do[[]models.GamePlayer](ctx, c, http.MethodGet, fmt.Sprintf(GamePlayersEndpoint, url.PathEscape(gameID)), nil)
}

func (c *Client) GetActivities(ctx context.Context, gameID string) Result[[]models.GameActivity] {
	return do[[]models.GameActivity](ctx, c, http.MethodGet, fmt.Sprintf(ActivitiesEndpoint, url.PathEscape(gameID)), nil)
}

func (c *Client) UpdateScore(ctx context.Context, gameID string, score models.ScoreUpdate) Result[models.Game] {
	return do[models.Game](ctx, c, http.MethodPatch, fmt.Sprintf(ScoreEndpoint, url.PathEscape(gameID)), score)
}

func (c *Client) UpdateStatus(ctx context.Context, gameID string, status models.StatusUpdate) Result[models.Game] {
	return do[models.Game](ctx, c, http.MethodPatch, fmt.Sprintf(StatusEndpoint, url.PathEscape(gameID)), status)
}

func (c *Client) AddComment(ctx context.Context, gameID, content string) Result[models.Comment] {
	return do[models.Comment](ctx, c, http.MethodPost, fmt.Sprintf(CommentsEndpoint, url.PathEscape(gameID)), CommentInput{Content: content})
}
