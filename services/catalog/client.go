package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/logger"
	apperrors "sjsage522/freegameworker/pkg/errors"

	"github.com/go-resty/resty/v2"
)

// TokenHeader carries the shared secret expected by the catalog service
const TokenHeader = "API-Token"

// Client talks to the catalog REST service
type Client struct {
	client *resty.Client
	log    *logger.Logger
}

// NewClient creates a catalog client for baseURL authenticated with token
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader(TokenHeader, token)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(timeout)
	// existence and posted checks send their key as a GET body
	client.SetAllowGetMethodPayload(true)

	return &Client{
		client: client,
		log:    logger.ForCatalog(),
	}
}

func (c *Client) extractItem(ctx context.Context, endpoint string, body any, result any) error {
	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	res, err := req.Get(endpoint)
	if err != nil {
		return apperrors.NewCatalog("GET "+endpoint, err)
	}
	if !res.IsSuccess() {
		return statusError("GET", endpoint, res)
	}

	if err := json.Unmarshal(res.Body(), result); err != nil {
		return apperrors.NewCatalog("decode response of GET "+endpoint, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Execute(method, endpoint)
	if err != nil {
		return apperrors.NewCatalog(method+" "+endpoint, err)
	}
	if !res.IsSuccess() {
		return statusError(method, endpoint, res)
	}
	return nil
}

// statusError maps a non-2xx answer to an error. A refused token will not
// fix itself, so it is reported as a validation error.
func statusError(method, endpoint string, res *resty.Response) error {
	message := fmt.Sprintf("%s %s failed with status %d: %s", method, endpoint, res.StatusCode(), res.String())
	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewValidation("catalog", message)
	default:
		return apperrors.NewCatalog(message, nil)
	}
}

// ListAll returns every recorded offer
func (c *Client) ListAll(ctx context.Context) ([]game.Game, error) {
	c.log.Debug().Msg("Getting all games")

	var games []game.Game
	if err := c.extractItem(ctx, "/", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// ListFree returns offers whose window has not closed yet
func (c *Client) ListFree(ctx context.Context) ([]game.Game, error) {
	c.log.Debug().Msg("Getting all free games")

	var games []game.Game
	if err := c.extractItem(ctx, "/free", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Exists reports whether the catalog already knows key
func (c *Client) Exists(ctx context.Context, key game.PartialGame) (bool, error) {
	c.log.Debug().Str("key", key.String()).Msg("Checking if game exists")

	var exists bool
	if err := c.extractItem(ctx, "/game", key, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Submit stores g in the catalog
func (c *Client) Submit(ctx context.Context, g game.Game) error {
	c.log.Debug().Str("key", g.Key().String()).Msg("Posting game")
	return c.send(ctx, "POST", "/game", g)
}

// Delete removes the offer and its posted markers
func (c *Client) Delete(ctx context.Context, key game.PartialGame) error {
	c.log.Debug().Str("key", key.String()).Msg("Deleting game")
	return c.send(ctx, "DELETE", "/game", key)
}

// IsPosted reports whether the offer was already announced on a platform
func (c *Client) IsPosted(ctx context.Context, posted game.PostedPlatform) (bool, error) {
	var isPosted bool
	if err := c.extractItem(ctx, "/posted", posted, &isPosted); err != nil {
		return false, err
	}
	return isPosted, nil
}

// MarkPosted records that the offer was announced on a platform
func (c *Client) MarkPosted(ctx context.Context, posted game.PostedPlatform) error {
	return c.send(ctx, "POST", "/posted", posted)
}
