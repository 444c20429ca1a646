package testevents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// statusStats mirrors the fields of GET /stats used for verification.
type statusStats struct {
	EventsProcessed uint64            `json:"events_processed"`
	EventsDuplicate uint64            `json:"events_duplicate"`
	DecodeErrors    uint64            `json:"decode_errors"`
	HandlerErrors   uint64            `json:"handler_errors"`
	TrackedPlayers  int               `json:"tracked_players"`
	Cursors         map[string]uint64 `json:"cursors"`
}

// leaderboardRow mirrors one row of GET /leaderboard.
type leaderboardRow struct {
	Rank   int     `json:"rank"`
	Player string  `json:"player"`
	Value  float64 `json:"value"`
}

type leaderboardResponse struct {
	Board string           `json:"board"`
	Rows  []leaderboardRow `json:"rows"`
}

// statusClient reads the tracker status API.
type statusClient struct {
	client  *http.Client
	baseURL string
}

func newStatusClient(baseURL string, timeout time.Duration) *statusClient {
	return &statusClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *statusClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	return json.Unmarshal(body, v)
}

func (c *statusClient) stats(ctx context.Context) (statusStats, error) {
	var s statusStats
	err := c.getJSON(ctx, "/stats", &s)
	return s, err
}

func (c *statusClient) leaderboard(ctx context.Context, board string, limit int) (leaderboardResponse, error) {
	var lb leaderboardResponse
	err := c.getJSON(ctx, fmt.Sprintf("/leaderboard?type=%s&limit=%d", board, limit), &lb)
	return lb, err
}
