// Package httpclient is a thin client for the judging HTTP APIs.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appErr "codearena/pkg/errors"
)

const requestTimeout = 10 * time.Second

// Client calls the execution worker and leaderboard service.
type Client struct {
	executionAddr   string
	leaderboardAddr string
	httpClient      *http.Client
}

func New(executionAddr, leaderboardAddr string) *Client {
	return &Client{
		executionAddr:   executionAddr,
		leaderboardAddr: leaderboardAddr,
		httpClient:      &http.Client{Timeout: requestTimeout},
	}
}

// envelope mirrors the response wrapper used by the services.
type envelope struct {
	Code    appErr.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
}

// GetSubmission fetches a submission with its per-test results.
func (c *Client) GetSubmission(ctx context.Context, submissionID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/api/v1/submissions/%s", c.executionAddr, url.PathEscape(submissionID))
	return c.get(ctx, u)
}

// GetLeaderboard fetches the ranked standings for a contest.
func (c *Client) GetLeaderboard(ctx context.Context, contestID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/api/v1/leaderboard/contest/%s", c.leaderboardAddr, url.PathEscape(contestID))
	return c.get(ctx, u)
}

// LeaderboardWSURL returns the websocket endpoint for live updates.
func (c *Client) LeaderboardWSURL(contestID string) (string, error) {
	base, err := url.Parse(c.leaderboardAddr)
	if err != nil {
		return "", fmt.Errorf("parse leaderboard address failed: %w", err)
	}
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	default:
		base.Scheme = "ws"
	}
	base.Path = "/ws/leaderboard/" + url.PathEscape(contestID)
	return base.String(), nil
}

func (c *Client) get(ctx context.Context, u string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK || env.Code != appErr.Success {
		return nil, fmt.Errorf("request %s failed: %s (code %d)", u, env.Message, int(env.Code))
	}
	return env.Data, nil
}
