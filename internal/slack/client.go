// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package slack implements the two Slack surfaces Chanscribe talks to: the
// Web API (users.info, conversations.info, apps.connections.open) and the
// Socket Mode event stream.
//
// API Reference: https://api.slack.com/apis/connections/socket
package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// DefaultAPIURL is the public Slack Web API base.
const DefaultAPIURL = "https://slack.com/api"

// Client provides access to the Slack Web API. Requests pass through a
// shared rate limiter so a burst of message events cannot trip Slack's
// method tier limits.
type Client struct {
	baseURL    string
	botToken   string
	appToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Web API client.
//
// Parameters:
//   - baseURL: API base; empty means DefaultAPIURL (tests override this)
//   - botToken: xoxb- token for users.info / conversations.info
//   - appToken: xapp- app-level token for apps.connections.open
//   - perSecond: request rate cap
func NewClient(baseURL, botToken, appToken string, perSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL:  baseURL,
		botToken: botToken,
		appToken: appToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// AuthTest verifies the bot token and returns the authenticated identity.
// Called once at startup so a bad credential fails fast with Slack's own
// error code instead of surfacing later as per-message lookup failures.
func (c *Client) AuthTest(ctx context.Context) (*AuthIdentity, error) {
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		AuthIdentity
	}

	if err := c.call(ctx, "auth.test", c.botToken, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &APIError{Method: "auth.test", Code: resp.Error}
	}

	return &resp.AuthIdentity, nil
}

// UserInfo fetches a workspace member by user ID.
func (c *Client) UserInfo(ctx context.Context, userID string) (*User, error) {
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		User  User   `json:"user"`
	}

	params := url.Values{"user": {userID}}
	if err := c.call(ctx, "users.info", c.botToken, params, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &APIError{Method: "users.info", Code: resp.Error}
	}

	return &resp.User, nil
}

// ChannelInfo fetches a channel by ID. Used at startup to verify the bot
// can see the tracked channel before the listener starts.
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (*Channel, error) {
	var resp struct {
		OK      bool    `json:"ok"`
		Error   string  `json:"error"`
		Channel Channel `json:"channel"`
	}

	params := url.Values{"channel": {channelID}}
	if err := c.call(ctx, "conversations.info", c.botToken, params, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &APIError{Method: "conversations.info", Code: resp.Error}
	}

	return &resp.Channel, nil
}

// OpenConnection requests a fresh Socket Mode websocket URL. The URL is
// single-use and short-lived; the socket client calls this on every
// (re)connection attempt.
func (c *Client) OpenConnection(ctx context.Context) (string, error) {
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		URL   string `json:"url"`
	}

	if err := c.call(ctx, "apps.connections.open", c.appToken, nil, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", &APIError{Method: "apps.connections.open", Code: resp.Error}
	}
	if resp.URL == "" {
		return "", fmt.Errorf("apps.connections.open returned ok without a url")
	}

	return resp.URL, nil
}

// call performs one Web API request and decodes the response into out.
// Slack accepts POST with form-encoded arguments for all methods used here.
func (c *Client) call(ctx context.Context, method, token string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader = http.NoBody
	if len(params) > 0 {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	return nil
}
