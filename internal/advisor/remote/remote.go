// Package remote asks an external bridge engine over HTTP for bids and
// cards. Boards are sent as PBN text.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/pbn"
)

type Client struct {
	BaseURL string
	http    *http.Client
}

var _ advisor.Advisor = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

type bidRequest struct {
	PBN  string `json:"pbn"`
	Seat string `json:"seat"`
}

type bidResponse struct {
	Call     string `json:"call"`
	Comment  string `json:"comment"`
	Strategy string `json:"strategy"`
}

func (c *Client) SuggestBid(ctx context.Context, b *bridge.Board, seat bridge.Seat) (advisor.Suggestion, error) {
	var out bidResponse
	if err := c.post(ctx, "/bid", bidRequest{PBN: pbn.Serialize(b), Seat: seat.String()}, &out); err != nil {
		return advisor.Suggestion{}, err
	}
	call, err := bridge.ParseCall(out.Call)
	if err != nil {
		return advisor.Suggestion{}, fmt.Errorf("engine bid: %w", err)
	}
	return advisor.Suggestion{Call: call, Comment: out.Comment, Strategy: out.Strategy}, nil
}

type cardRequest struct {
	PBN         string `json:"pbn"`
	Seat        string `json:"seat"`
	DoubleDummy bool   `json:"double_dummy"`
}

type cardResponse struct {
	Card string `json:"card"`
}

func (c *Client) SuggestCard(ctx context.Context, b *bridge.Board, doubleDummy bool) (bridge.Card, error) {
	seat := b.CurrentPlayer
	if h, ok := b.Hands[seat]; !seat.Valid() || !ok || len(h.Unplayed) == 0 {
		return bridge.Card{}, advisor.ErrNoCard
	}
	var out cardResponse
	req := cardRequest{PBN: pbn.Serialize(b), Seat: seat.String(), DoubleDummy: doubleDummy}
	if err := c.post(ctx, "/card", req, &out); err != nil {
		return bridge.Card{}, err
	}
	card, err := bridge.ParseCard(out.Card)
	if err != nil {
		return bridge.Card{}, fmt.Errorf("engine card: %w", err)
	}
	if !b.Hands[seat].Holds(card) {
		return bridge.Card{}, fmt.Errorf("engine card %s not held by %s", card, seat)
	}
	return card, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("engine status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

// ErrUnavailable is returned by Ping when the engine does not answer.
var ErrUnavailable = errors.New("bridge engine unavailable")

// Ping checks the engine's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
