// Package advisor defines the bidding and card-play suggestion capabilities
// the game engine depends on.
package advisor

import (
	"context"
	"errors"

	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

// ErrNoCard is returned when the seat to play has nothing left to play.
var ErrNoCard = errors.New("no card to play")

// Suggestion is a proposed call with optional commentary for training.
type Suggestion struct {
	Call     bridge.Call `json:"call"`
	Comment  string      `json:"comment,omitempty"`
	Strategy string      `json:"strategy,omitempty"`
}

type Bidder interface {
	SuggestBid(ctx context.Context, b *bridge.Board, seat bridge.Seat) (Suggestion, error)
}

// CardPlayer picks the next card for the board's current player. When
// doubleDummy is set the player may look at all four hands.
type CardPlayer interface {
	SuggestCard(ctx context.Context, b *bridge.Board, doubleDummy bool) (bridge.Card, error)
}

type Advisor interface {
	Bidder
	CardPlayer
}

type fallback struct {
	primary, secondary Advisor
}

// WithFallback returns an advisor that asks primary first and secondary when
// primary fails.
func WithFallback(primary, secondary Advisor) Advisor {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) SuggestBid(ctx context.Context, b *bridge.Board, seat bridge.Seat) (Suggestion, error) {
	s, err := f.primary.SuggestBid(ctx, b, seat)
	if err == nil {
		return s, nil
	}
	log.Warn().Err(err).Str("seat", seat.String()).Msg("bid advisor fallback")
	return f.secondary.SuggestBid(ctx, b, seat)
}

func (f *fallback) SuggestCard(ctx context.Context, b *bridge.Board, doubleDummy bool) (bridge.Card, error) {
	c, err := f.primary.SuggestCard(ctx, b, doubleDummy)
	if err == nil || errors.Is(err, ErrNoCard) {
		return c, err
	}
	log.Warn().Err(err).Str("seat", b.CurrentPlayer.String()).Msg("card advisor fallback")
	return f.secondary.SuggestCard(ctx, b, doubleDummy)
}
