package cardplay

import (
	"context"
	"errors"
	"fmt"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

// PlayOut lets player choose cards until stop reports true for the seat due
// to play or all thirteen tricks are complete. It returns the number of
// cards played.
func PlayOut(ctx context.Context, b *bridge.Board, player advisor.CardPlayer, doubleDummy bool, stop func(bridge.Seat) bool) (int, error) {
	played := 0
	for b.CompletedTricks() < 13 && played < 52 {
		FinalizePending(b)
		seat := b.CurrentPlayer
		if !seat.Valid() || (stop != nil && stop(seat)) {
			break
		}
		c, err := player.SuggestCard(ctx, b, doubleDummy)
		if errors.Is(err, advisor.ErrNoCard) {
			break
		}
		if err != nil {
			return played, fmt.Errorf("suggest card for %s: %w", seat, err)
		}
		if !PlayCard(b, c) {
			return played, fmt.Errorf("%w: %s by %s", ErrCannotPlay, c, seat)
		}
		log.Debug().Str("seat", seat.String()).Str("card", c.Name()).Msg("auto-play")
		played++
	}
	return played, nil
}

// ClaimTarget converts a claim into the trick total the claiming side
// must reach. A negative claim concedes that many of the remaining tricks.
func ClaimTarget(own, other, claimed int) int {
	if claimed < 0 {
		claimed = 13 - own - other + claimed
	}
	return own + claimed
}

type ClaimResult struct {
	Accepted  bool `json:"accept_claim"`
	Target    int  `json:"claim_target"`
	Estimated int  `json:"claim_estimate"`
}

// Claim plays the rest of the deal on a copy of the board. The claim is
// accepted when the claiming side ends with exactly the target; the
// returned board then carries the forced split. Otherwise the original
// board is returned unchanged.
func Claim(ctx context.Context, b *bridge.Board, side bridge.Side, claimed int, player advisor.CardPlayer, doubleDummy bool) (*bridge.Board, ClaimResult, error) {
	res := ClaimResult{Target: ClaimTarget(b.TricksFor(side), b.TricksFor(side.Other()), claimed)}
	trial := b.Clone()
	if _, err := PlayOut(ctx, trial, player, doubleDummy, nil); err != nil {
		return b, res, err
	}
	res.Estimated = trial.TricksFor(side)
	if res.Estimated != res.Target {
		return b, res, nil
	}
	res.Accepted = true
	if side == bridge.NS {
		trial.NSTricks, trial.EWTricks = res.Target, 13-res.Target
	} else {
		trial.EWTricks, trial.NSTricks = res.Target, 13-res.Target
	}
	return trial, res, nil
}

// Compare projects the final split by playing out a copy of the board from
// its current position. The board itself is not changed.
func Compare(ctx context.Context, b *bridge.Board, player advisor.CardPlayer, doubleDummy bool) (ns, ew int, err error) {
	trial := b.Clone()
	if trial.CurrentTrick() == nil {
		SetupFirstTrick(trial)
	}
	if _, err := PlayOut(ctx, trial, player, doubleDummy, nil); err != nil {
		return 0, 0, err
	}
	return trial.NSTricks, trial.EWTricks, nil
}

// Suggest names the card the advisor would play next: empty when nobody
// is due to play and "blank" when the advisor has no card.
func Suggest(ctx context.Context, b *bridge.Board, player advisor.CardPlayer, doubleDummy bool) string {
	seat := b.CurrentPlayer
	h, ok := b.Hands[seat]
	if !seat.Valid() || !ok || b.Contract.IsZero() {
		return ""
	}
	if len(h.Unplayed) == 0 {
		log.Error().Str("player", seat.String()).Msg("no-unplayed-cards")
		return ""
	}
	c, err := player.SuggestCard(ctx, b, doubleDummy)
	if err != nil {
		log.Warn().Err(err).Str("seat", seat.String()).Msg("suggest card")
		return "blank"
	}
	return c.Name()
}
