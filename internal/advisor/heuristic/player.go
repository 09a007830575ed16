package heuristic

import (
	"context"
	"errors"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

// SolveBelow is the number of unplayed cards under which a double-dummy
// request is answered by searching the position.
const SolveBelow = 17

// Player chooses cards with simple single-dummy rules, and solves small
// endings exactly when asked to play double dummy.
type Player struct {
	// NodeBudget caps the endgame search; zero means DefaultNodeBudget.
	NodeBudget int
}

func (p Player) SuggestCard(_ context.Context, b *bridge.Board, doubleDummy bool) (bridge.Card, error) {
	seat := b.CurrentPlayer
	h, ok := b.Hands[seat]
	if !seat.Valid() || !ok || h == nil || len(h.Unplayed) == 0 {
		return bridge.Card{}, advisor.ErrNoCard
	}
	if doubleDummy && remaining(b) < SolveBelow {
		c, _, err := solve(b, p.NodeBudget)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, errBudget) {
			return bridge.Card{}, err
		}
		log.Debug().Str("seat", seat.String()).Msg("endgame search over budget")
	}
	return choose(b, seat, h.Unplayed), nil
}

func remaining(b *bridge.Board) int {
	n := 0
	for _, h := range b.Hands {
		n += len(h.Unplayed)
	}
	return n
}

// openTrick returns the trick the current player is contributing to, nil
// when they are on lead.
func openTrick(b *bridge.Board) *bridge.Trick {
	t := b.CurrentTrick()
	if t == nil || len(t.Cards) == 0 || t.Full() {
		return nil
	}
	return t
}

// choose applies the single-dummy rules: lead the top of the longest side
// suit, win cheaply when partner is not already winning, otherwise play
// low. Ruff when void and the trick is the opponents'.
func choose(b *bridge.Board, seat bridge.Seat, hand []bridge.Card) bridge.Card {
	trump, hasTrump := b.Contract.Denom.Trump()
	t := openTrick(b)
	if t == nil {
		return lead(hand, trump, hasTrump)
	}

	led := t.Cards[0].Suit
	win, winner := currentBest(t, trump, hasTrump)
	partnerWinning := winner == seat.Partner()
	follow := ofSuit(hand, led)

	if len(follow) > 0 {
		if !partnerWinning {
			if c, ok := lowestBeating(follow, win, led, trump, hasTrump); ok {
				return c
			}
		}
		return lowest(follow)
	}
	if hasTrump && !partnerWinning {
		if c, ok := lowestBeating(ofSuit(hand, trump), win, led, trump, hasTrump); ok {
			return c
		}
	}
	return discard(hand, trump, hasTrump)
}

func lead(hand []bridge.Card, trump bridge.Suit, hasTrump bool) bridge.Card {
	var best []bridge.Card
	for _, s := range []bridge.Suit{bridge.Spades, bridge.Hearts, bridge.Diamonds, bridge.Clubs} {
		if hasTrump && s == trump {
			continue
		}
		if cs := ofSuit(hand, s); len(cs) > len(best) {
			best = cs
		}
	}
	if len(best) == 0 {
		best = hand
	}
	return highest(best)
}

func discard(hand []bridge.Card, trump bridge.Suit, hasTrump bool) bridge.Card {
	var side []bridge.Card
	for _, c := range hand {
		if !hasTrump || c.Suit != trump {
			side = append(side, c)
		}
	}
	if len(side) == 0 {
		side = hand
	}
	return lowest(side)
}

func currentBest(t *bridge.Trick, trump bridge.Suit, hasTrump bool) (bridge.Card, bridge.Seat) {
	led := t.Cards[0].Suit
	best := 0
	for i := 1; i < len(t.Cards); i++ {
		if beats(t.Cards[i], t.Cards[best], led, trump, hasTrump) {
			best = i
		}
	}
	return t.Cards[best], t.SeatAt(best + 1)
}

func beats(c, cur bridge.Card, led, trump bridge.Suit, hasTrump bool) bool {
	if hasTrump && c.Suit == trump && cur.Suit != trump {
		return true
	}
	if hasTrump && c.Suit != trump && cur.Suit == trump {
		return false
	}
	if c.Suit == cur.Suit {
		return c.Rank > cur.Rank
	}
	return c.Suit == led && cur.Suit != led
}

func lowestBeating(cards []bridge.Card, win bridge.Card, led, trump bridge.Suit, hasTrump bool) (bridge.Card, bool) {
	var out bridge.Card
	found := false
	for _, c := range cards {
		if beats(c, win, led, trump, hasTrump) && (!found || c.Rank < out.Rank) {
			out, found = c, true
		}
	}
	return out, found
}

func ofSuit(cards []bridge.Card, s bridge.Suit) []bridge.Card {
	var out []bridge.Card
	for _, c := range cards {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}

func lowest(cards []bridge.Card) bridge.Card {
	out := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < out.Rank || (c.Rank == out.Rank && c.Suit < out.Suit) {
			out = c
		}
	}
	return out
}

func highest(cards []bridge.Card) bridge.Card {
	out := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > out.Rank || (c.Rank == out.Rank && c.Suit > out.Suit) {
			out = c
		}
	}
	return out
}
