// Package undo takes back the last step of the auction or the play.
//
// A step is what one person did plus everything the server played for the
// other seats in reply, so one undo may return several cards to the hands
// and may reach back into the previous trick.
package undo

import (
	"context"
	"slices"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

// Cardplay rolls back the requester's last play step. Combinations with
// no matching rule leave the cards where they are. Partnership counters
// are recounted from the remaining tricks afterwards.
func Cardplay(b *bridge.Board, mode bridge.Mode, requester bridge.Seat) {
	if len(b.Tricks) == 0 || !requester.Valid() {
		return
	}
	if n := len(b.Tricks); n >= 2 && len(b.Tricks[n-1].Cards) == 0 {
		b.Tricks = b.Tricks[:n-1]
	}
	ph := firstTrick
	if len(b.Tricks) > 1 {
		ph = laterTrick
	}
	apply(b, policyFor(mode), ph, requester)

	b.RecountTricks()
	b.CurrentPlayer = b.Tricks[len(b.Tricks)-1].Next()
}

func apply(b *bridge.Board, p policy, ph phase, requester bridge.Seat) {
	t := b.Tricks[len(b.Tricks)-1]
	r, ok := lookup(p, ph, requester, b.Declarer(), t)
	if !ok {
		log.Debug().
			Str("seat", requester.String()).
			Str("leader", t.Leader.String()).
			Int("cards", len(t.Cards)).
			Msg("undo: nothing to take back")
		return
	}
	to := r.to
	if to == toEnd {
		to = len(t.Cards)
	}
	strip(b, t, r.from, to)

	if r.then == stop || len(t.Cards) > 0 || len(b.Tricks) < 2 {
		return
	}
	b.Tricks = b.Tricks[:len(b.Tricks)-1]
	switch r.then {
	case reEvaluatePrevious:
		apply(b, p, laterTrick, requester)
	case stripPrevious:
		prev := b.Tricks[len(b.Tricks)-1]
		strip(b, prev, prev.PositionOf(requester), len(prev.Cards))
	}
}

// strip returns the cards at play positions from..to to their owners and
// clears the trick's winner.
func strip(b *bridge.Board, t *bridge.Trick, from, to int) {
	if to > len(t.Cards) {
		to = len(t.Cards)
	}
	if from < 1 || from > to {
		return
	}
	for pos := to; pos >= from; pos-- {
		if h := b.Hands[t.SeatAt(pos)]; h != nil {
			h.Restore(t.Cards[pos-1])
		}
	}
	t.Cards = append(t.Cards[:from-1], t.Cards[to:]...)
	t.Winner = bridge.NoSeat
}

// Bidding removes calls from the end of the auction back to and including
// seat's last call. The history never falls below the calls made before
// seat could first act; initialState reports when it is back at that
// point.
func Bidding(ctx context.Context, b *bridge.Board, seat bridge.Seat, mode bridge.Mode, bidder advisor.Bidder) (initialState bool, err error) {
	floor := b.Clone()
	if err := auction.Initial(ctx, floor, seat, mode, bidder, nil); err != nil {
		return false, err
	}

	h := append([]string{}, b.BidHistory...)
	last := b.Dealer.Add(len(h) - 1)
	for len(h) > 0 && last != seat {
		h = h[:len(h)-1]
		last = last.Prev()
	}
	if len(h) > 0 {
		h = h[:len(h)-1]
	}
	if len(h) == 0 {
		h = floor.BidHistory
	}

	b.BidHistory = h
	b.Contract = bridge.NoContract
	b.Warning = ""
	return slices.Equal(h, floor.BidHistory), nil
}
