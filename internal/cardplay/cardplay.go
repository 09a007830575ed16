// Package cardplay runs the play of the hand: playing cards to tricks,
// completing tricks and keeping the partnership counters.
package cardplay

import (
	"errors"

	"github.com/psionman/bfg-api/internal/bridge"
)

var ErrCannotPlay = errors.New("card cannot be played")

// CanPlay reports whether the current player may play c: the seat must
// hold the card unplayed and it must not already be in the current trick.
func CanPlay(b *bridge.Board, c bridge.Card) bool {
	seat := b.CurrentPlayer
	if !seat.Valid() {
		return false
	}
	h, ok := b.Hands[seat]
	if !ok || h == nil || !h.Holds(c) {
		return false
	}
	if t := b.CurrentTrick(); t != nil && t.Contains(c) {
		return false
	}
	return true
}

// PlayCard plays c for the current player and reports whether it was
// accepted. A trick reaching four cards is completed immediately.
func PlayCard(b *bridge.Board, c bridge.Card) bool {
	FinalizePending(b)
	if !CanPlay(b, c) {
		return false
	}
	t := b.CurrentTrick()
	if t == nil {
		t = bridge.NewTrick(b.CurrentPlayer)
		b.Tricks = append(b.Tricks, t)
	}
	t.Cards = append(t.Cards, c)
	b.Hands[b.CurrentPlayer].Remove(c)
	if t.Full() {
		winner := t.Complete(b.Contract.Denom)
		b.AwardTrick(winner)
		startNext(b, winner)
		return true
	}
	b.CurrentPlayer = t.Next()
	return true
}

func startNext(b *bridge.Board, leader bridge.Seat) {
	b.CurrentPlayer = leader
	if len(b.Tricks) < 13 {
		b.Tricks = append(b.Tricks, bridge.NewTrick(leader))
	}
}

// FinalizePending completes a full trick left open at the end of the play
// record, as happens when a board is loaded with a partial play. It returns
// the winner or NoSeat when nothing was pending.
func FinalizePending(b *bridge.Board) bridge.Seat {
	t := b.CurrentTrick()
	if t == nil || !t.Full() || len(b.Tricks) >= 13 {
		return bridge.NoSeat
	}
	winner := t.Complete(b.Contract.Denom)
	b.RecountTricks()
	startNext(b, winner)
	return winner
}

// OpeningLeader is declarer's left-hand opponent.
func OpeningLeader(b *bridge.Board) bridge.Seat {
	if !b.Declarer().Valid() {
		return bridge.NoSeat
	}
	return b.Declarer().Next()
}

// SetupFirstTrick opens the first trick unless play has already started.
func SetupFirstTrick(b *bridge.Board) {
	if b.Contract.IsZero() {
		return
	}
	if len(b.Tricks) > 0 && len(b.Tricks[0].Cards) > 0 {
		return
	}
	leader := OpeningLeader(b)
	b.Tricks = []*bridge.Trick{bridge.NewTrick(leader)}
	b.CurrentPlayer = leader
}

// Resume derives the current player, trick winners and counters from a
// play record loaded from elsewhere, then opens the next trick if the last
// one is complete.
func Resume(b *bridge.Board) {
	if b.Contract.IsZero() {
		return
	}
	if len(b.Tricks) == 0 {
		SetupFirstTrick(b)
		return
	}
	b.CurrentPlayer = OpeningLeader(b)
	for _, t := range b.Tricks {
		if len(t.Cards) > 0 {
			b.CurrentPlayer = t.Next()
		}
		if t.Full() {
			b.CurrentPlayer = t.Complete(b.Contract.Denom)
		}
	}
	b.RecountTricks()
	if t := b.CurrentTrick(); t.Full() && len(b.Tricks) < 13 {
		b.Tricks = append(b.Tricks, bridge.NewTrick(t.Winner))
	}
}

// Replay returns every card to its hand and restarts play at the opening
// lead.
func Replay(b *bridge.Board) {
	b.ResetPlay()
	SetupFirstTrick(b)
}

// CurrentPlayerOf derives the seat due to play from a trick.
func CurrentPlayerOf(t *bridge.Trick) bridge.Seat {
	if t == nil {
		return bridge.NoSeat
	}
	return t.Next()
}

// PreviousPlayer is the seat that played the last card shown to the table.
func PreviousPlayer(b *bridge.Board) bridge.Seat {
	if !b.CurrentPlayer.Valid() || len(b.Tricks) == 0 {
		return bridge.NoSeat
	}
	last := b.Tricks[len(b.Tricks)-1]
	switch {
	case len(last.Cards) > 0:
		return b.CurrentPlayer.Prev()
	case len(b.Tricks) > 1:
		return b.Tricks[len(b.Tricks)-2].Leader.Prev()
	}
	return last.Leader
}

// Controlled returns a predicate for the seats played by people: the
// requesting seat, its partner in duo, and dummy when the requesting side
// declares.
func Controlled(b *bridge.Board, seat bridge.Seat, mode bridge.Mode) func(bridge.Seat) bool {
	declaring := b.Declarer().Valid() && b.Declarer().SameSide(seat)
	return func(s bridge.Seat) bool {
		if mode.IsHuman(seat, s) {
			return true
		}
		return declaring && s == seat.Partner()
	}
}
