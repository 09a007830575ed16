// Package auction drives the bidding phase of a board.
package auction

import (
	"context"
	"errors"
	"fmt"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

var (
	ErrIllegalCall = errors.New("illegal call")
	ErrOutOfTurn   = errors.New("not this seat's turn to call")
)

// MaxCalls bounds every automatic bidding loop.
const MaxCalls = 96

// Warnings are advisory tokens a duo player can send in place of a call.
var Warnings = []string{"alert", "stop"}

func IsWarning(s string) bool {
	for _, w := range Warnings {
		if s == w {
			return true
		}
	}
	return false
}

// ThreePasses reports whether the history ends the auction.
func ThreePasses(h []string) bool {
	n := len(h)
	return n >= 4 && h[n-1] == "P" && h[n-2] == "P" && h[n-3] == "P"
}

// PassedOut reports an auction of four passes.
func PassedOut(h []string) bool {
	return len(h) == 4 && h[0] == "P" && h[1] == "P" && h[2] == "P" && h[3] == "P"
}

// Legal reports whether call may follow history.
func Legal(h []string, call bridge.Call) bool {
	if ThreePasses(h) {
		return false
	}
	switch call.Kind {
	case bridge.KindPass:
		return true
	case bridge.KindBid:
		return call.Level >= 1 && call.Level <= 7 && call.Rank() > lastBidRank(h)
	}
	i, last, ok := lastAction(h)
	if !ok {
		return false
	}
	opponent := (len(h)-i)%2 == 1
	switch call.Kind {
	case bridge.KindDouble:
		return opponent && last.IsValue()
	case bridge.KindRedouble:
		return opponent && last.Kind == bridge.KindDouble
	}
	return false
}

func lastBidRank(h []string) int {
	for i := len(h) - 1; i >= 0; i-- {
		if c, err := bridge.ParseCall(h[i]); err == nil && c.IsValue() {
			return c.Rank()
		}
	}
	return -1
}

// lastAction finds the last call that is not a pass.
func lastAction(h []string) (int, bridge.Call, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i] == "P" {
			continue
		}
		c, err := bridge.ParseCall(h[i])
		if err != nil {
			return 0, bridge.Call{}, false
		}
		return i, c, true
	}
	return 0, bridge.Call{}, false
}

// Lock sets contract and declarer once three passes follow a bid. A
// superfluous trailing pass is dropped first. It reports whether a contract
// was fixed.
func Lock(b *bridge.Board) bool {
	h := b.BidHistory
	if !ThreePasses(h) || PassedOut(h) {
		return false
	}
	for len(h) > 4 && h[len(h)-4] == "P" && ThreePasses(h[:len(h)-1]) {
		h = h[:len(h)-1]
	}
	b.BidHistory = h
	calls, err := b.Calls()
	if err != nil {
		return false
	}
	c, ok := bridge.ContractFromCalls(b.Dealer, calls)
	if !ok {
		return false
	}
	b.Contract = c
	return true
}

// autoBid asks the bidder for the next seat's call. An illegal suggestion
// is replaced by a pass.
func autoBid(ctx context.Context, b *bridge.Board, bidder advisor.Bidder) error {
	seat := b.NextBidder()
	s, err := bidder.SuggestBid(ctx, b, seat)
	if err != nil {
		return fmt.Errorf("suggest bid for %s: %w", seat, err)
	}
	call := s.Call
	if !Legal(b.BidHistory, call) {
		log.Debug().Str("seat", seat.String()).Str("call", call.Name()).Msg("illegal suggestion replaced by pass")
		call = bridge.Pass
	}
	b.BidHistory = append(b.BidHistory, call.Name())
	log.Info().Str("seat", seat.String()).Str("call", call.Name()).Str("username", "system").Msg("bid-made")
	return nil
}

// initialParams returns the modulus and count that identify the first turn
// of a human seat given the dealer.
func initialParams(dealer, seat bridge.Seat, mode bridge.Mode) (diff, m, k int) {
	diff = int(dealer) - int(seat) - 1
	if mode.IsDuo() {
		return diff, 2, 1
	}
	return diff, 4, 3
}

func mod(a, m int) int { return ((a % m) + m) % m }

// Initial auto-bids from history until a human seat is due to call. It is
// used for new boards and as the floor of bidding undo.
func Initial(ctx context.Context, b *bridge.Board, seat bridge.Seat, mode bridge.Mode, bidder advisor.Bidder, history []string) error {
	b.BidHistory = append([]string{}, history...)
	b.Contract = bridge.NoContract
	diff, m, k := initialParams(b.Dealer, seat, mode)
	for mod(len(b.BidHistory)+diff, m) != k && !ThreePasses(b.BidHistory) && len(b.BidHistory) < MaxCalls {
		if err := autoBid(ctx, b, bidder); err != nil {
			return err
		}
	}
	Lock(b)
	return nil
}

// Advance records a human call and lets the automatic seats respond until
// a human seat is due again or the auction ends. Empty calls and warning
// tokens leave the history untouched.
func Advance(ctx context.Context, b *bridge.Board, seat bridge.Seat, mode bridge.Mode, raw string, bidder advisor.Bidder) error {
	if raw == "" || IsWarning(raw) {
		if mode.IsDuo() {
			b.Warning = raw
		}
		return nil
	}
	b.Warning = ""
	if ThreePasses(b.BidHistory) {
		return fmt.Errorf("%w: auction is over", ErrIllegalCall)
	}
	call, err := bridge.ParseCall(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalCall, err)
	}
	if next := b.NextBidder(); !mode.IsHuman(seat, next) {
		return fmt.Errorf("%w: %s to call", ErrOutOfTurn, next)
	}
	if !Legal(b.BidHistory, call) {
		return fmt.Errorf("%w: %s after %v", ErrIllegalCall, call, b.BidHistory)
	}
	b.BidHistory = append(b.BidHistory, call.Name())
	return Continue(ctx, b, seat, mode, bidder)
}

// Continue auto-bids for the seats that are not human and locks the
// contract when the auction ends.
func Continue(ctx context.Context, b *bridge.Board, seat bridge.Seat, mode bridge.Mode, bidder advisor.Bidder) error {
	for !ThreePasses(b.BidHistory) && !mode.IsHuman(seat, b.NextBidder()) && len(b.BidHistory) < MaxCalls {
		if err := autoBid(ctx, b, bidder); err != nil {
			return err
		}
	}
	Lock(b)
	return nil
}
