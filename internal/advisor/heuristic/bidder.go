package heuristic

import (
	"context"
	"fmt"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
)

// shape summarises a hand for bidding.
type shape struct {
	hcp      int
	length   [4]int
	balanced bool
}

func evaluate(cards []bridge.Card) shape {
	s := shape{hcp: bridge.HCP(cards), balanced: bridge.Balanced(cards)}
	for _, c := range cards {
		s.length[c.Suit]++
	}
	return s
}

func (s shape) of(d bridge.Denomination) int {
	if d == bridge.NoTrump {
		return 0
	}
	return s.length[d]
}

// longest returns the longest suit among ds, preferring the earlier entry
// on equal length.
func (s shape) longest(ds ...bridge.Denomination) bridge.Denomination {
	best := ds[0]
	for _, d := range ds[1:] {
		if s.of(d) > s.of(best) {
			best = d
		}
	}
	return best
}

// reading is the auction so far as seen from one seat.
type reading struct {
	opened     bool
	opener     bridge.Seat
	opening    bridge.Call
	mine       int
	partner    bridge.Call
	hasPartner bool
	theirs     bridge.Call
	hasTheirs  bool
}

func read(b *bridge.Board, seat bridge.Seat) reading {
	var r reading
	for i, name := range b.BidHistory {
		c, err := bridge.ParseCall(name)
		if err != nil || !c.IsValue() {
			continue
		}
		who := b.Dealer.Add(i)
		if !r.opened {
			r.opened, r.opener, r.opening = true, who, c
		}
		switch {
		case who == seat:
			r.mine++
		case who == seat.Partner():
			r.partner, r.hasPartner = c, true
		default:
			r.theirs, r.hasTheirs = c, true
		}
	}
	return r
}

type suggestion = advisor.Suggestion

func pass(comment string) suggestion {
	return suggestion{Call: bridge.Pass, Comment: comment}
}

// cheapest is the lowest legal bid in d, or a pass when it would exceed
// maxLevel.
func cheapest(h []string, d bridge.Denomination, maxLevel int) (bridge.Call, bool) {
	for level := 1; level <= maxLevel && level <= 7; level++ {
		c := bridge.Bid(level, d)
		if auction.Legal(h, c) {
			return c, true
		}
	}
	return bridge.Pass, false
}

// Bidder is a small rule-based bidding system: standard openings, simple
// responses, one rebid each and basic competition. It never makes more
// than two bids for a seat.
type Bidder struct{}

func (Bidder) SuggestBid(_ context.Context, b *bridge.Board, seat bridge.Seat) (advisor.Suggestion, error) {
	h, ok := b.Hands[seat]
	if !ok || h == nil {
		return advisor.Suggestion{}, fmt.Errorf("%w: no hand for %s", bridge.ErrIncompleteDeal, seat)
	}
	if auction.ThreePasses(b.BidHistory) {
		return pass("The auction is over."), nil
	}
	s := decide(b, seat, evaluate(h.Cards))
	if !auction.Legal(b.BidHistory, s.Call) {
		s = pass(s.Comment)
	}
	if s.Strategy == "" {
		s.Strategy = strategyFor(s.Call)
	}
	return s, nil
}

func decide(b *bridge.Board, seat bridge.Seat, e shape) suggestion {
	r := read(b, seat)
	switch {
	case r.mine >= 2:
		return pass("You have described your hand; leave the rest to partner.")
	case !r.opened:
		return open(e)
	case r.opener == seat:
		return rebid(b.BidHistory, e, r)
	case r.opener == seat.Partner():
		if r.mine > 0 {
			return pass("You have already responded.")
		}
		return respond(b.BidHistory, e, r)
	}
	return compete(b.BidHistory, e, r)
}

func open(e shape) suggestion {
	switch {
	case e.hcp >= 22:
		return suggestion{Call: bridge.Bid(2, bridge.DenomClubs), Comment: fmt.Sprintf("With %d points open the strong artificial 2C.", e.hcp)}
	case e.balanced && e.hcp >= 20 && e.hcp <= 21:
		return suggestion{Call: bridge.Bid(2, bridge.NoTrump), Comment: "A balanced 20-21 opens 2NT."}
	case e.balanced && e.hcp >= 15 && e.hcp <= 17:
		return suggestion{Call: bridge.Bid(1, bridge.NoTrump), Comment: "A balanced 15-17 opens 1NT."}
	case e.hcp >= 12:
		if major := e.longest(bridge.DenomSpades, bridge.DenomHearts); e.of(major) >= 5 {
			return suggestion{Call: bridge.Bid(1, major), Comment: fmt.Sprintf("Open your five-card major with %d points.", e.hcp)}
		}
		minor := bridge.DenomClubs
		if e.of(bridge.DenomDiamonds) > e.of(bridge.DenomClubs) || (e.of(bridge.DenomDiamonds) >= 4 && e.of(bridge.DenomClubs) == e.of(bridge.DenomDiamonds)) {
			minor = bridge.DenomDiamonds
		}
		return suggestion{Call: bridge.Bid(1, minor), Comment: "Without a five-card major open your better minor."}
	case e.hcp >= 6 && e.hcp <= 10:
		for _, d := range []bridge.Denomination{bridge.DenomSpades, bridge.DenomHearts, bridge.DenomDiamonds} {
			if e.of(d) == 6 {
				return suggestion{Call: bridge.Bid(2, d), Comment: "A good six-card suit and a weak hand makes a weak two."}
			}
		}
	}
	return pass(fmt.Sprintf("With %d points there is no opening bid.", e.hcp))
}

func respond(h []string, e shape, r reading) suggestion {
	op := r.opening
	switch {
	case op.Level == 2 && op.Denom == bridge.DenomClubs:
		return suggestion{Call: bridge.Bid(2, bridge.DenomDiamonds), Comment: "Make the waiting response to partner's strong 2C."}
	case op.Denom == bridge.NoTrump:
		return respondNoTrump(h, e, op)
	case op.Level == 2:
		if op.Denom.IsMajor() && e.of(op.Denom) >= 3 && e.hcp >= 16 {
			return suggestion{Call: bridge.Bid(4, op.Denom), Comment: "With a fit and a strong hand raise the weak two to game."}
		}
		return pass("Leave partner's weak two alone.")
	}

	if e.hcp < 6 {
		return pass(fmt.Sprintf("With %d points pass partner's opening.", e.hcp))
	}
	if op.Denom.IsMajor() && e.of(op.Denom) >= 3 {
		level := 2
		switch {
		case e.hcp >= 13:
			level = 4
		case e.hcp >= 10:
			level = 3
		}
		return suggestion{Call: bridge.Bid(level, op.Denom), Comment: fmt.Sprintf("Raise partner's major to show support and %d points.", e.hcp)}
	}
	if d := e.longest(bridge.DenomHearts, bridge.DenomSpades, bridge.DenomDiamonds, bridge.DenomClubs); e.of(d) >= 4 {
		if c, ok := cheapest(h, d, 1); ok {
			return suggestion{Call: c, Comment: "Show a four-card suit at the one level."}
		}
		if e.hcp >= 13 && e.of(d) >= 5 {
			if c, ok := cheapest(h, d, 2); ok {
				return suggestion{Call: c, Comment: "A new suit at the two level shows opening values."}
			}
		}
	}
	if op.Denom.IsMinor() && e.of(op.Denom) >= 5 && e.hcp <= 12 {
		level := 2
		if e.hcp >= 10 {
			level = 3
		}
		return suggestion{Call: bridge.Bid(level, op.Denom), Comment: "Raise partner's minor with good support."}
	}
	switch {
	case e.hcp <= 10:
		return suggestion{Call: bridge.Bid(1, bridge.NoTrump), Comment: "1NT shows 6-10 points and nothing better to say."}
	case e.hcp <= 12:
		return suggestion{Call: bridge.Bid(2, bridge.NoTrump), Comment: "2NT invites game."}
	}
	return suggestion{Call: bridge.Bid(3, bridge.NoTrump), Comment: "Bid the notrump game with opening values opposite an opening."}
}

func respondNoTrump(h []string, e shape, op bridge.Call) suggestion {
	if op.Level >= 2 {
		if e.hcp >= 5 {
			return suggestion{Call: bridge.Bid(3, bridge.NoTrump), Comment: "Raise 2NT to game."}
		}
		return pass("Too weak to raise 2NT.")
	}
	if e.hcp < 8 {
		return pass("Pass 1NT with fewer than 8 points.")
	}
	if major := e.longest(bridge.DenomSpades, bridge.DenomHearts); e.of(major) >= 6 && e.hcp >= 10 {
		return suggestion{Call: bridge.Bid(4, major), Comment: "Bid game in your six-card major."}
	}
	if e.hcp <= 9 {
		if c, ok := cheapest(h, bridge.NoTrump, 2); ok {
			return suggestion{Call: c, Comment: "Invite game with 8-9 points."}
		}
	}
	return suggestion{Call: bridge.Bid(3, bridge.NoTrump), Comment: "Bid game opposite 1NT."}
}

func rebid(h []string, e shape, r reading) suggestion {
	op := r.opening
	if !r.hasPartner {
		return pass("Partner has not responded.")
	}
	pt := r.partner
	switch {
	case op.Denom == bridge.NoTrump:
		return pass("Your notrump opening has described your hand.")
	case op.Level == 2 && op.Denom == bridge.DenomClubs:
		if e.balanced && e.hcp <= 24 {
			if c, ok := cheapest(h, bridge.NoTrump, 3); ok {
				return suggestion{Call: c, Comment: "Show the balanced strong hand."}
			}
		}
		d := e.longest(bridge.DenomSpades, bridge.DenomHearts, bridge.DenomDiamonds, bridge.DenomClubs)
		if c, ok := cheapest(h, d, 3); ok {
			return suggestion{Call: c, Comment: "Show your long suit."}
		}
		return pass("")
	case pt.Denom == op.Denom:
		if op.Denom.IsMajor() && e.hcp >= 16 && pt.Level < 4 {
			return suggestion{Call: bridge.Bid(4, op.Denom), Comment: "Partner has raised; bid game with extra values."}
		}
		return pass("Partner's raise has found the fit.")
	case pt.Denom == bridge.NoTrump:
		if e.hcp >= 18 && pt.Level < 3 {
			return suggestion{Call: bridge.Bid(3, bridge.NoTrump), Comment: "Raise to game with a strong opening."}
		}
		return pass("Accept partner's notrump.")
	}

	if e.of(pt.Denom) >= 4 {
		c, ok := cheapest(h, pt.Denom, 4)
		if ok && e.hcp >= 16 && c.Level < 4 {
			c = bridge.Bid(c.Level+1, pt.Denom)
		}
		if ok {
			return suggestion{Call: c, Comment: "Support partner's suit."}
		}
	}
	if e.of(op.Denom) >= 6 {
		if c, ok := cheapest(h, op.Denom, 3); ok {
			return suggestion{Call: c, Comment: "Rebid your six-card suit."}
		}
	}
	if e.balanced {
		if c, ok := cheapest(h, bridge.NoTrump, 2); ok {
			return suggestion{Call: c, Comment: "Rebid notrump to show a balanced minimum."}
		}
	}
	for _, d := range []bridge.Denomination{bridge.DenomSpades, bridge.DenomHearts, bridge.DenomDiamonds, bridge.DenomClubs} {
		if d != op.Denom && e.of(d) >= 4 {
			if c, ok := cheapest(h, d, 2); ok {
				return suggestion{Call: c, Comment: "Show your second suit."}
			}
		}
	}
	if c, ok := cheapest(h, op.Denom, 2); ok {
		return suggestion{Call: c, Comment: "Rebid your suit."}
	}
	return pass("")
}

func compete(h []string, e shape, r reading) suggestion {
	if r.hasPartner {
		if r.mine == 0 && e.hcp >= 6 && r.partner.Denom != bridge.NoTrump && e.of(r.partner.Denom) >= 3 {
			if c, ok := cheapest(h, r.partner.Denom, 3); ok {
				return suggestion{Call: c, Comment: "Raise partner's overcall."}
			}
		}
		return pass("")
	}
	if r.mine > 0 {
		return pass("You have already shown your hand.")
	}
	if e.balanced && e.hcp >= 15 && e.hcp <= 18 {
		if c, ok := cheapest(h, bridge.NoTrump, 1); ok {
			return suggestion{Call: c, Comment: "A 1NT overcall shows 15-18 balanced."}
		}
	}
	if e.hcp >= 8 && e.hcp <= 16 {
		d := e.longest(bridge.DenomSpades, bridge.DenomHearts, bridge.DenomDiamonds, bridge.DenomClubs)
		if e.of(d) >= 5 {
			maxLevel := 1
			if e.hcp >= 10 {
				maxLevel = 2
			}
			if c, ok := cheapest(h, d, maxLevel); ok {
				return suggestion{Call: c, Comment: "Overcall in your five-card suit."}
			}
		}
	}
	if e.hcp >= 12 && r.hasTheirs && r.theirs.Denom != bridge.NoTrump && e.of(r.theirs.Denom) <= 1 {
		return suggestion{Call: bridge.Double, Comment: "Make a takeout double with shortage in their suit."}
	}
	return pass("Nothing worth saying over the opponents.")
}

func strategyFor(c bridge.Call) string {
	switch {
	case c.Kind == bridge.KindPass:
		return "Pass until the hand is worth a call."
	case c.Kind == bridge.KindDouble:
		return "Compete with a takeout double."
	case c.Level >= 3 && c.Denom == bridge.NoTrump:
		return "Bid game when the partnership holds 25 points."
	}
	return "Describe your strength and shape."
}
