package game

import "github.com/psionman/bfg-api/internal/bridge"

// setHandAttempts bounds the search for a deal matching a set hand.
const setHandAttempts = 20000

// SetHand is a practice hand type North is dealt on request.
type SetHand struct {
	Name   string
	Duo    bool
	accept func(cards []bridge.Card) bool
}

func hcpBetween(lo, hi int) func([]bridge.Card) bool {
	return func(cards []bridge.Card) bool {
		p := bridge.HCP(cards)
		return p >= lo && p <= hi
	}
}

func balancedBetween(lo, hi int) func([]bridge.Card) bool {
	in := hcpBetween(lo, hi)
	return func(cards []bridge.Card) bool { return in(cards) && bridge.Balanced(cards) }
}

func longSuit(suits []bridge.Suit, length, lo, hi int) func([]bridge.Card) bool {
	in := hcpBetween(lo, hi)
	return func(cards []bridge.Card) bool {
		if !in(cards) {
			return false
		}
		for _, s := range suits {
			if bridge.SuitLength(cards, s) >= length {
				return true
			}
		}
		return false
	}
}

var majors = []bridge.Suit{bridge.Spades, bridge.Hearts}

// SetHands is the catalog; a room stores indexes into it.
var SetHands = []SetHand{
	{Name: "Balanced 12-14", Duo: true, accept: balancedBetween(12, 14)},
	{Name: "1NT opener (15-17)", Duo: true, accept: balancedBetween(15, 17)},
	{Name: "2NT opener (20-21)", Duo: true, accept: balancedBetween(20, 21)},
	{Name: "Strong 2C (22+)", Duo: true, accept: hcpBetween(22, 37)},
	{Name: "Five-card major opener", Duo: true, accept: longSuit(majors, 5, 12, 19)},
	{Name: "Minor suit opener", accept: func(cards []bridge.Card) bool {
		return hcpBetween(12, 19)(cards) &&
			bridge.SuitLength(cards, bridge.Spades) < 5 &&
			bridge.SuitLength(cards, bridge.Hearts) < 5 &&
			!balancedBetween(15, 17)(cards)
	}},
	{Name: "Weak two", accept: longSuit([]bridge.Suit{bridge.Spades, bridge.Hearts, bridge.Diamonds}, 6, 6, 10)},
	{Name: "Pre-empt (seven-card suit)", Duo: true, accept: longSuit(bridge.Suits[:], 7, 5, 10)},
	{Name: "Weak responding hand (6-9)", accept: hcpBetween(6, 9)},
	{Name: "Game values opposite an opener (13-15)", accept: hcpBetween(13, 15)},
	{Name: "Slam try (18+ with a long suit)", Duo: true, accept: longSuit(bridge.Suits[:], 6, 18, 37)},
}

// setHandNames lists the catalog names for one mode, keyed by index.
func setHandNames(duo bool) map[int]string {
	out := make(map[int]string)
	for i, h := range SetHands {
		if !duo || h.Duo {
			out[i] = h.Name
		}
	}
	return out
}

// validSetHands drops indexes outside the catalog.
func validSetHands(in []int) []int {
	out := make([]int, 0, len(in))
	for _, i := range in {
		if i >= 0 && i < len(SetHands) {
			out = append(out, i)
		}
	}
	return out
}
