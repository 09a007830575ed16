package bridge

import (
	"math/rand"
	"sort"
)

// Deal shuffles the deck and gives thirteen cards to each seat.
func Deal(rng *rand.Rand) map[Seat][]Card {
	deck := Deck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	hands := make(map[Seat][]Card, 4)
	for i, seat := range Seats {
		hands[seat] = append([]Card(nil), deck[i*13:(i+1)*13]...)
	}
	return hands
}

// DealMatching deals until accept returns true or attempts run out. The
// last deal is returned along with whether it was accepted.
func DealMatching(rng *rand.Rand, attempts int, accept func(map[Seat][]Card) bool) (map[Seat][]Card, bool) {
	var hands map[Seat][]Card
	for i := 0; i < attempts; i++ {
		hands = Deal(rng)
		if accept(hands) {
			return hands, true
		}
	}
	return hands, false
}

// DefaultSuitOrder is used for display when there is no trump suit.
var DefaultSuitOrder = []Suit{Spades, Hearts, Clubs, Diamonds}

// SuitOrder returns the display order of suits: the trump suit first, then
// alternating colours.
func SuitOrder(trump Denomination, known bool) []Suit {
	if !known {
		return DefaultSuitOrder
	}
	switch trump {
	case DenomHearts:
		return []Suit{Hearts, Spades, Diamonds, Clubs}
	case DenomDiamonds:
		return []Suit{Diamonds, Spades, Hearts, Clubs}
	case DenomClubs:
		return []Suit{Clubs, Hearts, Spades, Diamonds}
	}
	return DefaultSuitOrder
}

// SortCards returns a copy of cards grouped by suit in the given order,
// highest rank first.
func SortCards(cards []Card, order []Suit) []Card {
	pos := make(map[Suit]int, 4)
	for i, s := range order {
		pos[s] = i
	}
	out := append([]Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Suit != out[j].Suit {
			return pos[out[i].Suit] < pos[out[j].Suit]
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}
