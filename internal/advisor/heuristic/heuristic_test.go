package heuristic

import (
	"context"
	"math/rand"
	"testing"

	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/cardplay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(names ...string) []bridge.Card {
	out := make([]bridge.Card, len(names))
	for i, n := range names {
		out[i] = bridge.MustCard(n)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	e := evaluate(cards("AS", "KS", "QS", "2S", "AH", "3H", "4H", "KD", "5D", "6D", "QC", "7C", "8C"))
	assert.Equal(t, 18, e.hcp)
	assert.Equal(t, 4, e.of(bridge.DenomSpades))
	assert.True(t, e.balanced)
}

func TestOpenings(t *testing.T) {
	cases := []struct {
		name string
		hand []bridge.Card
		want string
	}{
		{"strong notrump", cards("AS", "KS", "2S", "AH", "3H", "4H", "5H", "KD", "5D", "6D", "QC", "7C", "8C"), "1NT"},
		{"five-card major", cards("AS", "KS", "QS", "3S", "2S", "AH", "4H", "7D", "5D", "6D", "7C", "8C", "9C"), "1S"},
		{"better minor", cards("AS", "KS", "3S", "AH", "4H", "5H", "KD", "5D", "6D", "2D", "7C", "8C", "9C"), "1D"},
		{"strong two clubs", cards("AS", "KS", "QS", "JS", "AH", "KH", "QH", "AD", "KD", "2D", "AC", "3C", "4C"), "2C"},
		{"weak", cards("9S", "8S", "3S", "7H", "4H", "5H", "TD", "5D", "6D", "2D", "7C", "8C", "9C"), "P"},
		{"weak two", cards("KS", "QS", "TS", "9S", "8S", "3S", "7H", "4H", "5D", "2D", "7C", "8C", "AC"), "2S"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, open(evaluate(tc.hand)).Call.Name())
		})
	}
}

func TestBidderAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var bidder Bidder
	for deal := 0; deal < 60; deal++ {
		b := bridge.NewBoard(bridge.Seat(deal%4), bridge.VulnerabilityFor(deal+1), bridge.Deal(rng))
		for !auction.ThreePasses(b.BidHistory) {
			require.Less(t, len(b.BidHistory), auction.MaxCalls)
			seat := b.NextBidder()
			s, err := bidder.SuggestBid(context.Background(), b, seat)
			require.NoError(t, err)
			require.True(t, auction.Legal(b.BidHistory, s.Call), "deal %d: %v then %s", deal, b.BidHistory, s.Call)
			assert.NotEmpty(t, s.Strategy)
			b.BidHistory = append(b.BidHistory, s.Call.Name())
		}
		counts := map[bridge.Seat]int{}
		for i, name := range b.BidHistory {
			if c := bridge.MustCall(name); c.IsValue() {
				counts[b.Dealer.Add(i)]++
			}
		}
		for seat, n := range counts {
			assert.LessOrEqual(t, n, 2, "seat %s", seat)
		}
	}
}

func TestResponseToOneNoTrump(t *testing.T) {
	hands := bridge.Deal(rand.New(rand.NewSource(5)))
	b := bridge.NewBoard(bridge.North, bridge.VulNone, hands)
	b.Hands[bridge.South] = bridge.NewHand(cards("AS", "KS", "2S", "3H", "4H", "5H", "KD", "5D", "6D", "QC", "7C", "8C", "9C"))
	b.BidHistory = []string{"1NT", "P"}
	s, err := Bidder{}.SuggestBid(context.Background(), b, bridge.South)
	require.NoError(t, err)
	assert.Equal(t, "3NT", s.Call.Name())
	assert.NotEmpty(t, s.Comment)
}

func playAll(t *testing.T, seed int64, contract string, declarer bridge.Seat, dd bool) *bridge.Board {
	t.Helper()
	b := bridge.NewBoard(bridge.North, bridge.VulNone, bridge.Deal(rand.New(rand.NewSource(seed))))
	bid := bridge.MustCall(contract)
	b.Contract = bridge.Contract{Level: bid.Level, Denom: bid.Denom, Declarer: declarer}
	cardplay.SetupFirstTrick(b)
	p := New()
	for i := 0; i < 52; i++ {
		seat := b.CurrentPlayer
		c, err := p.SuggestCard(context.Background(), b, dd)
		require.NoError(t, err)
		require.True(t, b.Hands[seat].Holds(c), "%s does not hold %s", seat, c)
		if tr := openTrick(b); tr != nil {
			led := tr.Cards[0].Suit
			if len(ofSuit(b.Hands[seat].Unplayed, led)) > 0 {
				require.Equal(t, led, c.Suit, "%s must follow suit", seat)
			}
		}
		require.True(t, cardplay.PlayCard(b, c))
	}
	return b
}

func TestPlayerCompletesDeals(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		b := playAll(t, seed, "4S", bridge.Seat(seed%4), false)
		assert.Equal(t, 13, b.CompletedTricks())

		b = playAll(t, seed, "3NT", bridge.Seat(seed%4), true)
		assert.Equal(t, 13, b.CompletedTricks())
	}
}

func TestPlayerNoCard(t *testing.T) {
	b := bridge.NewBoard(bridge.North, bridge.VulNone, bridge.Deal(rand.New(rand.NewSource(2))))
	b.CurrentPlayer = bridge.NoSeat
	_, err := Player{}.SuggestCard(context.Background(), b, false)
	assert.Error(t, err)
}

func TestChooseFollowsAndRuffs(t *testing.T) {
	b := bridge.NewBoard(bridge.North, bridge.VulNone, bridge.Deal(rand.New(rand.NewSource(4))))
	b.Contract = bridge.Contract{Level: 4, Denom: bridge.DenomSpades, Declarer: bridge.South}
	tr := bridge.NewTrick(bridge.West)
	tr.Cards = cards("KH")
	b.Tricks = []*bridge.Trick{tr}
	b.CurrentPlayer = bridge.North

	assert.Equal(t, "AH", choose(b, bridge.North, cards("AH", "2H", "3S")).Name())
	assert.Equal(t, "3S", choose(b, bridge.North, cards("2D", "3S", "QS")).Name())

	tr.Cards = cards("KH", "AH")
	b.CurrentPlayer = bridge.South
	assert.Equal(t, "2H", choose(b, bridge.South, cards("QH", "2H", "3S")).Name(), "partner is winning")
}

// ending is a two-card ending at spades with North on lead: cashing the
// ace first lets South ruff the second heart.
func ending() *bridge.Board {
	hold := map[bridge.Seat][]string{
		bridge.North: {"AH", "2H"},
		bridge.East:  {"KH", "QH"},
		bridge.South: {"3S", "3H"},
		bridge.West:  {"JH", "TH"},
	}
	b := &bridge.Board{
		Dealer:        bridge.North,
		Hands:         map[bridge.Seat]*bridge.Hand{},
		Contract:      bridge.Contract{Level: 4, Denom: bridge.DenomSpades, Declarer: bridge.North},
		CurrentPlayer: bridge.North,
		Tricks:        []*bridge.Trick{bridge.NewTrick(bridge.North)},
	}
	for seat, names := range hold {
		b.Hands[seat] = bridge.NewHand(cards(names...))
	}
	return b
}

func TestSolveEnding(t *testing.T) {
	b := ending()
	c, ns, err := solve(b, 0)
	require.NoError(t, err)
	assert.Equal(t, "AH", c.Name())
	assert.Equal(t, 2, ns)

	got, err := Player{}.SuggestCard(context.Background(), b, true)
	require.NoError(t, err)
	assert.Equal(t, "AH", got.Name())
}

func TestSolveBudget(t *testing.T) {
	_, _, err := solve(ending(), 3)
	assert.ErrorIs(t, err, errBudget)

	c, err := Player{NodeBudget: 3}.SuggestCard(context.Background(), ending(), true)
	require.NoError(t, err)
	assert.Equal(t, "AH", c.Name())
}

func TestSolveDefender(t *testing.T) {
	b := ending()
	b.Tricks[0].Cards = cards("2H")
	b.Hands[bridge.North].Remove(bridge.MustCard("2H"))
	b.CurrentPlayer = bridge.East
	c, ns, err := solve(b, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ns)
	assert.Equal(t, bridge.Hearts, c.Suit)
}
