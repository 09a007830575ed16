package auction

import (
	"context"
	"math/rand"
	"testing"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the queued calls in order, then passes.
type scripted struct {
	calls []string
	asked []bridge.Seat
}

func (s *scripted) SuggestBid(_ context.Context, _ *bridge.Board, seat bridge.Seat) (advisor.Suggestion, error) {
	s.asked = append(s.asked, seat)
	if len(s.calls) == 0 {
		return advisor.Suggestion{Call: bridge.Pass}, nil
	}
	c := bridge.MustCall(s.calls[0])
	s.calls = s.calls[1:]
	return advisor.Suggestion{Call: c}, nil
}

func newBoard(dealer bridge.Seat) *bridge.Board {
	return bridge.NewBoard(dealer, bridge.VulNone, bridge.Deal(rand.New(rand.NewSource(3))))
}

func TestThreePassesAndPassedOut(t *testing.T) {
	assert.False(t, ThreePasses([]string{"P", "P", "P"}))
	assert.True(t, ThreePasses([]string{"P", "P", "P", "P"}))
	assert.True(t, ThreePasses([]string{"1C", "P", "P", "P"}))
	assert.False(t, ThreePasses([]string{"1C", "P", "P"}))
	assert.True(t, PassedOut([]string{"P", "P", "P", "P"}))
	assert.False(t, PassedOut([]string{"1C", "P", "P", "P"}))
}

func TestLegal(t *testing.T) {
	cases := []struct {
		history []string
		call    string
		want    bool
	}{
		{nil, "1C", true},
		{nil, "D", false},
		{[]string{"1H"}, "1S", true},
		{[]string{"1H"}, "1D", false},
		{[]string{"1H"}, "1H", false},
		{[]string{"1H"}, "D", true},
		{[]string{"1H", "P"}, "D", false},
		{[]string{"1H", "P", "P"}, "D", true},
		{[]string{"1H", "D"}, "R", true},
		{[]string{"1H", "D"}, "D", false},
		{[]string{"1H", "D", "P", "P"}, "R", true},
		{[]string{"1H", "D", "P"}, "R", false},
		{[]string{"1H", "P", "P", "P"}, "2C", false},
		{[]string{"P", "P", "P"}, "1NT", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Legal(tc.history, bridge.MustCall(tc.call)), "%v then %s", tc.history, tc.call)
	}
}

func TestRefresh(t *testing.T) {
	names, extras := Refresh([]string{"1H"}, false)
	assert.Equal(t, []string{Blank, Blank, Blank, "1S", "1NT"}, names[:5])
	assert.Equal(t, []string{"P", "D"}, extras)

	names, extras = Refresh([]string{"1H", "D"}, false)
	assert.Equal(t, "1S", names[3])
	assert.Equal(t, []string{"P", "R"}, extras)

	_, extras = Refresh([]string{"1H", "P", "P"}, true)
	assert.Equal(t, []string{"P", "D", "alert", "stop"}, extras)

	_, extras = Refresh([]string{"1H", "D", "P", "P"}, false)
	assert.Equal(t, []string{"P", "R"}, extras)

	names, extras = Refresh([]string{"P", "P"}, false)
	assert.Equal(t, "1C", names[0])
	assert.Equal(t, []string{"P"}, extras)

	names, _ = Refresh([]string{"7NT"}, false)
	for _, n := range names {
		assert.Equal(t, Blank, n)
	}
}

func TestInitialSoloDealerEast(t *testing.T) {
	b := newBoard(bridge.East)
	bidder := &scripted{}
	require.NoError(t, Initial(context.Background(), b, bridge.North, bridge.Solo, bidder, nil))
	assert.Len(t, b.BidHistory, 3)
	assert.Equal(t, []bridge.Seat{bridge.East, bridge.South, bridge.West}, bidder.asked)
	assert.Equal(t, bridge.North, b.NextBidder())
}

func TestInitialDuo(t *testing.T) {
	b := newBoard(bridge.East)
	require.NoError(t, Initial(context.Background(), b, bridge.North, bridge.Duo, &scripted{}, nil))
	assert.Len(t, b.BidHistory, 1)
	assert.Equal(t, bridge.South, b.NextBidder())

	b = newBoard(bridge.South)
	require.NoError(t, Initial(context.Background(), b, bridge.North, bridge.Duo, &scripted{}, nil))
	assert.Empty(t, b.BidHistory)

	b = newBoard(bridge.North)
	require.NoError(t, Initial(context.Background(), b, bridge.North, bridge.Solo, &scripted{}, nil))
	assert.Empty(t, b.BidHistory)
}

func TestAdvanceSoloLocksContract(t *testing.T) {
	b := newBoard(bridge.North)
	bidder := &scripted{}
	require.NoError(t, Advance(context.Background(), b, bridge.North, bridge.Solo, "1NT", bidder))
	assert.Equal(t, []string{"1NT", "P", "P", "P"}, b.BidHistory)
	assert.Equal(t, "1NT", b.Contract.Name())
	assert.Equal(t, bridge.North, b.Declarer())
}

func TestAdvanceDuoStopsAtPartner(t *testing.T) {
	b := newBoard(bridge.North)
	bidder := &scripted{calls: []string{"1S"}}
	require.NoError(t, Advance(context.Background(), b, bridge.North, bridge.Duo, "1C", bidder))
	assert.Equal(t, []string{"1C", "1S"}, b.BidHistory)
	assert.Equal(t, bridge.South, b.NextBidder())
	assert.True(t, b.Contract.IsZero())

	require.NoError(t, Advance(context.Background(), b, bridge.South, bridge.Duo, "2C", bidder))
	assert.Equal(t, []string{"1C", "1S", "2C", "P"}, b.BidHistory)
}

func TestAdvanceRejects(t *testing.T) {
	b := newBoard(bridge.East)
	err := Advance(context.Background(), b, bridge.North, bridge.Solo, "1C", &scripted{})
	assert.ErrorIs(t, err, ErrOutOfTurn)
	assert.Empty(t, b.BidHistory)

	b = newBoard(bridge.North)
	b.BidHistory = []string{"2H", "P", "P", "D"}
	err = Advance(context.Background(), b, bridge.North, bridge.Solo, "1C", &scripted{})
	assert.ErrorIs(t, err, ErrIllegalCall)
	assert.Len(t, b.BidHistory, 4)

	err = Advance(context.Background(), b, bridge.North, bridge.Solo, "banana", &scripted{})
	assert.ErrorIs(t, err, ErrIllegalCall)
}

func TestAdvanceWarningIsNotACall(t *testing.T) {
	b := newBoard(bridge.North)
	require.NoError(t, Advance(context.Background(), b, bridge.North, bridge.Duo, "alert", &scripted{}))
	assert.Empty(t, b.BidHistory)
	assert.Equal(t, "alert", b.Warning)

	require.NoError(t, Advance(context.Background(), b, bridge.North, bridge.Duo, "", &scripted{}))
	assert.Empty(t, b.BidHistory)
}

func TestIllegalSuggestionBecomesPass(t *testing.T) {
	b := newBoard(bridge.North)
	bidder := &scripted{calls: []string{"1C", "D", "1C"}}
	require.NoError(t, Advance(context.Background(), b, bridge.North, bridge.Solo, "2C", bidder))
	assert.Equal(t, []string{"2C", "P", "P", "P"}, b.BidHistory)
	assert.Equal(t, "2C", b.Contract.Name())
}

func TestLockTrimsSuperfluousPass(t *testing.T) {
	b := newBoard(bridge.West)
	b.BidHistory = []string{"1C", "P", "P", "P", "P"}
	require.True(t, Lock(b))
	assert.Equal(t, []string{"1C", "P", "P", "P"}, b.BidHistory)
	assert.Equal(t, bridge.West, b.Declarer())

	b.BidHistory = []string{"P", "P", "P", "P"}
	b.Contract = bridge.NoContract
	assert.False(t, Lock(b))
	assert.True(t, b.Contract.IsZero())
}
