package heuristic

import (
	"errors"
	"sort"

	"github.com/psionman/bfg-api/internal/bridge"
)

// DefaultNodeBudget bounds one endgame search.
const DefaultNodeBudget = 250_000

var errBudget = errors.New("endgame search budget exhausted")

// search is an alpha-beta minimax over the remaining cards, valued as the
// number of tricks North-South take from the position.
type search struct {
	hands    [4][]bridge.Card
	trick    []bridge.Card
	leader   bridge.Seat
	trump    bridge.Suit
	hasTrump bool
	nodes    int
	budget   int
}

// solve returns the best card for the player on turn and the number of
// tricks North-South take from here with best play on both sides.
func solve(b *bridge.Board, budget int) (bridge.Card, int, error) {
	if budget <= 0 {
		budget = DefaultNodeBudget
	}
	s := &search{budget: budget, leader: b.CurrentPlayer}
	s.trump, s.hasTrump = b.Contract.Denom.Trump()
	for seat, h := range b.Hands {
		if !seat.Valid() || h == nil {
			continue
		}
		cards := append([]bridge.Card(nil), h.Unplayed...)
		sort.Slice(cards, func(i, j int) bool { return cards[i].Index() < cards[j].Index() })
		s.hands[seat] = cards
	}
	if t := openTrick(b); t != nil {
		s.trick = append([]bridge.Card(nil), t.Cards...)
		s.leader = t.Leader
	}

	seat := s.leader.Add(len(s.trick))
	moves := s.moves(seat)
	if len(moves) == 0 {
		return bridge.Card{}, 0, errors.New("no cards to search")
	}
	maximise := seat.IsNS()
	alpha, beta := -1, 14
	best, bestValue := moves[0], 14
	if maximise {
		bestValue = -1
	}
	for _, c := range moves {
		v, err := s.try(seat, c, alpha, beta)
		if err != nil {
			return bridge.Card{}, 0, err
		}
		if maximise && v > bestValue {
			best, bestValue, alpha = c, v, v
		}
		if !maximise && v < bestValue {
			best, bestValue, beta = c, v, v
		}
	}
	return best, bestValue, nil
}

// moves lists the cards seat may play, following suit when it can.
func (s *search) moves(seat bridge.Seat) []bridge.Card {
	hand := s.hands[seat]
	if len(s.trick) == 0 {
		return hand
	}
	if follow := ofSuit(hand, s.trick[0].Suit); len(follow) > 0 {
		return follow
	}
	return hand
}

func (s *search) value(alpha, beta int) (int, error) {
	s.nodes++
	if s.nodes > s.budget {
		return 0, errBudget
	}
	seat := s.leader.Add(len(s.trick))
	moves := s.moves(seat)
	if len(moves) == 0 {
		return 0, nil
	}
	maximise := seat.IsNS()
	best := 14
	if maximise {
		best = -1
	}
	for _, c := range moves {
		v, err := s.try(seat, c, alpha, beta)
		if err != nil {
			return 0, err
		}
		if maximise {
			best = max(best, v)
			alpha = max(alpha, best)
		} else {
			best = min(best, v)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}
	return best, nil
}

func (s *search) try(seat bridge.Seat, c bridge.Card, alpha, beta int) (int, error) {
	hand := s.hands[seat]
	i := 0
	for i < len(hand) && hand[i] != c {
		i++
	}
	s.hands[seat] = append(hand[:i:i], hand[i+1:]...)
	s.trick = append(s.trick, c)

	var v int
	var err error
	if len(s.trick) == 4 {
		_, winner := currentBest(&bridge.Trick{Leader: s.leader, Cards: s.trick}, s.trump, s.hasTrump)
		won := 0
		if winner.IsNS() {
			won = 1
		}
		trick, leader := s.trick, s.leader
		s.trick, s.leader = nil, winner
		v, err = s.value(alpha-won, beta-won)
		v += won
		s.trick, s.leader = trick, leader
	} else {
		v, err = s.value(alpha, beta)
	}

	s.trick = s.trick[:len(s.trick)-1]
	s.hands[seat] = hand
	return v, err
}
