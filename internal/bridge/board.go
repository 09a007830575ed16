package bridge

import (
	"errors"
	"fmt"
)

// Source records where a board came from.
type Source int8

const (
	SourceRandom Source = iota
	SourceSetHands
	SourceHistory
	SourcePBN
)

var sourceNames = [...]string{"random", "set-hands", "history", "pbn"}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return ""
	}
	return sourceNames[s]
}

// SourceNames maps each source name to its code and back.
func SourceNames() map[string]any {
	out := make(map[string]any, 2*len(sourceNames))
	for i, n := range sourceNames {
		out[n] = i
		out[fmt.Sprint(i)] = n
	}
	return out
}

var ErrIncompleteDeal = errors.New("deal must hold 52 distinct cards")

// Board is one deal together with its auction and play record.
type Board struct {
	Identifier    string         `json:"identifier"`
	Description   string         `json:"description"`
	Dealer        Seat           `json:"dealer"`
	Vulnerable    Vulnerability  `json:"vulnerable"`
	Hands         map[Seat]*Hand `json:"hands"`
	BidHistory    []string       `json:"bid_history"`
	Contract      Contract       `json:"contract"`
	Tricks        []*Trick       `json:"tricks"`
	CurrentPlayer Seat           `json:"current_player"`
	NSTricks      int            `json:"NS_tricks"`
	EWTricks      int            `json:"EW_tricks"`
	Source        Source         `json:"source"`
	Warning       string         `json:"warning,omitempty"`
}

// NewBoard returns a board holding the given hands with no auction or play.
func NewBoard(dealer Seat, vul Vulnerability, hands map[Seat][]Card) *Board {
	b := &Board{
		Dealer:        dealer,
		Vulnerable:    vul,
		Hands:         make(map[Seat]*Hand, 4),
		BidHistory:    []string{},
		Contract:      NoContract,
		CurrentPlayer: NoSeat,
	}
	for seat, cards := range hands {
		b.Hands[seat] = NewHand(cards)
	}
	return b
}

func (b *Board) Declarer() Seat { return b.Contract.Declarer }

// Dummy is declarer's partner, NoSeat before the contract is known.
func (b *Board) Dummy() Seat {
	if !b.Contract.Declarer.Valid() {
		return NoSeat
	}
	return b.Contract.Declarer.Partner()
}

// CurrentTrick is the last trick, nil before play starts.
func (b *Board) CurrentTrick() *Trick {
	if len(b.Tricks) == 0 {
		return nil
	}
	return b.Tricks[len(b.Tricks)-1]
}

// Calls parses the bid history.
func (b *Board) Calls() ([]Call, error) { return ParseCalls(b.BidHistory) }

// NextBidder is the seat due to call after the current history.
func (b *Board) NextBidder() Seat { return b.Dealer.Add(len(b.BidHistory)) }

func (b *Board) TricksFor(s Side) int {
	if s == NS {
		return b.NSTricks
	}
	return b.EWTricks
}

// CompletedTricks is NS_tricks + EW_tricks.
func (b *Board) CompletedTricks() int { return b.NSTricks + b.EWTricks }

// AwardTrick credits a trick to the winner's partnership.
func (b *Board) AwardTrick(winner Seat) {
	if !winner.Valid() {
		return
	}
	if winner.IsNS() {
		b.NSTricks++
	} else {
		b.EWTricks++
	}
}

// RecountTricks recomputes the partnership counters from trick winners.
func (b *Board) RecountTricks() {
	b.NSTricks, b.EWTricks = 0, 0
	for _, t := range b.Tricks {
		if t.Full() {
			b.AwardTrick(t.Winner)
		}
	}
}

// ResetPlay clears the play record and returns every card to its hand.
func (b *Board) ResetPlay() {
	b.Tricks = nil
	b.NSTricks, b.EWTricks = 0, 0
	b.CurrentPlayer = NoSeat
	for _, h := range b.Hands {
		h.Reset()
	}
}

// Score is declarer's duplicate score once all thirteen tricks are played.
func (b *Board) Score() int {
	if b.CompletedTricks() != 13 || b.Contract.IsZero() {
		return 0
	}
	side := b.Contract.Declarer.Side()
	return b.Contract.Score(b.TricksFor(side), b.Vulnerable.Vulnerable(side))
}

// Validate checks that the four hands form the full deck.
func (b *Board) Validate() error {
	seen := make(map[Card]bool, 52)
	for _, seat := range Seats {
		h := b.Hands[seat]
		if h == nil || len(h.Cards) != 13 {
			return fmt.Errorf("%w: seat %s", ErrIncompleteDeal, seat)
		}
		for _, c := range h.Cards {
			if seen[c] {
				return fmt.Errorf("%w: duplicate %s", ErrIncompleteDeal, c)
			}
			seen[c] = true
		}
	}
	return nil
}

// Owner returns the seat that was dealt c.
func (b *Board) Owner(c Card) Seat {
	for seat, h := range b.Hands {
		if ContainsCard(h.Cards, c) {
			return seat
		}
	}
	return NoSeat
}

// Clone deep-copies the board.
func (b *Board) Clone() *Board {
	c := *b
	c.Hands = make(map[Seat]*Hand, len(b.Hands))
	for seat, h := range b.Hands {
		c.Hands[seat] = h.clone()
	}
	c.BidHistory = append([]string{}, b.BidHistory...)
	c.Tricks = make([]*Trick, len(b.Tricks))
	for i, t := range b.Tricks {
		c.Tricks[i] = t.clone()
	}
	return &c
}

// Rotate turns the table r places clockwise: the hand at seat i moves to
// seat i+r, and dealer and vulnerability follow.
func (b *Board) Rotate(r int) {
	hands := make(map[Seat]*Hand, 4)
	for seat, h := range b.Hands {
		hands[seat.Add(r)] = h
	}
	b.Hands = hands
	b.Dealer = b.Dealer.Add(r)
	b.Vulnerable = b.Vulnerable.Rotate(r)
}
