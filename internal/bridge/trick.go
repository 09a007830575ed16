package bridge

// Trick is one round of up to four cards, held in play order from the
// leader.
type Trick struct {
	Leader Seat   `json:"leader"`
	Cards  []Card `json:"cards"`
	Winner Seat   `json:"winner"`
}

func NewTrick(leader Seat) *Trick {
	return &Trick{Leader: leader, Cards: []Card{}, Winner: NoSeat}
}

// Suit is the suit led; false while the trick is empty.
func (t *Trick) Suit() (Suit, bool) {
	if len(t.Cards) == 0 {
		return 0, false
	}
	return t.Cards[0].Suit, true
}

func (t *Trick) Full() bool { return len(t.Cards) == 4 }

// SeatAt returns the seat that plays the card at the 1-based position.
func (t *Trick) SeatAt(pos int) Seat { return t.Leader.Add(pos - 1) }

// PositionOf returns the 1-based position at which seat plays.
func (t *Trick) PositionOf(seat Seat) int { return t.Leader.Offset(seat) + 1 }

// Next is the seat due to play, or the winner once the trick is full.
func (t *Trick) Next() Seat {
	if t.Full() {
		return t.Winner
	}
	return t.Leader.Add(len(t.Cards))
}

// Contains reports whether c has been played to this trick.
func (t *Trick) Contains(c Card) bool { return ContainsCard(t.Cards, c) }

// Complete fixes the winner of a full trick: the highest trump if any was
// played, otherwise the highest card of the suit led.
func (t *Trick) Complete(d Denomination) Seat {
	if !t.Full() {
		return NoSeat
	}
	led := t.Cards[0].Suit
	trump, hasTrump := d.Trump()
	best := 0
	for i := 1; i < 4; i++ {
		if beats(t.Cards[i], t.Cards[best], led, trump, hasTrump) {
			best = i
		}
	}
	t.Winner = t.SeatAt(best + 1)
	return t.Winner
}

func beats(c, cur Card, led, trump Suit, hasTrump bool) bool {
	if hasTrump {
		if c.Suit == trump && cur.Suit != trump {
			return true
		}
		if c.Suit != trump && cur.Suit == trump {
			return false
		}
	}
	if c.Suit == cur.Suit {
		return c.Rank > cur.Rank
	}
	return c.Suit == led && cur.Suit != led
}

func (t *Trick) clone() *Trick {
	return &Trick{Leader: t.Leader, Cards: append([]Card{}, t.Cards...), Winner: t.Winner}
}
