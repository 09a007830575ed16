package bridge

// Hand holds the thirteen cards dealt to a seat and the subset still to be
// played.
type Hand struct {
	Cards    []Card `json:"cards"`
	Unplayed []Card `json:"unplayed_cards"`
}

func NewHand(cards []Card) *Hand {
	h := &Hand{Cards: append([]Card(nil), cards...)}
	h.Reset()
	return h
}

// Reset makes every dealt card unplayed again.
func (h *Hand) Reset() {
	h.Unplayed = append(h.Unplayed[:0:0], h.Cards...)
}

func (h *Hand) Holds(c Card) bool { return indexOf(h.Unplayed, c) >= 0 }

// Remove takes c out of the unplayed cards and reports whether it was there.
func (h *Hand) Remove(c Card) bool {
	i := indexOf(h.Unplayed, c)
	if i < 0 {
		return false
	}
	h.Unplayed = append(h.Unplayed[:i], h.Unplayed[i+1:]...)
	return true
}

// Restore returns a played card to the unplayed set.
func (h *Hand) Restore(c Card) {
	if !h.Holds(c) {
		h.Unplayed = append(h.Unplayed, c)
	}
}

func (h *Hand) clone() *Hand {
	return &Hand{
		Cards:    append([]Card(nil), h.Cards...),
		Unplayed: append([]Card(nil), h.Unplayed...),
	}
}

// SuitLength counts cards of the suit in cards.
func SuitLength(cards []Card, s Suit) int {
	n := 0
	for _, c := range cards {
		if c.Suit == s {
			n++
		}
	}
	return n
}

// LongestSuit returns the length of the longest suit in cards.
func LongestSuit(cards []Card) int {
	best := 0
	for _, s := range Suits {
		if n := SuitLength(cards, s); n > best {
			best = n
		}
	}
	return best
}

// HCP totals high card points.
func HCP(cards []Card) int {
	n := 0
	for _, c := range cards {
		n += c.Rank.HCP()
	}
	return n
}

// Balanced reports 4-3-3-3, 4-4-3-2 and 5-3-3-2 shapes.
func Balanced(cards []Card) bool {
	doubletons := 0
	for _, s := range Suits {
		switch n := SuitLength(cards, s); {
		case n < 2:
			return false
		case n == 2:
			doubletons++
		case n > 5:
			return false
		}
	}
	return doubletons <= 1
}

func indexOf(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}

// ContainsCard reports whether c is in cards.
func ContainsCard(cards []Card, c Card) bool { return indexOf(cards, c) >= 0 }
