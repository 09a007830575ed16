package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// Suit ordered by rank for bidding: clubs lowest, spades highest.
type Suit int8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var ErrInvalidCard = errors.New("invalid card")

// Suits lists the suits from lowest to highest.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

const suitLetters = "CDHS"

func ParseSuit(s string) (Suit, error) {
	if len(s) == 1 {
		if i := strings.IndexByte(suitLetters, s[0]); i >= 0 {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("%w: suit %q", ErrInvalidCard, s)
}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return ""
	}
	return suitLetters[s : s+1]
}

// Rank runs from 2 to 14 (ace).
type Rank int8

const (
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

const rankLetters = "23456789TJQKA"

func ParseRank(s string) (Rank, error) {
	if len(s) == 1 {
		if i := strings.IndexByte(rankLetters, s[0]); i >= 0 {
			return Rank(i + 2), nil
		}
	}
	return 0, fmt.Errorf("%w: rank %q", ErrInvalidCard, s)
}

func (r Rank) String() string {
	if r < 2 || r > Ace {
		return ""
	}
	return rankLetters[r-2 : r-1]
}

// HCP returns Milton Work high card points for the rank.
func (r Rank) HCP() int {
	if r > Ten {
		return int(r - Ten)
	}
	return 0
}

type Card struct {
	Rank Rank
	Suit Suit
}

// ParseCard accepts names such as "AS", "TH" or "2C". A leading "10" is
// accepted for the ten.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	r, err := ParseRank(s[:1])
	if err != nil {
		return Card{}, err
	}
	su, err := ParseSuit(s[1:])
	if err != nil {
		return Card{}, err
	}
	return Card{Rank: r, Suit: su}, nil
}

func MustCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Name() string   { return c.Rank.String() + c.Suit.String() }
func (c Card) String() string { return c.Name() }

// Index maps the card to 0..51, clubs first.
func (c Card) Index() int { return int(c.Suit)*13 + int(c.Rank) - 2 }

func (c Card) MarshalText() ([]byte, error) { return []byte(c.Name()), nil }

func (c *Card) UnmarshalText(b []byte) error {
	v, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Deck returns the 52 cards ordered by suit then rank.
func Deck() []Card {
	out := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := Rank(2); r <= Ace; r++ {
			out = append(out, Card{Rank: r, Suit: s})
		}
	}
	return out
}

func CardNames(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name()
	}
	return out
}
