package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Denomination of a bid. The first four values coincide with Suit.
type Denomination int8

const (
	DenomClubs Denomination = iota
	DenomDiamonds
	DenomHearts
	DenomSpades
	NoTrump
)

var ErrInvalidCall = errors.New("invalid call")

func ParseDenomination(s string) (Denomination, error) {
	switch strings.ToUpper(s) {
	case "C":
		return DenomClubs, nil
	case "D":
		return DenomDiamonds, nil
	case "H":
		return DenomHearts, nil
	case "S":
		return DenomSpades, nil
	case "NT", "N":
		return NoTrump, nil
	}
	return 0, fmt.Errorf("%w: denomination %q", ErrInvalidCall, s)
}

func (d Denomination) String() string {
	if d == NoTrump {
		return "NT"
	}
	return Suit(d).String()
}

// Trump returns the trump suit, false for no trumps.
func (d Denomination) Trump() (Suit, bool) {
	if d == NoTrump {
		return 0, false
	}
	return Suit(d), true
}

func (d Denomination) IsMajor() bool { return d == DenomHearts || d == DenomSpades }
func (d Denomination) IsMinor() bool { return d == DenomClubs || d == DenomDiamonds }

type CallKind int8

const (
	KindBid CallKind = iota
	KindPass
	KindDouble
	KindRedouble
)

// Call is a single entry in an auction.
type Call struct {
	Kind  CallKind
	Level int
	Denom Denomination
}

var (
	Pass     = Call{Kind: KindPass}
	Double   = Call{Kind: KindDouble}
	Redouble = Call{Kind: KindRedouble}
)

func Bid(level int, d Denomination) Call {
	return Call{Kind: KindBid, Level: level, Denom: d}
}

// ParseCall reads the tokens used in bid histories ("1C".."7NT", "P", "D",
// "R") and the PBN spellings ("Pass", "X", "XX").
func ParseCall(s string) (Call, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	switch t {
	case "P", "PASS":
		return Pass, nil
	case "D", "X":
		return Double, nil
	case "R", "XX":
		return Redouble, nil
	}
	if len(t) < 2 {
		return Call{}, fmt.Errorf("%w: %q", ErrInvalidCall, s)
	}
	level, err := strconv.Atoi(t[:1])
	if err != nil || level < 1 || level > 7 {
		return Call{}, fmt.Errorf("%w: %q", ErrInvalidCall, s)
	}
	d, err := ParseDenomination(t[1:])
	if err != nil {
		return Call{}, fmt.Errorf("%w: %q", ErrInvalidCall, s)
	}
	return Bid(level, d), nil
}

func MustCall(s string) Call {
	c, err := ParseCall(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Call) Name() string {
	switch c.Kind {
	case KindPass:
		return "P"
	case KindDouble:
		return "D"
	case KindRedouble:
		return "R"
	}
	return strconv.Itoa(c.Level) + c.Denom.String()
}

func (c Call) String() string { return c.Name() }

// IsValue reports whether the call is a bid rather than pass/double/redouble.
func (c Call) IsValue() bool { return c.Kind == KindBid }

// Rank orders bids: 1C is 0, 7NT is 34. Non-bids return -1.
func (c Call) Rank() int {
	if !c.IsValue() {
		return -1
	}
	return (c.Level-1)*5 + int(c.Denom)
}

func (c Call) MarshalText() ([]byte, error) { return []byte(c.Name()), nil }

func (c *Call) UnmarshalText(b []byte) error {
	v, err := ParseCall(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// BidNames lists the 35 bids in ascending order.
func BidNames() []string {
	out := make([]string, 0, 35)
	for level := 1; level <= 7; level++ {
		for d := DenomClubs; d <= NoTrump; d++ {
			out = append(out, Bid(level, d).Name())
		}
	}
	return out
}

// CallNames lists every call token: the bids followed by P, D and R.
func CallNames() []string {
	return append(BidNames(), "P", "D", "R")
}

// ParseCalls converts a bid history into calls.
func ParseCalls(history []string) ([]Call, error) {
	out := make([]Call, 0, len(history))
	for _, h := range history {
		c, err := ParseCall(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
