package bridge

import (
	"errors"
	"fmt"
)

// Seat is a compass position at the table. Seats are ordered clockwise
// starting with North so that arithmetic modulo 4 walks the playing order.
type Seat int8

const (
	North Seat = iota
	East
	South
	West
)

// NoSeat marks an unset seat (no declarer yet, no current player).
const NoSeat Seat = -1

var ErrInvalidSeat = errors.New("invalid seat")

// Seats lists the four seats in playing order.
var Seats = [4]Seat{North, East, South, West}

const seatLetters = "NESW"

func ParseSeat(s string) (Seat, error) {
	if len(s) == 1 {
		for i := 0; i < 4; i++ {
			if seatLetters[i] == s[0] {
				return Seat(i), nil
			}
		}
	}
	return NoSeat, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
}

func (s Seat) Valid() bool { return s >= North && s <= West }

func (s Seat) String() string {
	if !s.Valid() {
		return ""
	}
	return seatLetters[s : s+1]
}

// Add returns the seat n positions clockwise from s. Negative n walks
// anticlockwise.
func (s Seat) Add(n int) Seat {
	return Seat(mod(int(s)+n, 4))
}

func (s Seat) Next() Seat    { return s.Add(1) }
func (s Seat) Prev() Seat    { return s.Add(-1) }
func (s Seat) Partner() Seat { return s.Add(2) }

// IsNS reports whether the seat belongs to the North-South partnership.
func (s Seat) IsNS() bool { return s == North || s == South }

// SameSide reports whether both seats sit in the same partnership.
func (s Seat) SameSide(o Seat) bool {
	return s.Valid() && o.Valid() && s.IsNS() == o.IsNS()
}

// Offset returns how many places clockwise o sits from s.
func (s Seat) Offset(o Seat) int {
	return mod(int(o)-int(s), 4)
}

func (s Seat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Seat) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = NoSeat
		return nil
	}
	v, err := ParseSeat(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Side is a partnership.
type Side int8

const (
	NS Side = iota
	EW
)

func (s Seat) Side() Side {
	if s.IsNS() {
		return NS
	}
	return EW
}

func (s Side) String() string {
	if s == NS {
		return "NS"
	}
	return "EW"
}

func (s Side) Other() Side { return 1 - s }

func mod(a, m int) int {
	return ((a % m) + m) % m
}
