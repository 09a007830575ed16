package bridge

import (
	"errors"
	"fmt"
)

// Mode selects how many seats at the table are played by people.
type Mode int8

const (
	// Solo has one human seat; the other three are played by the server.
	Solo Mode = iota
	// SoloNoComments is Solo without bidding commentary.
	SoloNoComments
	// Duo has a human partnership against two automatic opponents.
	Duo
)

var ErrInvalidMode = errors.New("invalid mode")

func ParseMode(s string) (Mode, error) {
	switch s {
	case "solo":
		return Solo, nil
	case "solo-no-comments":
		return SoloNoComments, nil
	case "duo":
		return Duo, nil
	}
	return Solo, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) String() string {
	switch m {
	case SoloNoComments:
		return "solo-no-comments"
	case Duo:
		return "duo"
	}
	return "solo"
}

func (m Mode) IsDuo() bool { return m == Duo }

// HumanSeats lists the seats controlled by people when seat is the
// requesting player.
func (m Mode) HumanSeats(seat Seat) []Seat {
	if m == Duo {
		return []Seat{seat, seat.Partner()}
	}
	return []Seat{seat}
}

// IsHuman reports whether other is played by a person at seat's table.
func (m Mode) IsHuman(seat, other Seat) bool {
	if other == seat {
		return true
	}
	return m == Duo && other == seat.Partner()
}
