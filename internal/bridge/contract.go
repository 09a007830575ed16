package bridge

import "strconv"

// Risk is the doubled state of a contract.
type Risk int8

const (
	Undoubled Risk = iota
	Doubled
	Redoubled
)

// ContractBase is the number of tricks (the book) below a level-one contract.
const ContractBase = 6

// Contract is the final bid of an auction. The zero value (Level 0) means
// no contract has been reached.
type Contract struct {
	Level    int          `json:"level"`
	Denom    Denomination `json:"denomination"`
	Risk     Risk         `json:"risk"`
	Declarer Seat         `json:"declarer"`
}

// NoContract is the empty contract with an unset declarer.
var NoContract = Contract{Declarer: NoSeat}

func (c Contract) IsZero() bool { return c.Level == 0 }

// Name renders the contract as "4H", "3NTX" or "6SXX"; empty when unset.
func (c Contract) Name() string {
	if c.IsZero() {
		return ""
	}
	s := strconv.Itoa(c.Level) + c.Denom.String()
	switch c.Risk {
	case Doubled:
		s += "X"
	case Redoubled:
		s += "XX"
	}
	return s
}

// Target is the number of tricks declarer needs.
func (c Contract) Target() int {
	if c.IsZero() {
		return ContractBase
	}
	return ContractBase + c.Level
}

// ContractFromCalls derives the contract from a completed auction. The
// boolean is false when no bid was made.
func ContractFromCalls(dealer Seat, calls []Call) (Contract, bool) {
	last := -1
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].IsValue() {
			last = i
			break
		}
	}
	if last < 0 {
		return NoContract, false
	}
	bid := calls[last]
	c := Contract{Level: bid.Level, Denom: bid.Denom}
	for _, call := range calls[last+1:] {
		switch call.Kind {
		case KindDouble:
			c.Risk = Doubled
		case KindRedouble:
			c.Risk = Redoubled
		}
	}
	side := dealer.Add(last).Side()
	for i := 0; i <= last; i++ {
		seat := dealer.Add(i)
		if seat.Side() == side && calls[i].IsValue() && calls[i].Denom == bid.Denom {
			c.Declarer = seat
			break
		}
	}
	return c, true
}

func (d Denomination) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Denomination) UnmarshalText(b []byte) error {
	v, err := ParseDenomination(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Score returns the duplicate score from declarer's point of view given the
// number of tricks declarer took.
func (c Contract) Score(tricks int, vulnerable bool) int {
	if c.IsZero() {
		return 0
	}
	need := c.Target()
	if tricks < need {
		return -c.undertrickPenalty(need-tricks, vulnerable)
	}
	mult := 1
	switch c.Risk {
	case Doubled:
		mult = 2
	case Redoubled:
		mult = 4
	}
	trickValue := 0
	for i := 1; i <= c.Level; i++ {
		trickValue += c.trickPoints(i)
	}
	trickValue *= mult

	score := trickValue
	if trickValue >= 100 {
		if vulnerable {
			score += 500
		} else {
			score += 300
		}
	} else {
		score += 50
	}
	switch c.Level {
	case 6:
		if vulnerable {
			score += 750
		} else {
			score += 500
		}
	case 7:
		if vulnerable {
			score += 1500
		} else {
			score += 1000
		}
	}
	switch c.Risk {
	case Doubled:
		score += 50
	case Redoubled:
		score += 100
	}

	over := tricks - need
	switch c.Risk {
	case Undoubled:
		for i := 0; i < over; i++ {
			score += c.trickPoints(c.Level + 1 + i)
		}
	case Doubled:
		if vulnerable {
			score += over * 200
		} else {
			score += over * 100
		}
	case Redoubled:
		if vulnerable {
			score += over * 400
		} else {
			score += over * 200
		}
	}
	return score
}

// trickPoints is the value of the n-th trick over book, undoubled.
func (c Contract) trickPoints(n int) int {
	switch c.Denom {
	case DenomClubs, DenomDiamonds:
		return 20
	case NoTrump:
		if n == 1 {
			return 40
		}
		return 30
	}
	return 30
}

func (c Contract) undertrickPenalty(down int, vulnerable bool) int {
	if c.Risk == Undoubled {
		if vulnerable {
			return down * 100
		}
		return down * 50
	}
	total := 0
	for i := 1; i <= down; i++ {
		switch {
		case vulnerable && i == 1:
			total += 200
		case vulnerable:
			total += 300
		case i == 1:
			total += 100
		case i <= 3:
			total += 200
		default:
			total += 300
		}
	}
	if c.Risk == Redoubled {
		total *= 2
	}
	return total
}
