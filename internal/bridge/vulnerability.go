package bridge

import "fmt"

type Vulnerability int8

const (
	VulNone Vulnerability = iota
	VulNS
	VulEW
	VulBoth
)

// boardVulnerability is the standard duplicate cycle indexed by board
// number modulo 16 (index 0 is board 16).
var boardVulnerability = [16]Vulnerability{
	VulEW, VulNone, VulNS, VulEW, VulBoth, VulNS, VulEW, VulBoth,
	VulNone, VulEW, VulBoth, VulNone, VulNS, VulBoth, VulNone, VulNS,
}

// VulnerabilityFor returns the vulnerability of the given board number.
func VulnerabilityFor(board int) Vulnerability {
	return boardVulnerability[mod(board, 16)]
}

// DealerFor returns the dealer of the given board number.
func DealerFor(board int) Seat {
	return North.Add(board - 1)
}

func ParseVulnerability(s string) (Vulnerability, error) {
	switch s {
	case "None", "none", "Love", "-", "":
		return VulNone, nil
	case "NS":
		return VulNS, nil
	case "EW":
		return VulEW, nil
	case "Both", "All", "both", "all":
		return VulBoth, nil
	}
	return VulNone, fmt.Errorf("invalid vulnerability %q", s)
}

func (v Vulnerability) String() string {
	switch v {
	case VulNS:
		return "NS"
	case VulEW:
		return "EW"
	case VulBoth:
		return "Both"
	}
	return "None"
}

// Vulnerable reports whether the side is vulnerable.
func (v Vulnerability) Vulnerable(s Side) bool {
	switch v {
	case VulBoth:
		return true
	case VulNS:
		return s == NS
	case VulEW:
		return s == EW
	}
	return false
}

// Rotate returns the vulnerability after turning the table r places;
// an odd rotation swaps the partnerships.
func (v Vulnerability) Rotate(r int) Vulnerability {
	if mod(r, 2) == 0 {
		return v
	}
	switch v {
	case VulNS:
		return VulEW
	case VulEW:
		return VulNS
	}
	return v
}

func (v Vulnerability) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Vulnerability) UnmarshalText(b []byte) error {
	x, err := ParseVulnerability(string(b))
	if err != nil {
		return err
	}
	*v = x
	return nil
}
