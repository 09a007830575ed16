package auction

import "github.com/psionman/bfg-api/internal/bridge"

// Blank marks a bidding-box slot whose bid is no longer available.
const Blank = "blank"

// Refresh returns the bidding box for the history: the 35 bids in order with
// every bid at or below the last bid blanked, and the extra calls on offer.
// The warning tokens are only added for duo play.
func Refresh(h []string, addWarnings bool) (names, extras []string) {
	names = bridge.BidNames()
	last := lastBidRank(h)
	for i := 0; i <= last && i < len(names); i++ {
		names[i] = Blank
	}

	extras = []string{"P"}
	if canDouble(h) {
		extras = append(extras, "D")
	}
	if canRedouble(h) {
		extras = append(extras, "R")
	}
	if addWarnings {
		extras = append(extras, Warnings...)
	}
	return names, extras
}

func isValueToken(s string) bool {
	return s != "P" && s != "D" && s != "R"
}

// canDouble: the last call is a bid, or a bid is followed by two passes.
func canDouble(h []string) bool {
	n := len(h)
	if n == 0 || allPasses(h) {
		return false
	}
	if isValueToken(h[n-1]) {
		return true
	}
	return n >= 3 && isValueToken(h[n-3]) && h[n-2] == "P" && h[n-1] == "P"
}

// canRedouble: the last call is a double, or a double is followed by two
// passes.
func canRedouble(h []string) bool {
	n := len(h)
	if n >= 2 && h[n-1] == "D" {
		return true
	}
	return n >= 4 && h[n-3] == "D" && h[n-2] == "P" && h[n-1] == "P"
}

func allPasses(h []string) bool {
	for _, c := range h {
		if c != "P" {
			return false
		}
	}
	return true
}
