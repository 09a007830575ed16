package pbn

import (
	"fmt"
	"strings"

	"github.com/psionman/bfg-api/internal/bridge"
)

// Serialize renders the board as PBN lines joined with newlines.
func Serialize(b *bridge.Board) string {
	return strings.Join(SerializeLines(b), "\n")
}

func SerializeLines(b *bridge.Board) []string {
	var out []string
	tag := func(name, value string) {
		out = append(out, fmt.Sprintf("[%s %q]", name, strings.ReplaceAll(value, `"`, "'")))
	}
	tag("Event", "")
	tag("Site", "")
	tag("Board", b.Identifier)
	tag("Dealer", b.Dealer.String())
	tag("Vulnerable", b.Vulnerable.String())
	tag("Deal", deal(b))
	if b.Description != "" {
		tag("Description", b.Description)
	}

	switch {
	case !b.Contract.IsZero():
		tag("Declarer", b.Contract.Declarer.String())
		tag("Contract", b.Contract.Name())
	case passedOut(b.BidHistory):
		tag("Declarer", "")
		tag("Contract", "Pass")
	}

	if len(b.BidHistory) > 0 {
		tag("Auction", b.Dealer.String())
		out = append(out, auctionLines(b.BidHistory)...)
	}
	if lines := playLines(b); len(lines) > 0 {
		tag("Play", b.Tricks[0].Leader.String())
		out = append(out, lines...)
	}
	return out
}

var pbnSuitOrder = []bridge.Suit{bridge.Spades, bridge.Hearts, bridge.Diamonds, bridge.Clubs}

func deal(b *bridge.Board) string {
	parts := make([]string, 0, 4)
	for _, seat := range bridge.Seats {
		h := b.Hands[seat]
		if h == nil {
			parts = append(parts, "-")
			continue
		}
		sorted := bridge.SortCards(h.Cards, pbnSuitOrder)
		suits := make([]string, 0, 4)
		for _, s := range pbnSuitOrder {
			var sb strings.Builder
			for _, c := range sorted {
				if c.Suit == s {
					sb.WriteString(c.Rank.String())
				}
			}
			suits = append(suits, sb.String())
		}
		parts = append(parts, strings.Join(suits, "."))
	}
	return "N:" + strings.Join(parts, " ")
}

func passedOut(h []string) bool {
	return len(h) == 4 && h[0] == "P" && h[1] == "P" && h[2] == "P" && h[3] == "P"
}

func auctionLines(history []string) []string {
	var out []string
	for i := 0; i < len(history); i += 4 {
		end := i + 4
		if end > len(history) {
			end = len(history)
		}
		row := make([]string, 0, 4)
		for _, h := range history[i:end] {
			row = append(row, pbnCall(h))
		}
		out = append(out, strings.Join(row, " "))
	}
	return out
}

func pbnCall(h string) string {
	switch h {
	case "P":
		return "Pass"
	case "D":
		return "X"
	case "R":
		return "XX"
	}
	return h
}

func playLines(b *bridge.Board) []string {
	if len(b.Tricks) == 0 {
		return nil
	}
	first := b.Tricks[0].Leader
	var out []string
	for _, t := range b.Tricks {
		if len(t.Cards) == 0 {
			continue
		}
		row := make([]string, 4)
		for i := 0; i < 4; i++ {
			seat := first.Add(i)
			pos := t.PositionOf(seat)
			if pos <= len(t.Cards) {
				c := t.Cards[pos-1]
				row[i] = c.Suit.String() + c.Rank.String()
			} else {
				row[i] = "-"
			}
		}
		out = append(out, strings.Join(row, " "))
	}
	return out
}
