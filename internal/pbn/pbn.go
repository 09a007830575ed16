// Package pbn reads and writes boards in Portable Bridge Notation.
package pbn

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/psionman/bfg-api/internal/bridge"
)

var ErrInvalidPBN = errors.New("invalid pbn")

var tagLine = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]$`)

// Lines splits pasted PBN text into lines. Browsers send either newlines or
// <br> separators.
func Lines(text string) []string {
	var raw []string
	switch {
	case strings.Contains(text, "\n"):
		raw = strings.Split(text, "\n")
	case strings.Contains(text, "<br>"):
		raw = strings.Split(text, "<br>")
	default:
		raw = []string{text}
	}
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.ReplaceAll(l, "<br>", ""))
		out = append(out, l)
	}
	return out
}

// Parse reads the first board in text.
func Parse(text string) (*bridge.Board, error) {
	return ParseLines(Lines(text))
}

type section struct {
	name  string
	value string
	data  []string
}

// ParseLines reads one board from PBN lines. Parsing stops at the first
// blank line after a tag has been seen.
func ParseLines(lines []string) (*bridge.Board, error) {
	var sections []*section
	var cur *section
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(sections) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(l, "%") || strings.HasPrefix(l, ";") {
			continue
		}
		if m := tagLine.FindStringSubmatch(l); m != nil {
			cur = &section{name: m[1], value: m[2]}
			sections = append(sections, cur)
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: data before first tag: %q", ErrInvalidPBN, l)
		}
		cur.data = append(cur.data, stripComments(l))
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no tags", ErrInvalidPBN)
	}

	tags := make(map[string]*section, len(sections))
	for _, s := range sections {
		tags[s.name] = s
	}
	deal, ok := tags["Deal"]
	if !ok {
		return nil, fmt.Errorf("%w: missing Deal tag", ErrInvalidPBN)
	}
	hands, err := parseDeal(deal.value)
	if err != nil {
		return nil, err
	}

	dealer := bridge.North
	if s, ok := tags["Dealer"]; ok && s.value != "" {
		if dealer, err = bridge.ParseSeat(s.value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
		}
	}
	vul := bridge.VulNone
	if s, ok := tags["Vulnerable"]; ok {
		if vul, err = bridge.ParseVulnerability(s.value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
		}
	}

	b := bridge.NewBoard(dealer, vul, hands)
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
	}
	if s, ok := tags["Board"]; ok {
		b.Identifier = s.value
	}
	if s, ok := tags["Description"]; ok {
		b.Description = s.value
	}

	if s, ok := tags["Auction"]; ok {
		if b.BidHistory, err = parseAuction(s.data); err != nil {
			return nil, err
		}
	}
	if err := setContract(b, tags); err != nil {
		return nil, err
	}
	if s, ok := tags["Play"]; ok && len(s.data) > 0 && !b.Contract.IsZero() {
		leader, err := bridge.ParseSeat(s.value)
		if err != nil {
			return nil, fmt.Errorf("%w: play %v", ErrInvalidPBN, err)
		}
		if err := parsePlay(b, leader, s.data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func stripComments(l string) string {
	for {
		i := strings.IndexByte(l, '{')
		if i < 0 {
			return l
		}
		j := strings.IndexByte(l[i:], '}')
		if j < 0 {
			return strings.TrimSpace(l[:i])
		}
		l = l[:i] + l[i+j+1:]
	}
}

func parseDeal(v string) (map[bridge.Seat][]bridge.Card, error) {
	if len(v) < 2 || v[1] != ':' {
		return nil, fmt.Errorf("%w: deal %q", ErrInvalidPBN, v)
	}
	first, err := bridge.ParseSeat(v[:1])
	if err != nil {
		return nil, fmt.Errorf("%w: deal %v", ErrInvalidPBN, err)
	}
	parts := strings.Fields(v[2:])
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: deal needs four hands", ErrInvalidPBN)
	}
	hands := make(map[bridge.Seat][]bridge.Card, 4)
	for i, p := range parts {
		suits := strings.Split(p, ".")
		if len(suits) != 4 {
			return nil, fmt.Errorf("%w: hand %q", ErrInvalidPBN, p)
		}
		var cards []bridge.Card
		for j, ranks := range suits {
			suit := bridge.Spades - bridge.Suit(j)
			for _, r := range ranks {
				rank, err := bridge.ParseRank(strings.ToUpper(string(r)))
				if err != nil {
					return nil, fmt.Errorf("%w: hand %q", ErrInvalidPBN, p)
				}
				cards = append(cards, bridge.Card{Rank: rank, Suit: suit})
			}
		}
		hands[first.Add(i)] = cards
	}
	return hands, nil
}

func parseAuction(data []string) ([]string, error) {
	history := []string{}
	for _, line := range data {
		for _, tok := range strings.Fields(line) {
			switch {
			case tok == "*" || tok == "-" || tok == "+":
				continue
			case strings.HasPrefix(tok, "=") || strings.HasPrefix(tok, "$"):
				continue
			case strings.EqualFold(tok, "AP"):
				history = allPass(history)
				continue
			}
			tok = strings.TrimRight(tok, "!?")
			call, err := bridge.ParseCall(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: auction %v", ErrInvalidPBN, err)
			}
			history = append(history, call.Name())
		}
	}
	return history, nil
}

func allPass(history []string) []string {
	for !finished(history) {
		history = append(history, "P")
	}
	return history
}

func finished(h []string) bool {
	n := len(h)
	if n < 4 {
		return false
	}
	return h[n-1] == "P" && h[n-2] == "P" && h[n-3] == "P"
}

func setContract(b *bridge.Board, tags map[string]*section) error {
	if s, ok := tags["Contract"]; ok && s.value != "" && !strings.EqualFold(s.value, "Pass") {
		v := strings.ToUpper(s.value)
		risk := bridge.Undoubled
		switch {
		case strings.HasSuffix(v, "XX"):
			risk, v = bridge.Redoubled, strings.TrimSuffix(v, "XX")
		case strings.HasSuffix(v, "X"):
			risk, v = bridge.Doubled, strings.TrimSuffix(v, "X")
		}
		bid, err := bridge.ParseCall(v)
		if err != nil || !bid.IsValue() {
			return fmt.Errorf("%w: contract %q", ErrInvalidPBN, s.value)
		}
		c := bridge.Contract{Level: bid.Level, Denom: bid.Denom, Risk: risk, Declarer: bridge.NoSeat}
		if d, ok := tags["Declarer"]; ok && d.value != "" {
			seat, err := bridge.ParseSeat(strings.TrimPrefix(d.value, "^"))
			if err != nil {
				return fmt.Errorf("%w: declarer %v", ErrInvalidPBN, err)
			}
			c.Declarer = seat
		}
		if !c.Declarer.Valid() {
			if derived, ok := contractFromHistory(b); ok {
				c.Declarer = derived.Declarer
			}
		}
		if !c.Declarer.Valid() {
			return fmt.Errorf("%w: contract without declarer", ErrInvalidPBN)
		}
		b.Contract = c
		return nil
	}
	if finished(b.BidHistory) {
		if c, ok := contractFromHistory(b); ok {
			b.Contract = c
		}
	}
	return nil
}

func contractFromHistory(b *bridge.Board) (bridge.Contract, bool) {
	calls, err := b.Calls()
	if err != nil {
		return bridge.NoContract, false
	}
	return bridge.ContractFromCalls(b.Dealer, calls)
}

func parseCard(tok string) (bridge.Card, error) {
	if len(tok) == 2 {
		if s, err := bridge.ParseSuit(tok[:1]); err == nil {
			if r, err := bridge.ParseRank(tok[1:]); err == nil {
				return bridge.Card{Rank: r, Suit: s}, nil
			}
		}
	}
	return bridge.ParseCard(tok)
}

// parsePlay rebuilds tricks from the play section. Columns are fixed seats
// starting with the opening leader; each row is one trick.
func parsePlay(b *bridge.Board, first bridge.Seat, data []string) error {
	trump := b.Contract.Denom
	leader := first
	for _, line := range data {
		toks := strings.Fields(line)
		if len(toks) == 0 {
			continue
		}
		if toks[0] == "*" {
			break
		}
		if len(toks) > 4 {
			toks = toks[:4]
		}
		if last := b.CurrentTrick(); last != nil && !last.Full() {
			return fmt.Errorf("%w: play continues after an incomplete trick", ErrInvalidPBN)
		}
		t := bridge.NewTrick(leader)
		for i := 0; i < 4; i++ {
			seat := leader.Add(i)
			col := first.Offset(seat)
			if col >= len(toks) || toks[col] == "-" || toks[col] == "*" {
				break
			}
			c, err := parseCard(toks[col])
			if err != nil {
				return fmt.Errorf("%w: play %v", ErrInvalidPBN, err)
			}
			if !b.Hands[seat].Remove(c) {
				return fmt.Errorf("%w: %s does not hold %s", ErrInvalidPBN, seat, c)
			}
			t.Cards = append(t.Cards, c)
		}
		if len(t.Cards) == 0 {
			break
		}
		b.Tricks = append(b.Tricks, t)
		if t.Full() {
			leader = t.Complete(trump)
		}
	}
	b.RecountTricks()
	return nil
}
