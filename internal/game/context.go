package game

import (
	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/cardplay"
	"github.com/psionman/bfg-api/internal/pbn"
	"github.com/psionman/bfg-api/internal/store"
)

// Context is the flat snapshot returned to clients.
type Context map[string]any

// merge copies extra over c and returns c.
func (c Context) merge(extra Context) Context {
	for k, v := range extra {
		c[k] = v
	}
	return c
}

type Stage string

const (
	StageBidding   Stage = "bidding"
	StageCardplay  Stage = "cardplay"
	StageComplete  Stage = "complete"
	StagePassedOut Stage = "passed-out"
)

func stageOf(b *bridge.Board) Stage {
	switch {
	case auction.PassedOut(b.BidHistory):
		return StagePassedOut
	case b.Contract.IsZero():
		return StageBidding
	case b.CompletedTricks() == 13:
		return StageComplete
	}
	return StageCardplay
}

// assemble derives everything the client shows from the board.
func assemble(room *store.Room, b *bridge.Board, mode bridge.Mode) Context {
	order := bridge.SuitOrder(b.Contract.Denom, !b.Contract.IsZero())
	names, extras := auction.Refresh(b.BidHistory, mode.IsDuo())

	handCards := make([][]string, 4)
	unplayed := make(map[string][]string, 4)
	maxLength := make(map[string]int, 4)
	suitLength := make(map[string][]int, 4)
	for _, seat := range bridge.Seats {
		h := b.Hands[seat]
		if h == nil {
			h = bridge.NewHand(nil)
		}
		handCards[seat] = bridge.CardNames(bridge.SortCards(h.Cards, order))
		key := seat.String()
		unplayed[key] = bridge.CardNames(bridge.SortCards(h.Unplayed, order))
		maxLength[key] = bridge.LongestSuit(h.Unplayed)
		lengths := make([]int, len(order))
		for i, s := range order {
			lengths[i] = bridge.SuitLength(h.Unplayed, s)
		}
		suitLength[key] = lengths
	}

	tricks := make([][]string, len(b.Tricks))
	leaders := make([]string, len(b.Tricks))
	for i, t := range b.Tricks {
		tricks[i] = bridge.CardNames(t.Cards)
		leaders[i] = t.Leader.String()
	}
	trickSuit := ""
	if t := b.CurrentTrick(); t != nil {
		if s, ok := t.Suit(); ok {
			trickSuit = s.String()
		}
	}

	suits := make([]string, len(order))
	for i, s := range order {
		suits[i] = s.String()
	}

	return Context{
		"dealer":              b.Dealer.String(),
		"bid_history":         b.BidHistory,
		"board_number":        room.BoardNumber,
		"vulnerable":          b.Vulnerable.String(),
		"suit_order":          suits,
		"hand_cards":          handCards,
		"unplayed_card_names": unplayed,
		"max_suit_length":     maxLength,
		"hand_suit_length":    suitLength,
		"current_player":      b.CurrentPlayer.String(),
		"previous_player":     cardplay.PreviousPlayer(b).String(),
		"tricks":              tricks,
		"tricks_leaders":      leaders,
		"trick_count":         len(b.Tricks),
		"trick_suit":          trickSuit,
		"NS_tricks":           b.NSTricks,
		"EW_tricks":           b.EWTricks,
		"score":               b.Score(),
		"dummy":               b.Dummy().String(),
		"board_pbn":           pbn.Serialize(b),
		"three_passes":        auction.ThreePasses(b.BidHistory),
		"passed_out":          auction.PassedOut(b.BidHistory),
		"contract":            b.Contract.Name(),
		"contract_target":     b.Contract.Target(),
		"declarer":            b.Declarer().String(),
		"stage":               stageOf(b),
		"source":              int(b.Source),
		"identifier":          b.Identifier,
		"warning":             b.Warning,
		"bid_box_names":       names,
		"bid_box_extra_names": extras,
	}
}

// trickView describes the trick the table should be looking at: the
// current one, or the one just completed while the next is still empty.
func trickView(b *bridge.Board) Context {
	view := Context{"trick_cards": []string{}, "trick_leader": "", "trick_suit": ""}
	t := b.CurrentTrick()
	if t == nil {
		return view
	}
	shown := t
	if len(t.Cards) == 0 && len(b.Tricks) > 1 {
		shown = b.Tricks[len(b.Tricks)-2]
	}
	view["trick_cards"] = bridge.CardNames(shown.Cards)
	view["trick_leader"] = shown.Leader.String()
	if s, ok := shown.Suit(); ok {
		view["trick_suit"] = s.String()
	}
	return view
}
