package game

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/export"
	"github.com/psionman/bfg-api/internal/pbn"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// scripted bids from a per-seat queue, passing once a queue is empty, and
// plays the first card that follows suit.
type scripted struct {
	calls map[bridge.Seat][]string
}

func (s *scripted) SuggestBid(_ context.Context, _ *bridge.Board, seat bridge.Seat) (advisor.Suggestion, error) {
	q := s.calls[seat]
	if len(q) == 0 {
		return advisor.Suggestion{Call: bridge.Pass, Comment: "nothing to say", Strategy: "wait"}, nil
	}
	s.calls[seat] = q[1:]
	return advisor.Suggestion{Call: bridge.MustCall(q[0]), Comment: "opening", Strategy: "bid your suit"}, nil
}

func (s *scripted) SuggestCard(_ context.Context, b *bridge.Board, _ bool) (bridge.Card, error) {
	h := b.Hands[b.CurrentPlayer]
	if h == nil || len(h.Unplayed) == 0 {
		return bridge.Card{}, advisor.ErrNoCard
	}
	if t := b.CurrentTrick(); t != nil {
		if suit, ok := t.Suit(); ok {
			for _, c := range h.Unplayed {
				if c.Suit == suit {
					return c, nil
				}
			}
		}
	}
	return h.Unplayed[0], nil
}

type recorder struct {
	boards   []string
	messages []map[string]any
}

func (r *recorder) BoardChanged(room string, _ Context) { r.boards = append(r.boards, room) }
func (r *recorder) Message(_, _ string, m map[string]any) {
	r.messages = append(r.messages, m)
}

func newService(t *testing.T, calls map[bridge.Seat][]string) (*Service, store.Store, *recorder) {
	t.Helper()
	if calls == nil {
		calls = map[bridge.Seat][]string{}
	}
	st := store.NewMemory()
	svc := New(st, &scripted{calls: calls}, nil)
	svc.SetSeed(11)
	rec := &recorder{}
	svc.SetNotifier(rec)
	return svc, st, rec
}

// suitPerSeat seats a 1NT contract by North where every hand is one suit,
// so the leader of each trick always wins it.
func suitPerSeat(t *testing.T, st store.Store, room string) {
	t.Helper()
	suits := map[bridge.Seat]bridge.Suit{
		bridge.North: bridge.Spades,
		bridge.East:  bridge.Hearts,
		bridge.South: bridge.Diamonds,
		bridge.West:  bridge.Clubs,
	}
	hands := make(map[bridge.Seat][]bridge.Card, 4)
	for seat, suit := range suits {
		for r := bridge.Ace; r >= 2; r-- {
			hands[seat] = append(hands[seat], bridge.Card{Rank: r, Suit: suit})
		}
	}
	b := bridge.NewBoard(bridge.North, bridge.VulNone, hands)
	b.BidHistory = []string{"1NT", "P", "P", "P"}
	bid := bridge.MustCall("1NT")
	b.Contract = bridge.Contract{Level: bid.Level, Denom: bid.Denom, Declarer: bridge.North}
	if err := st.Save(context.Background(), &store.Room{Name: room, BoardNumber: 1, Board: b, SetHands: []int{}}); err != nil {
		t.Fatalf("seed room: %v", err)
	}
}

func TestNewBoardSoloDealerEast(t *testing.T) {
	svc, st, rec := newService(t, nil)
	ctx := context.Background()
	req := Request{Username: "ann", RoomName: "club", Seat: "N", Mode: "solo"}

	first, err := svc.NewBoard(ctx, req)
	if err != nil {
		t.Fatalf("first board: %v", err)
	}
	if first["dealer"] != "N" || len(first["bid_history"].([]string)) != 0 {
		t.Fatalf("board 1 should be dealt by N with no calls, got %v %v", first["dealer"], first["bid_history"])
	}

	second, err := svc.NewBoard(ctx, req)
	if err != nil {
		t.Fatalf("second board: %v", err)
	}
	if second["board_number"] != 2 || second["dealer"] != "E" {
		t.Fatalf("expected board 2 dealt by E, got %v by %v", second["board_number"], second["dealer"])
	}
	if h := second["bid_history"].([]string); len(h) != 3 {
		t.Fatalf("expected E, S and W to call before N, got %v", h)
	}
	if second["stage"] != StageBidding {
		t.Fatalf("expected bidding stage, got %v", second["stage"])
	}

	room, err := st.Load(ctx, "club")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := pbn.Serialize(room.Board); got != second["board_pbn"] {
		t.Fatalf("saved board differs from the returned one:\n%s\n%s", got, second["board_pbn"])
	}
	archive, _ := st.Archive(ctx, "club")
	if len(archive) != 2 {
		t.Fatalf("expected 2 archived boards, got %d", len(archive))
	}
	if len(rec.boards) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(rec.boards))
	}
}

func TestMalformedInput(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"seat", Request{RoomName: "club", Seat: "Q"}, bridge.ErrInvalidSeat},
		{"mode", Request{RoomName: "club", Mode: "trio"}, bridge.ErrInvalidMode},
		{"room", Request{Seat: "N"}, ErrNoRoom},
	}
	for _, c := range cases {
		if _, err := svc.NewBoard(ctx, c.req); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
	if _, err := svc.PBNBoard(ctx, Request{RoomName: "club", PBNText: "not pbn"}); !errors.Is(err, ErrInvalidPBN) {
		t.Fatalf("expected invalid pbn, got %v", err)
	}
	if _, err := svc.RoomBoard(ctx, Request{RoomName: "empty"}); !errors.Is(err, ErrNoBoard) {
		t.Fatalf("expected no board, got %v", err)
	}
}

func TestSoloBidThenUseSuggestion(t *testing.T) {
	svc, _, _ := newService(t, map[bridge.Seat][]string{
		bridge.North: {"1C"},
		bridge.South: {"1H"},
	})
	ctx := context.Background()
	req := Request{Username: "ann", RoomName: "club", Seat: "N", Mode: "solo"}
	if _, err := svc.NewBoard(ctx, req); err != nil {
		t.Fatalf("new board: %v", err)
	}

	req.Bid = "1D"
	c, err := svc.BidMade(ctx, req)
	if err != nil {
		t.Fatalf("bid made: %v", err)
	}
	if c["right_wrong"] != "wrong" || c["suggested_bid"] != "1C" || c["selected_bid"] != "1D" {
		t.Fatalf("unexpected comparison %v %v %v", c["right_wrong"], c["suggested_bid"], c["selected_bid"])
	}
	if c["bid_comment"] != "opening" {
		t.Fatalf("expected the advisor's comment, got %v", c["bid_comment"])
	}
	if len(c["bid_history"].([]string)) != 0 {
		t.Fatal("a solo bid should wait for the player's choice")
	}

	c, err = svc.UseBid(ctx, req, true)
	if err != nil {
		t.Fatalf("use suggestion: %v", err)
	}
	want := []string{"1C", "P", "1H", "P"}
	if got := c["bid_history"].([]string); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	c, err = svc.Undo(ctx, req)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(c["bid_history"].([]string)) != 0 || c["initial_state"] != true {
		t.Fatalf("undo should return to the start, got %v %v", c["bid_history"], c["initial_state"])
	}
}

func TestSoloNoCommentsHidesCommentary(t *testing.T) {
	svc, _, _ := newService(t, map[bridge.Seat][]string{bridge.North: {"1C"}})
	ctx := context.Background()
	req := Request{RoomName: "club", Mode: "solo-no-comments"}
	if _, err := svc.NewBoard(ctx, req); err != nil {
		t.Fatalf("new board: %v", err)
	}
	req.Bid = "1C"
	c, err := svc.BidMade(ctx, req)
	if err != nil {
		t.Fatalf("bid made: %v", err)
	}
	if c["right_wrong"] != "right" || c["bid_comment"] != "" || c["strategy_text"] != "" {
		t.Fatalf("unexpected response %v %v %v", c["right_wrong"], c["bid_comment"], c["strategy_text"])
	}
}

func TestDuoIllegalBidIsIgnored(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()
	req := Request{RoomName: "club", Seat: "N", Mode: "duo"}
	if _, err := svc.NewBoard(ctx, req); err != nil {
		t.Fatalf("new board: %v", err)
	}
	req.Bid = "2S"
	c, err := svc.BidMade(ctx, req)
	if err != nil {
		t.Fatalf("bid made: %v", err)
	}
	if got := c["bid_history"].([]string); len(got) != 2 || got[0] != "2S" {
		t.Fatalf("expected 2S and E's pass, got %v", got)
	}
	req.Bid = "1C"
	c, err = svc.BidMade(ctx, req)
	if err != nil {
		t.Fatalf("illegal bid should not fail: %v", err)
	}
	if got := c["bid_history"].([]string); len(got) != 2 {
		t.Fatalf("illegal bid changed the auction: %v", got)
	}
}

func TestCardPlay(t *testing.T) {
	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	suitPerSeat(t, st, "club")
	req := Request{Username: "ann", RoomName: "club", Seat: "N"}

	c, err := svc.CardplaySetup(ctx, req)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c["current_player"] != "E" || c["suggested_card"] != "AH" {
		t.Fatalf("expected E to lead AH, got %v %v", c["current_player"], c["suggested_card"])
	}

	req.CardPlayed = "AS"
	c, err = svc.CardPlayed(ctx, req)
	if err != nil {
		t.Fatalf("card not held should not fail: %v", err)
	}
	cards, ok := c["trick_cards"].([]string)
	if !ok || len(cards) != 0 || c["current_player"] != "E" {
		t.Fatalf("card not held changed the trick: %v %v", c["current_player"], c["trick_cards"])
	}
	if c["suggested_card"] != "AH" || c["trick_leader"] != "E" || c["winner"] != "" {
		t.Fatalf("a refused card should answer like any other play, got %v %v %v", c["suggested_card"], c["trick_leader"], c["winner"])
	}

	for _, card := range []string{"AH", "AD", "AC", "AS"} {
		req.CardPlayed = card
		if c, err = svc.CardPlayed(ctx, req); err != nil {
			t.Fatalf("play %s: %v", card, err)
		}
	}
	if c["winner"] != "E" || c["EW_tricks"] != 1 || c["NS_tricks"] != 0 {
		t.Fatalf("expected E to win the trick, got %v %v-%v", c["winner"], c["NS_tricks"], c["EW_tricks"])
	}
	if got := c["trick_cards"].([]string); len(got) != 4 {
		t.Fatalf("the completed trick should still be shown, got %v", got)
	}
	if c["trick_count"] != 2 || c["current_player"] != "E" {
		t.Fatalf("expected trick 2 led by E, got %v %v", c["trick_count"], c["current_player"])
	}

	req.CardPlayed = "ZZ"
	if _, err := svc.CardPlayed(ctx, req); !errors.Is(err, bridge.ErrInvalidCard) {
		t.Fatalf("expected invalid card, got %v", err)
	}
}

func TestCardPlayedAfterPendingTrick(t *testing.T) {
	var buf bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = saved })

	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	suitPerSeat(t, st, "club")
	room, err := st.Load(ctx, "club")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b := room.Board
	trick := bridge.NewTrick(bridge.East)
	for _, name := range []string{"AH", "AD", "AC", "AS"} {
		card := bridge.MustCard(name)
		trick.Cards = append(trick.Cards, card)
		for _, h := range b.Hands {
			h.Remove(card)
		}
	}
	b.Tricks = []*bridge.Trick{trick}
	b.CurrentPlayer = bridge.South
	if err := st.Save(ctx, room); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err := svc.CardPlayed(ctx, Request{Username: "ann", RoomName: "club", Seat: "N", CardPlayed: "KH"})
	if err != nil {
		t.Fatalf("card played: %v", err)
	}
	if c["winner"] != "E" || c["EW_tricks"] != 1 || c["current_player"] != "S" {
		t.Fatalf("expected E to win the pending trick and lead KH, got %v %v %v", c["winner"], c["EW_tricks"], c["current_player"])
	}
	if got := c["trick_cards"].([]string); len(got) != 1 || got[0] != "KH" {
		t.Fatalf("expected KH on the new trick, got %v", got)
	}
	if out := buf.String(); !strings.Contains(out, `"seat":"E"`) || !strings.Contains(out, `"card":"KH"`) {
		t.Fatalf("expected the play logged for E, got %s", out)
	}
}

func TestUndo(t *testing.T) {
	svc, st, _ := newService(t, map[bridge.Seat][]string{
		bridge.North: {"1C"},
		bridge.South: {"1H"},
	})
	ctx := context.Background()
	req := Request{Username: "ann", RoomName: "bidding", Seat: "N", Mode: "solo"}
	if _, err := svc.NewBoard(ctx, req); err != nil {
		t.Fatalf("new board: %v", err)
	}
	req.Bid = "1C"
	if _, err := svc.BidMade(ctx, req); err != nil {
		t.Fatalf("bid made: %v", err)
	}
	if _, err := svc.UseBid(ctx, req, false); err != nil {
		t.Fatalf("use own bid: %v", err)
	}
	c, err := svc.Undo(ctx, req)
	if err != nil {
		t.Fatalf("undo bid: %v", err)
	}
	if c["initial_state"] != true || len(c["bid_history"].([]string)) != 0 {
		t.Fatalf("expected the opening position, got %v %v", c["initial_state"], c["bid_history"])
	}
	room, err := st.Load(ctx, "bidding")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(room.Board.BidHistory) != 0 {
		t.Fatalf("undo was not saved, got %v", room.Board.BidHistory)
	}

	suitPerSeat(t, st, "club")
	play := Request{Username: "ann", RoomName: "club", Seat: "N", Mode: "solo"}
	if _, err := svc.CardplaySetup(ctx, play); err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, card := range []string{"AH", "AD", "AC"} {
		play.CardPlayed = card
		if _, err := svc.CardPlayed(ctx, play); err != nil {
			t.Fatalf("play %s: %v", card, err)
		}
	}
	c, err = svc.Undo(ctx, play)
	if err != nil {
		t.Fatalf("undo card: %v", err)
	}
	if c["initial_state"] != false || c["current_player"] != "S" {
		t.Fatalf("expected S to play again, got %v %v", c["initial_state"], c["current_player"])
	}
	if got := c["trick_cards"].([]string); len(got) != 1 || got[0] != "AH" {
		t.Fatalf("expected only the lead to stay, got %v", got)
	}
	room, err = st.Load(ctx, "club")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !room.Board.Hands[bridge.South].Holds(bridge.MustCard("AD")) || !room.Board.Hands[bridge.West].Holds(bridge.MustCard("AC")) {
		t.Fatal("undone cards should be back in hand")
	}
}

func TestCardplaySetupAutoPlay(t *testing.T) {
	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	suitPerSeat(t, st, "club")
	c, err := svc.CardplaySetup(ctx, Request{RoomName: "club", Seat: "N", AutoPlay: true})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c["current_player"] != "S" {
		t.Fatalf("auto play should stop at dummy, got %v", c["current_player"])
	}
	if got := c["trick_cards"].([]string); len(got) != 1 || got[0] != "AH" {
		t.Fatalf("expected E's lead only, got %v", got)
	}
}

func TestClaimAndCompare(t *testing.T) {
	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	suitPerSeat(t, st, "club")
	req := Request{RoomName: "club", Seat: "N"}
	if _, err := svc.CardplaySetup(ctx, req); err != nil {
		t.Fatalf("setup: %v", err)
	}

	c, err := svc.CompareScores(ctx, req)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if c["ns_tricks_target"] != 0 || c["ew_tricks_target"] != 13 {
		t.Fatalf("expected 0-13, got %v-%v", c["ns_tricks_target"], c["ew_tricks_target"])
	}
	if c["trick_count"] != 1 {
		t.Fatal("compare should not change the board")
	}

	req.ClaimTricks = 3
	c, err = svc.Claim(ctx, req)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if c["accept_claim"] != false || c["NS_tricks"] != 0 || c["EW_tricks"] != 0 {
		t.Fatalf("a wrong claim should leave the board, got %v %v-%v", c["accept_claim"], c["NS_tricks"], c["EW_tricks"])
	}

	req.ClaimTricks = -13
	c, err = svc.Claim(ctx, req)
	if err != nil {
		t.Fatalf("concede: %v", err)
	}
	if c["accept_claim"] != true || c["EW_tricks"] != 13 || c["score"] != -350 {
		t.Fatalf("conceding everything should stand, got %v %v %v", c["accept_claim"], c["EW_tricks"], c["score"])
	}
}

func TestHistoryAndRotate(t *testing.T) {
	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	req := Request{RoomName: "club"}
	for i := 0; i < 2; i++ {
		if _, err := svc.NewBoard(ctx, req); err != nil {
			t.Fatalf("new board: %v", err)
		}
	}
	before, _ := st.Archive(ctx, "club")

	c, err := svc.GetHistory(ctx, req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	entries := c["boards"].([]HistoryEntry)
	if len(entries) != 2 || entries[0].Identifier != 1 || entries[0].Date == "" {
		t.Fatalf("unexpected history %+v", entries)
	}

	req.RotationSeat = "E"
	if _, err := svc.RotateBoards(ctx, req); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	after, _ := st.Archive(ctx, "club")
	orig, _ := pbn.Parse(before[0])
	turned, _ := pbn.Parse(after[0])
	want := bridge.CardNames(orig.Hands[bridge.North].Cards)
	got := bridge.CardNames(turned.Hands[bridge.East].Cards)
	if strings.Join(want, "") != strings.Join(got, "") {
		t.Fatalf("North's hand should now be East's: %v vs %v", want, got)
	}

	req.BoardID = "2"
	c, err = svc.UseHistoryBoard(ctx, req)
	if err != nil {
		t.Fatalf("use history board: %v", err)
	}
	if c["source"] != int(bridge.SourceHistory) || c["identifier"] != "2" {
		t.Fatalf("unexpected board %v %v", c["source"], c["identifier"])
	}
	req.BoardID = "9"
	if _, err := svc.UseHistoryBoard(ctx, req); !errors.Is(err, ErrNoSuchBoard) {
		t.Fatalf("expected no such board, got %v", err)
	}
}

func TestSetHands(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()
	req := Request{RoomName: "club", SetHands: []int{1, 99, -1}, UseSetHands: true}
	c, err := svc.SetUserSetHands(ctx, req)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := c["set_hands"].([]int); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only index 1 kept, got %v", got)
	}

	c, err = svc.NewBoard(ctx, Request{RoomName: "club", UseSetHands: true})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	if c["source"] != int(bridge.SourceSetHands) {
		t.Fatalf("expected a set-hands deal, got source %v", c["source"])
	}
	b, _ := pbn.Parse(c["board_pbn"].(string))
	if p := bridge.HCP(b.Hands[bridge.North].Cards); p < 15 || p > 17 {
		t.Fatalf("North should hold 15-17, got %d", p)
	}
}

func TestSaveBoardFile(t *testing.T) {
	svc, _, _ := newService(t, nil)
	dir := t.TempDir()
	svc.SetExporter(export.Dir{Root: dir})
	ctx := context.Background()
	if _, err := svc.NewBoard(ctx, Request{RoomName: "club"}); err != nil {
		t.Fatalf("new board: %v", err)
	}
	c, err := svc.SaveBoardFile(ctx, Request{RoomName: "club", FileName: "week one", FileDescription: "Week 1"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if c["boards_saved"] != true {
		t.Fatal("expected boards_saved")
	}
	if got := c["archives"].([]string); len(got) != 1 || got[0] != "Week 1" {
		t.Fatalf("unexpected archives %v", got)
	}
	data, err := os.ReadFile(filepath.Join(dir, "club", "week-one.pbn"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "[Deal ") {
		t.Fatalf("export should hold the archived board:\n%s", data)
	}
}

func TestUsersAndMessages(t *testing.T) {
	svc, _, rec := newService(t, nil)
	if _, err := svc.UserLogin(Request{}, "127.0.0.1"); err == nil {
		t.Fatal("login without a username should fail")
	}
	if _, err := svc.UserLogin(Request{Username: "ann"}, "127.0.0.1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	c, err := svc.UserStatus(Request{Username: "bob", UserQuery: "ann"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if c["logged_in"] != true || c["last_activity"] == "" {
		t.Fatalf("unexpected status %v", c)
	}

	msg := map[string]any{"text": "hello"}
	if _, err := svc.MessageSent(Request{Username: "ann", RoomName: "club", Message: msg}); err != nil {
		t.Fatalf("message: %v", err)
	}
	if len(rec.messages) != 1 || rec.messages[0]["text"] != "hello" {
		t.Fatalf("message was not relayed: %v", rec.messages)
	}

	svc.SetVersion("1.2.3")
	static := svc.StaticData("127.0.0.1")
	if static["versions"].(map[string]string)["api"] != "1.2.3" {
		t.Fatalf("unexpected versions %v", static["versions"])
	}
	if len(static["duo_set_hands"].(map[int]string)) >= len(static["solo_set_hands"].(map[int]string)) {
		t.Fatal("duo should offer fewer set hands than solo")
	}
}
