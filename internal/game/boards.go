package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/cardplay"
	"github.com/psionman/bfg-api/internal/pbn"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPBN   = errors.New("invalid pbn string")
	ErrNoSuchBoard  = errors.New("no such archived board")
	archiveDateForm = "02 Jan 2006 15:04:05"
)

// NewBoard deals the room's next board and bids up to the first human
// call.
func (s *Service) NewBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, false)
	if err != nil {
		return nil, err
	}
	ss.room.BoardNumber++
	n := ss.room.BoardNumber

	hands, source := s.dealFor(ss)
	b := bridge.NewBoard(bridge.DealerFor(n), bridge.VulnerabilityFor(n), hands)
	b.Identifier = strconv.Itoa(n)
	b.Description = uuid.NewString()
	b.Source = source
	if err := auction.Initial(ctx, b, ss.req.seat, ss.req.mode, s.advisor, nil); err != nil {
		return nil, err
	}
	ss.board = b

	if err := s.archive(ctx, ss.room.Name, b); err != nil {
		return nil, err
	}
	log.Info().
		Str("username", r.Username).
		Str("room", ss.room.Name).
		Str("pbn", pbn.Serialize(b)).
		Msg("new-board")
	return s.finish(ctx, ss, nil)
}

// dealFor deals a set hand to North when the request asks for one and the
// room has set hands, otherwise a random deal.
func (s *Service) dealFor(ss *session) (map[bridge.Seat][]bridge.Card, bridge.Source) {
	indexes := validSetHands(ss.req.SetHands)
	if len(indexes) == 0 {
		indexes = validSetHands(ss.room.SetHands)
	}
	if !ss.req.UseSetHands || len(indexes) == 0 {
		return s.deal(), bridge.SourceRandom
	}
	want := SetHands[indexes[s.pick(len(indexes))]]
	hands, ok := s.dealMatching(setHandAttempts, func(h map[bridge.Seat][]bridge.Card) bool {
		return want.accept(h[bridge.North])
	})
	if !ok {
		log.Warn().Str("set_hand", want.Name).Msg("no matching deal found, using random")
		return hands, bridge.SourceRandom
	}
	return hands, bridge.SourceSetHands
}

// archive records the board, stamped with the time, at the head of the
// room's archive.
func (s *Service) archive(ctx context.Context, room string, b *bridge.Board) error {
	c := b.Clone()
	c.Description = time.Now().Format(archiveDateForm)
	return s.store.PushArchive(ctx, room, pbn.Serialize(c))
}

// RoomBoard returns the room's current board as it stands.
func (s *Service) RoomBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, ss, trickView(ss.board))
}

// PBNBoard makes a board pasted as PBN the room's current board. An
// auction that stops before a human call is continued; a recorded play is
// resumed.
func (s *Service) PBNBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, false)
	if err != nil {
		return nil, err
	}
	b, err := pbn.Parse(r.PBNText)
	if err != nil {
		log.Debug().Err(err).Str("username", r.Username).Msg("pbn-board")
		return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
	}
	b.Source = bridge.SourcePBN

	if b.Contract.IsZero() && !auction.PassedOut(b.BidHistory) {
		if err := auction.Initial(ctx, b, ss.req.seat, ss.req.mode, s.advisor, b.BidHistory); err != nil {
			return nil, err
		}
	}
	cardplay.Resume(b)
	ss.board = b
	ss.room.SavedPBN = r.PBNText

	log.Info().Str("username", r.Username).Str("pbn", pbn.Serialize(b)).Msg("pbn-board")
	extra := trickView(b)
	extra["suggested_card"] = cardplay.Suggest(ctx, b, s.advisor, r.UseDoubleDummy)
	return s.finish(ctx, ss, extra)
}

// RestartBoard clears the auction and play and bids again to the first
// human call.
func (s *Service) RestartBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	return s.restart(ctx, ss)
}

func (s *Service) restart(ctx context.Context, ss *session) (Context, error) {
	b := ss.board
	b.ResetPlay()
	b.Warning = ""
	if err := auction.Initial(ctx, b, ss.req.seat, ss.req.mode, s.advisor, nil); err != nil {
		return nil, err
	}
	log.Info().Str("username", ss.req.Username).Str("room", ss.room.Name).Msg("restart-board")
	return s.finish(ctx, ss, nil)
}

// ReplayBoard keeps the auction and restarts the play.
func (s *Service) ReplayBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	cardplay.Replay(ss.board)
	log.Info().Str("username", r.Username).Str("room", ss.room.Name).Msg("replay-board")
	return s.finish(ctx, ss, Context{"suggested_card": s.openingSuggestion(ctx, ss)})
}

// openingSuggestion is the advisor's lead before play starts, or the lead
// already made.
func (s *Service) openingSuggestion(ctx context.Context, ss *session) string {
	b := ss.board
	if b.Contract.IsZero() || len(b.Tricks) == 0 {
		return ""
	}
	if first := b.Tricks[0]; len(first.Cards) > 0 {
		return first.Cards[0].Name()
	}
	return cardplay.Suggest(ctx, b, s.advisor, ss.req.UseDoubleDummy)
}

// UseHistoryBoard deals an archived board again with a fresh auction.
// board_id counts from 1, newest first.
func (s *Service) UseHistoryBoard(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, false)
	if err != nil {
		return nil, err
	}
	boards, err := s.store.Archive(ctx, ss.room.Name)
	if err != nil {
		return nil, err
	}
	id, _ := strconv.Atoi(r.BoardID)
	if id < 1 {
		id = 1
	}
	if id > len(boards) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchBoard, id, len(boards))
	}
	b, err := pbn.Parse(boards[id-1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
	}
	b.ResetPlay()
	b.Identifier = strconv.Itoa(id)
	b.Source = bridge.SourceHistory
	if err := auction.Initial(ctx, b, ss.req.seat, ss.req.mode, s.advisor, nil); err != nil {
		return nil, err
	}
	ss.board = b
	log.Info().Str("username", r.Username).Str("pbn", pbn.Serialize(b)).Msg("history-board")
	return s.finish(ctx, ss, nil)
}

// HistoryEntry summarises one archived board for the history list.
type HistoryEntry struct {
	Identifier int                          `json:"identifier"`
	Date       string                       `json:"date"`
	Hands      map[string]map[string]string `json:"hands"`
}

// GetHistory lists the archive with North's and South's holdings.
func (s *Service) GetHistory(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	return s.history(ctx, name)
}

func (s *Service) history(ctx context.Context, room string) (Context, error) {
	boards, err := s.store.Archive(ctx, room)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(boards))
	for i, text := range boards {
		b, err := pbn.Parse(text)
		if err != nil {
			log.Warn().Err(err).Str("room", room).Int("index", i).Msg("unreadable archived board")
			continue
		}
		e := HistoryEntry{Identifier: i + 1, Date: b.Description, Hands: map[string]map[string]string{}}
		for _, seat := range []bridge.Seat{bridge.North, bridge.South} {
			e.Hands[seat.String()] = holding(b.Hands[seat].Cards)
		}
		out = append(out, e)
	}
	return Context{"boards": out}, nil
}

// holding renders each suit's ranks from ace down, e.g. "AKT42".
func holding(cards []bridge.Card) map[string]string {
	out := make(map[string]string, 4)
	for _, suit := range bridge.Suits {
		ranks := ""
		for _, c := range bridge.SortCards(cards, []bridge.Suit{suit}) {
			if c.Suit == suit {
				ranks += c.Rank.String()
			}
		}
		out[suit.String()] = ranks
	}
	return out
}

// RotateBoards turns every archived board so that North's hand moves to
// rotation_seat, then returns the new history.
func (s *Service) RotateBoards(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	rot, err := rotationOf(r.RotationSeat)
	if err != nil {
		return nil, err
	}
	boards, err := s.store.Archive(ctx, name)
	if err != nil {
		return nil, err
	}
	rotated := make([]string, 0, len(boards))
	for _, text := range boards {
		b, err := pbn.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPBN, err)
		}
		b.Rotate(rot)
		if !b.Contract.IsZero() {
			b.Contract.Declarer = b.Contract.Declarer.Add(rot)
		}
		b.ResetPlay()
		rotated = append(rotated, pbn.Serialize(b))
	}
	if err := s.store.ReplaceArchive(ctx, name, rotated); err != nil {
		return nil, err
	}
	log.Info().Str("username", r.Username).Str("room", name).Int("rotation", rot).Msg("rotate-boards")
	return s.history(ctx, name)
}
