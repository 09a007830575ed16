// Package game turns client requests into board changes: it loads the
// room, applies one operation with the engines, saves the room and
// returns the board context.
package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/export"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/psionman/bfg-api/internal/users"
	"github.com/rs/zerolog/log"
)

var ErrNoBoard = errors.New("no board in this room")

// Notifier is told about every saved board and every chat message so it
// can fan them out to the room.
type Notifier interface {
	BoardChanged(room string, c Context)
	Message(room, username string, message map[string]any)
}

type Service struct {
	store    store.Store
	advisor  advisor.Advisor
	users    *users.Tracker
	notifier Notifier
	exporter export.Exporter
	version  string

	mu  sync.Mutex
	rng *rand.Rand
}

func New(st store.Store, adv advisor.Advisor, tr *users.Tracker) *Service {
	if tr == nil {
		tr = users.NewTracker(users.DefaultIdle)
	}
	return &Service{
		store:   st,
		advisor: adv,
		users:   tr,
		version: "dev",
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) SetNotifier(n Notifier)        { s.notifier = n }
func (s *Service) SetExporter(e export.Exporter) { s.exporter = e }
func (s *Service) SetVersion(v string)           { s.version = v }

// SetSeed makes deals reproducible.
func (s *Service) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

// Users exposes the activity tracker.
func (s *Service) Users() *users.Tracker { return s.users }

// session is one request's view of its room.
type session struct {
	req   parsed
	room  *store.Room
	board *bridge.Board
}

// open validates the request and loads its room. With needBoard the room
// must already hold a board.
func (s *Service) open(ctx context.Context, r Request, needBoard bool) (*session, error) {
	p, err := r.parse()
	if err != nil {
		return nil, err
	}
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	room, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if needBoard && room.Board == nil {
		return nil, ErrNoBoard
	}
	s.users.Touch(r.Username)
	return &session{req: p, room: room, board: room.Board}, nil
}

// finish is the single write path: the board is saved with its room before
// the context goes back to the client.
func (s *Service) finish(ctx context.Context, ss *session, extra Context) (Context, error) {
	ss.room.Board = ss.board
	c := assemble(ss.room, ss.board, ss.req.mode).merge(extra)
	if err := s.store.Save(ctx, ss.room); err != nil {
		log.Error().Err(err).Str("room", ss.room.Name).Msg("save room")
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BoardChanged(ss.room.Name, c)
	}
	return c, nil
}

// unchanged answers an illegal action with the current state.
func (s *Service) unchanged(ctx context.Context, ss *session, action string, err error) (Context, error) {
	return s.rejected(ctx, ss, action, err, nil)
}

// rejected is unchanged with the operation's usual extra keys.
func (s *Service) rejected(ctx context.Context, ss *session, action string, err error, extra Context) (Context, error) {
	log.Debug().Err(err).Str("room", ss.room.Name).Str("username", ss.req.Username).Msg(action + " rejected")
	return s.finish(ctx, ss, extra)
}

func (s *Service) deal() map[bridge.Seat][]bridge.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bridge.Deal(s.rng)
}

func (s *Service) dealMatching(attempts int, accept func(map[bridge.Seat][]bridge.Card) bool) (map[bridge.Seat][]bridge.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bridge.DealMatching(s.rng, attempts, accept)
}

func (s *Service) pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
