package game

import (
	"context"
	"errors"

	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/cardplay"
	"github.com/psionman/bfg-api/internal/undo"
	"github.com/rs/zerolog/log"
)

var errNoContract = errors.New("auction not finished")

// CardplaySetup opens the first trick once the contract is known.
func (s *Service) CardplaySetup(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	b := ss.board
	if auction.PassedOut(b.BidHistory) {
		return s.finish(ctx, ss, nil)
	}
	if b.Contract.IsZero() {
		return s.unchanged(ctx, ss, "cardplay-setup", errNoContract)
	}
	cardplay.SetupFirstTrick(b)
	if err := s.autoPlay(ctx, ss); err != nil {
		return nil, err
	}

	extra := Context{
		"suggested_card": s.openingSuggestion(ctx, ss),
		"current_player": b.CurrentPlayer.String(),
		"declarer":       b.Declarer().String(),
		"trick_count":    len(b.Tricks),
	}
	return s.finish(ctx, ss, extra.merge(trickView(b)))
}

// autoPlay plays the automatic seats up to the next person when the
// request asks for it.
func (s *Service) autoPlay(ctx context.Context, ss *session) error {
	if !ss.req.AutoPlay {
		return nil
	}
	stop := cardplay.Controlled(ss.board, ss.req.seat, ss.req.mode)
	_, err := cardplay.PlayOut(ctx, ss.board, s.advisor, ss.req.UseDoubleDummy, stop)
	return err
}

// CardPlayed plays card_played for the seat due to play. A card that
// seat cannot play leaves the board as it was.
func (s *Service) CardPlayed(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	card, err := bridge.ParseCard(r.CardPlayed)
	if err != nil {
		return nil, err
	}
	b := ss.board
	if b.Contract.IsZero() {
		return s.unchanged(ctx, ss, "card-played", errNoContract)
	}

	before := b.CompletedTricks()
	pending := cardplay.FinalizePending(b)
	seat := b.CurrentPlayer
	if !cardplay.PlayCard(b, card) {
		if pending.Valid() {
			return s.finish(ctx, ss, s.playView(ctx, b, r, pending.String()))
		}
		return s.rejected(ctx, ss, "card-played", cardplay.ErrCannotPlay, s.playView(ctx, b, r, ""))
	}
	log.Info().
		Str("username", r.player()).
		Str("seat", seat.String()).
		Str("card", card.Name()).
		Msg("card-played")

	winner := ""
	if b.CompletedTricks() > before {
		winner = lastCompleted(b).Winner.String()
	}
	if err := s.autoPlay(ctx, ss); err != nil {
		return nil, err
	}
	return s.finish(ctx, ss, s.playView(ctx, b, r, winner))
}

// playView is the card-play part of a response: the trick on show, the
// next suggestion and the winner of a trick just completed.
func (s *Service) playView(ctx context.Context, b *bridge.Board, r Request, winner string) Context {
	extra := Context{
		"suggested_card": cardplay.Suggest(ctx, b, s.advisor, r.UseDoubleDummy),
		"trick_count":    len(b.Tricks),
		"declarer":       b.Declarer().String(),
		"winner":         winner,
	}
	return extra.merge(trickView(b))
}

// lastCompleted is the most recent full trick; the caller knows one exists.
func lastCompleted(b *bridge.Board) *bridge.Trick {
	for i := len(b.Tricks) - 1; i >= 0; i-- {
		if b.Tricks[i].Full() {
			return b.Tricks[i]
		}
	}
	return bridge.NewTrick(bridge.NoSeat)
}

// Claim asks for claim_tricks more tricks for the requesting seat's side.
// A negative claim concedes that many of those left.
func (s *Service) Claim(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	if ss.board.Contract.IsZero() {
		return s.unchanged(ctx, ss, "claim", errNoContract)
	}
	if ss.board.CurrentTrick() == nil {
		cardplay.SetupFirstTrick(ss.board)
	}
	side := ss.req.seat.Side()
	b, res, err := cardplay.Claim(ctx, ss.board, side, r.ClaimTricks, s.advisor, r.UseDoubleDummy)
	if err != nil {
		return nil, err
	}
	ss.board = b
	log.Info().
		Str("username", r.Username).
		Str("side", side.String()).
		Int("claimed", r.ClaimTricks).
		Int("estimated", res.Estimated).
		Bool("accepted", res.Accepted).
		Msg("claim")
	return s.finish(ctx, ss, Context{
		"accept_claim":   res.Accepted,
		"claim_target":   res.Target,
		"claim_estimate": res.Estimated,
	})
}

// CompareScores reports how the rest of the play would split the tricks
// without changing the board.
func (s *Service) CompareScores(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	ns, ew := ss.board.NSTricks, ss.board.EWTricks
	if !ss.board.Contract.IsZero() {
		if ns, ew, err = cardplay.Compare(ctx, ss.board, s.advisor, r.UseDoubleDummy); err != nil {
			return nil, err
		}
	}
	return s.finish(ctx, ss, Context{
		"ns_tricks_target": ns,
		"ew_tricks_target": ew,
	})
}

// Undo takes back the requesting seat's last step: a batch of cards once
// play has started, otherwise its last call and the replies to it.
func (s *Service) Undo(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	b := ss.board
	initial := false
	if !b.Contract.IsZero() {
		undo.Cardplay(b, ss.req.mode, ss.req.seat)
		log.Info().Str("username", r.Username).Str("seat", ss.req.seat.String()).Msg("undo-card")
	} else {
		if initial, err = undo.Bidding(ctx, b, ss.req.seat, ss.req.mode, s.advisor); err != nil {
			return nil, err
		}
		log.Info().Str("username", r.Username).Str("seat", ss.req.seat.String()).Msg("undo-bid")
	}
	return s.finish(ctx, ss, Context{"initial_state": initial}.merge(trickView(b)))
}
