package game

import (
	"context"
	"errors"

	"github.com/psionman/bfg-api/internal/auction"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/rs/zerolog/log"
)

const (
	yourSelectionText = "Your selection:"
	suggestedBidText  = "Suggested bid:"
)

// BidMade handles a call from the bidding box. In duo the call goes
// straight into the auction; in solo it is compared with the advisor's
// call and held until the player chooses which one to use.
func (s *Service) BidMade(ctx context.Context, r Request) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	if r.Bid == "restart" {
		log.Info().Str("username", r.Username).Msg("clicked restart board")
		return s.restart(ctx, ss)
	}
	if ss.req.mode.IsDuo() {
		return s.advance(ctx, ss, r.Bid)
	}
	return s.trainBid(ctx, ss)
}

// advance appends a human call and lets the automatic seats reply.
// Illegal and out-of-turn calls leave the board as it was.
func (s *Service) advance(ctx context.Context, ss *session, bid string) (Context, error) {
	err := auction.Advance(ctx, ss.board, ss.req.seat, ss.req.mode, bid, s.advisor)
	if errors.Is(err, auction.ErrIllegalCall) || errors.Is(err, auction.ErrOutOfTurn) {
		return s.unchanged(ctx, ss, "bid-made", err)
	}
	if err != nil {
		return nil, err
	}
	if bid != "" && !auction.IsWarning(bid) {
		log.Info().Str("username", ss.req.Username).Str("seat", ss.req.seat.String()).Str("call", bid).Msg("bid-made")
	}
	return s.finish(ctx, ss, nil)
}

func (s *Service) trainBid(ctx context.Context, ss *session) (Context, error) {
	seat := ss.req.seat
	if auction.ThreePasses(ss.board.BidHistory) || ss.board.NextBidder() != seat {
		return s.unchanged(ctx, ss, "bid-made", auction.ErrOutOfTurn)
	}
	own, err := bridge.ParseCall(ss.req.Bid)
	if err != nil || !auction.Legal(ss.board.BidHistory, own) {
		return s.unchanged(ctx, ss, "bid-made", auction.ErrIllegalCall)
	}
	sug, err := s.advisor.SuggestBid(ctx, ss.board, seat)
	if err != nil {
		return nil, err
	}
	if !auction.Legal(ss.board.BidHistory, sug.Call) {
		sug.Call = bridge.Pass
	}

	ss.room.OwnBid = own.Name()
	ss.room.SuggestedBid = sug.Call.Name()

	rightWrong := "wrong"
	if own == sug.Call {
		rightWrong = "right"
	}
	comment, strategy := sug.Comment, sug.Strategy
	if ss.req.mode == bridge.SoloNoComments {
		comment, strategy = "", ""
	}
	log.Info().
		Str("username", ss.req.Username).
		Str("seat", seat.String()).
		Str("call", own.Name()).
		Str("suggested", sug.Call.Name()).
		Msg("bid-chosen")
	return s.finish(ctx, ss, Context{
		"selected_bid":     own.Name(),
		"suggested_bid":    sug.Call.Name(),
		"right_wrong":      rightWrong,
		"bid_comment":      comment,
		"strategy_text":    strategy,
		"bid_made_text":    yourSelectionText,
		"correct_bid_text": suggestedBidText,
	})
}

// UseBid plays the held solo call: the advisor's when suggested is set,
// otherwise the player's own.
func (s *Service) UseBid(ctx context.Context, r Request, suggested bool) (Context, error) {
	ss, err := s.open(ctx, r, true)
	if err != nil {
		return nil, err
	}
	bid := ss.room.OwnBid
	if suggested {
		bid = ss.room.SuggestedBid
	}
	if bid == "" {
		return s.unchanged(ctx, ss, "use-bid", auction.ErrIllegalCall)
	}
	ss.room.OwnBid, ss.room.SuggestedBid = "", ""
	return s.advance(ctx, ss, bid)
}
