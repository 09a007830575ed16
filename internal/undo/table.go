package undo

import "github.com/psionman/bfg-api/internal/bridge"

type policy int

const (
	soloPolicy policy = iota
	duoPolicy
)

func policyFor(m bridge.Mode) policy {
	if m.IsDuo() {
		return duoPolicy
	}
	return soloPolicy
}

type phase int

const (
	firstTrick phase = iota
	laterTrick
)

// declarerClass places declarer relative to the requesting seat.
type declarerClass int

const (
	anyDeclarer declarerClass = iota
	ourSide
	theirSide
	rho
)

func (d declarerClass) matches(requester, declarer bridge.Seat) bool {
	switch d {
	case ourSide:
		return declarer.SameSide(requester)
	case theirSide:
		return !declarer.SameSide(requester)
	case rho:
		return declarer == requester.Prev()
	}
	return true
}

type leaderClass int

const (
	anyLeader leaderClass = iota
	ourLead
	theirLead
)

func (l leaderClass) matches(requester, leader bridge.Seat) bool {
	switch l {
	case ourLead:
		return leader.SameSide(requester)
	case theirLead:
		return !leader.SameSide(requester)
	}
	return true
}

type continuation int

const (
	stop continuation = iota
	// reEvaluatePrevious drops the emptied trick and applies the table
	// again to the trick before it.
	reEvaluatePrevious
	// stripPrevious drops the emptied trick and strips the trick before it
	// from the requester's card onward.
	stripPrevious
)

// toEnd as the upper bound strips through the last card in the trick.
const toEnd = 0

type rule struct {
	policy   policy
	phase    phase
	declarer declarerClass
	leader   leaderClass
	cards    int // 0 matches any count
	from, to int // 1-based play positions
	then     continuation
}

// rules is read with the requesting seat as North. The first match wins.
var rules = []rule{
	{soloPolicy, firstTrick, ourSide, anyLeader, 3, 2, 3, stop},
	{soloPolicy, firstTrick, ourSide, anyLeader, 4, 4, 4, stop},
	{soloPolicy, firstTrick, rho, anyLeader, 4, 1, 4, stop},

	{duoPolicy, firstTrick, ourSide, anyLeader, 3, 2, 3, stop},
	{duoPolicy, firstTrick, ourSide, anyLeader, 4, 4, 4, stop},
	{duoPolicy, firstTrick, theirSide, anyLeader, 2, 1, 2, stop},
	{duoPolicy, firstTrick, theirSide, anyLeader, 4, 3, 4, stop},

	{soloPolicy, laterTrick, ourSide, theirLead, 1, 1, 1, reEvaluatePrevious},
	{soloPolicy, laterTrick, ourSide, theirLead, 3, 2, 3, stop},
	{soloPolicy, laterTrick, ourSide, theirLead, 4, 2, 4, stop},
	{soloPolicy, laterTrick, ourSide, ourLead, 2, 1, 2, stop},
	{soloPolicy, laterTrick, ourSide, ourLead, 4, 3, 4, stop},
	{soloPolicy, laterTrick, theirSide, anyLeader, 0, 1, toEnd, stripPrevious},

	{duoPolicy, laterTrick, anyDeclarer, ourLead, 4, 3, 4, stop},
	{duoPolicy, laterTrick, anyDeclarer, ourLead, 2, 1, 2, reEvaluatePrevious},
	{duoPolicy, laterTrick, anyDeclarer, theirLead, 4, 4, 4, stop},
	{duoPolicy, laterTrick, anyDeclarer, theirLead, 3, 2, 3, stop},
	{duoPolicy, laterTrick, anyDeclarer, theirLead, 1, 1, 1, reEvaluatePrevious},
}

func lookup(p policy, ph phase, requester, declarer bridge.Seat, t *bridge.Trick) (rule, bool) {
	for _, r := range rules {
		if r.policy != p || r.phase != ph {
			continue
		}
		if r.cards != 0 && r.cards != len(t.Cards) {
			continue
		}
		if r.declarer.matches(requester, declarer) && r.leader.matches(requester, t.Leader) {
			return r, true
		}
	}
	return rule{}, false
}
