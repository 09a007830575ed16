// Package heuristic is the in-process advisor: a rule-based bidder and a
// card player that searches small endings exactly.
package heuristic

import "github.com/psionman/bfg-api/internal/advisor"

type Advisor struct {
	Bidder
	Player
}

var _ advisor.Advisor = (*Advisor)(nil)

func New() *Advisor {
	return &Advisor{Player: Player{NodeBudget: DefaultNodeBudget}}
}
