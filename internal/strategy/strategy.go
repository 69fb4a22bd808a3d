// Package strategy defines the player contract for the arena and every
// built-in strategy. Dispatch goes through a capability interface rather
// than a type hierarchy; media hooks are part of the contract with no-op
// defaults so the network never has to probe for them.
package strategy

import (
	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/media"
)

// Strategy is the full player capability interface.
//
// Decide sees only realized (post-noise) moves: a strategy never observes
// its own or its opponent's pre-noise intention. Reset clears per-match
// decision state and runs before every match. MediaReset clears report
// memory and runs once per repetition binding, so reports accumulate across
// the matches of one repetition but never across repetitions.
type Strategy interface {
	Name() string
	Description() string
	Decide(mine, theirs game.History, round int) game.Move
	Reset()
	MediaReset()
	ReceiveMedia(report *media.Report)
	PreferredOutlets(outlets []*media.Outlet) []string
}

// base carries the shared media plumbing. Concrete strategies embed it and
// implement Decide plus whatever state hooks they need.
type base struct {
	rumors []*media.Report
}

func (b *base) Reset() {}

func (b *base) MediaReset() {
	b.rumors = nil
}

func (b *base) ReceiveMedia(report *media.Report) {
	b.rumors = append(b.rumors, report)
}

// Rumors returns the reports observed since the last media reset.
func (b *base) Rumors() []*media.Report {
	return append([]*media.Report(nil), b.rumors...)
}

// PreferredOutlets leaves enrollment control to tournament configuration.
func (b *base) PreferredOutlets(outlets []*media.Outlet) []string {
	return nil
}
