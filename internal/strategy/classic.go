package strategy

import (
	"math/rand"

	"github.com/mbarrial/pd-arena/internal/domain/game"
)

// AlwaysCooperate cooperates unconditionally.
type AlwaysCooperate struct{ base }

func (s *AlwaysCooperate) Name() string        { return "AlwaysCooperate" }
func (s *AlwaysCooperate) Description() string { return "Cooperates every round." }

func (s *AlwaysCooperate) Decide(mine, theirs game.History, round int) game.Move {
	return game.Cooperate
}

// AlwaysDefect defects unconditionally.
type AlwaysDefect struct{ base }

func (s *AlwaysDefect) Name() string        { return "AlwaysDefect" }
func (s *AlwaysDefect) Description() string { return "Defects every round." }

func (s *AlwaysDefect) Decide(mine, theirs game.History, round int) game.Move {
	return game.Defect
}

// TitForTat mirrors the opponent's last realized move, cooperating first.
type TitForTat struct{ base }

func (s *TitForTat) Name() string { return "TitForTat" }
func (s *TitForTat) Description() string {
	return "Cooperates first, then mirrors the opponent's last move."
}

func (s *TitForTat) Decide(mine, theirs game.History, round int) game.Move {
	if last, ok := theirs.Last(); ok {
		return last
	}
	return game.Cooperate
}

// GrimTrigger cooperates until the opponent defects once, then defects
// forever.
type GrimTrigger struct {
	base
	grim bool
}

func (s *GrimTrigger) Name() string { return "GrimTrigger" }
func (s *GrimTrigger) Description() string {
	return "Cooperates until the first observed defection, then defects forever."
}

func (s *GrimTrigger) Reset() { s.grim = false }

func (s *GrimTrigger) Decide(mine, theirs game.History, round int) game.Move {
	if theirs.Count(game.Defect) > 0 {
		s.grim = true
	}
	if s.grim {
		return game.Defect
	}
	return game.Cooperate
}

// Grudger holds the same irrevocable grudge as GrimTrigger.
type Grudger struct {
	base
	grudge bool
}

func (s *Grudger) Name() string { return "Grudger" }
func (s *Grudger) Description() string {
	return "Never forgives: one defection and it defects for the rest of the match."
}

func (s *Grudger) Reset() { s.grudge = false }

func (s *Grudger) Decide(mine, theirs game.History, round int) game.Move {
	if theirs.Count(game.Defect) > 0 {
		s.grudge = true
	}
	if s.grudge {
		return game.Defect
	}
	return game.Cooperate
}

// WinStayLoseShift repeats its move after a matched round (CC or DD) and
// switches after a mismatch.
type WinStayLoseShift struct{ base }

func (s *WinStayLoseShift) Name() string { return "WinStayLoseShift" }
func (s *WinStayLoseShift) Description() string {
	return "Repeats its last move after CC or DD, switches otherwise."
}

func (s *WinStayLoseShift) Decide(mine, theirs game.History, round int) game.Move {
	lastMine, ok := mine.Last()
	if !ok {
		return game.Cooperate
	}
	lastTheirs, _ := theirs.Last()
	if lastMine == lastTheirs {
		return lastMine
	}
	return lastMine.Invert()
}

// SoftGrudger punishes a defection with exactly two defections, then
// resumes cooperating.
type SoftGrudger struct {
	base
	punish int
}

func (s *SoftGrudger) Name() string { return "SoftGrudger" }
func (s *SoftGrudger) Description() string {
	return "Answers a defection with two rounds of punishment, then forgives."
}

func (s *SoftGrudger) Reset() { s.punish = 0 }

func (s *SoftGrudger) Decide(mine, theirs game.History, round int) game.Move {
	if last, ok := theirs.Last(); ok && last == game.Defect {
		s.punish = 2
	}
	if s.punish > 0 {
		s.punish--
		return game.Defect
	}
	return game.Cooperate
}

type proberMode int

const (
	proberProbing proberMode = iota
	proberTitForTat
	proberExploit
)

// Prober opens with D, C, C. If the opponent defected during the probe it
// mirrors as tit-for-tat for the rest of the match, otherwise it exploits
// with permanent defection.
type Prober struct {
	base
	mode proberMode
}

func (s *Prober) Name() string { return "Prober" }
func (s *Prober) Description() string {
	return "Probes with D,C,C; mirrors retaliators, exploits pushovers."
}

func (s *Prober) Reset() { s.mode = proberProbing }

func (s *Prober) Decide(mine, theirs game.History, round int) game.Move {
	switch len(mine) {
	case 0:
		return game.Defect
	case 1, 2:
		return game.Cooperate
	}
	if s.mode == proberProbing {
		probe := theirs
		if len(probe) > 3 {
			probe = probe[:3]
		}
		if probe.Count(game.Defect) > 0 {
			s.mode = proberTitForTat
		} else {
			s.mode = proberExploit
		}
	}
	if s.mode == proberTitForTat {
		if last, ok := theirs.Last(); ok {
			return last
		}
		return game.Cooperate
	}
	return game.Defect
}

// Random picks uniformly between cooperation and defection. It draws from
// the run's shared randomness source so seeded runs stay reproducible.
type Random struct {
	base
	rng *rand.Rand
}

// NewRandom builds a Random strategy bound to the given source.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (s *Random) Name() string        { return "Random" }
func (s *Random) Description() string { return "Flips a fair coin every round." }

func (s *Random) Decide(mine, theirs game.History, round int) game.Move {
	if s.rng.Intn(2) == 0 {
		return game.Cooperate
	}
	return game.Defect
}

// Responsive cooperates while the opponent's cooperation count stays at
// least as high as its defection count.
type Responsive struct{ base }

func (s *Responsive) Name() string { return "Responsive" }
func (s *Responsive) Description() string {
	return "Cooperates while the opponent has cooperated at least as often as defected."
}

func (s *Responsive) Decide(mine, theirs game.History, round int) game.Move {
	if len(theirs) == 0 {
		return game.Cooperate
	}
	if theirs.Count(game.Cooperate) >= theirs.Count(game.Defect) {
		return game.Cooperate
	}
	return game.Defect
}
