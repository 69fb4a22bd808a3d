// Package engine plays single repeated matches between two strategies.
// This is the inner loop of the arena; the tournament package owns pairing
// and aggregation.
package engine

import (
	"math/rand"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/strategy"
)

// Params configures one match.
type Params struct {
	// Rounds is the fixed horizon, used only when Continuation is zero.
	Rounds int
	// Continuation is the per-round probability of playing another round.
	// Positive values produce a geometric horizon with expected length
	// 1/Continuation; zero disables it in favor of the fixed horizon.
	// Callers must keep it below 1: the stopping draw is uniform in [0,1),
	// so a value of 1 or more never terminates the match.
	Continuation float64
	// Noise is the probability that a realized move inverts its intention.
	Noise   float64
	Payoffs game.Payoffs
}

// PlayMatch plays one repeated match and returns its immutable outcome.
//
// Both strategies are reset first. Each round, both sides decide from their
// symmetric views of the realized histories, noise is applied to each
// intended move (A's draw before B's), and only the realized moves are
// scored and recorded — strategies never see a pre-noise intention. With a
// positive continuation probability one uniform sample per round decides
// whether play continues; otherwise the fixed horizon applies. At least one
// round is always played.
func PlayMatch(a, b strategy.Strategy, id game.MatchID, p Params, rng *rand.Rand) *game.MatchOutcome {
	a.Reset()
	b.Reset()

	var histA, histB game.History
	totalA, totalB := 0, 0
	rounds := 0
	for {
		moveA := a.Decide(histA, histB, rounds)
		moveB := b.Decide(histB, histA, rounds)
		playA := game.Noisy(moveA, p.Noise, rng)
		playB := game.Noisy(moveB, p.Noise, rng)
		scoreA, scoreB := game.Score(playA, playB, p.Payoffs)
		totalA += scoreA
		totalB += scoreB
		histA = append(histA, playA)
		histB = append(histB, playB)
		rounds++
		if p.Continuation > 0 {
			if rng.Float64() >= p.Continuation {
				break
			}
		} else if rounds >= p.Rounds {
			break
		}
	}

	return &game.MatchOutcome{
		ID:       id,
		PlayerA:  id.PlayerA,
		PlayerB:  id.PlayerB,
		Rounds:   rounds,
		ScoreA:   totalA,
		ScoreB:   totalB,
		AvgA:     float64(totalA) / float64(rounds),
		AvgB:     float64(totalB) / float64(rounds),
		HistoryA: histA,
		HistoryB: histB,
	}
}
