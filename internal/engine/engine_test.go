package engine

import (
	"math/rand"
	"testing"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/strategy"
)

func fixedParams(rounds int) Params {
	return Params{Rounds: rounds, Payoffs: game.DefaultPayoffs()}
}

func TestMutualCooperationFixedHorizon(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	id := game.MatchID{PlayerA: "AlwaysCooperate", PlayerB: "AlwaysCooperate", Ordinal: 0}

	outcome := PlayMatch(&strategy.AlwaysCooperate{}, &strategy.AlwaysCooperate{}, id, fixedParams(10), rng)

	if outcome.Rounds != 10 {
		t.Errorf("expected 10 rounds, got %d", outcome.Rounds)
	}
	if outcome.ScoreA != 30 || outcome.ScoreB != 30 {
		t.Errorf("expected 30/30, got %d/%d", outcome.ScoreA, outcome.ScoreB)
	}
	if outcome.AvgA != 3.0 {
		t.Errorf("expected average 3.0, got %f", outcome.AvgA)
	}
	if outcome.HistoryA.String() != "CCCCCCCCCC" {
		t.Errorf("unexpected history %s", outcome.HistoryA)
	}
}

func TestExploitationScoring(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	id := game.MatchID{PlayerA: "AlwaysDefect", PlayerB: "AlwaysCooperate", Ordinal: 0}

	outcome := PlayMatch(&strategy.AlwaysDefect{}, &strategy.AlwaysCooperate{}, id, fixedParams(4), rng)

	if outcome.ScoreA != 20 || outcome.ScoreB != 0 {
		t.Errorf("expected 20/0, got %d/%d", outcome.ScoreA, outcome.ScoreB)
	}
}

func TestGeometricHorizonPlaysAtLeastOneRound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	id := game.MatchID{PlayerA: "A", PlayerB: "B", Ordinal: 0}
	p := Params{Continuation: 1e-12, Payoffs: game.DefaultPayoffs()}

	for i := 0; i < 20; i++ {
		outcome := PlayMatch(&strategy.AlwaysCooperate{}, &strategy.AlwaysCooperate{}, id, p, rng)
		if outcome.Rounds < 1 {
			t.Fatalf("match played %d rounds", outcome.Rounds)
		}
		if outcome.Rounds != 1 {
			t.Fatalf("vanishing continuation should stop after one round, got %d", outcome.Rounds)
		}
	}
}

func TestNoisyMatchIsDeterministicPerSeed(t *testing.T) {
	id := game.MatchID{PlayerA: "Random", PlayerB: "TitForTat", Ordinal: 0}
	p := Params{Continuation: 0.9, Noise: 0.1, Payoffs: game.DefaultPayoffs()}

	play := func() *game.MatchOutcome {
		rng := rand.New(rand.NewSource(99))
		return PlayMatch(strategy.NewRandom(rng), &strategy.TitForTat{}, id, p, rng)
	}

	first := play()
	second := play()

	if first.Rounds != second.Rounds {
		t.Fatalf("round counts differ: %d vs %d", first.Rounds, second.Rounds)
	}
	if first.ScoreA != second.ScoreA || first.ScoreB != second.ScoreB {
		t.Errorf("scores differ: %d/%d vs %d/%d",
			first.ScoreA, first.ScoreB, second.ScoreA, second.ScoreB)
	}
	if first.HistoryA.String() != second.HistoryA.String() {
		t.Errorf("histories differ: %s vs %s", first.HistoryA, second.HistoryA)
	}
}

func TestStrategiesSeeRealizedMovesOnly(t *testing.T) {
	// Full noise inverts every intended move. Tit-for-tat facing an
	// all-cooperator under full noise must react to the realized defections.
	rng := rand.New(rand.NewSource(7))
	id := game.MatchID{PlayerA: "TitForTat", PlayerB: "AlwaysCooperate", Ordinal: 0}
	p := Params{Rounds: 3, Noise: 1.0, Payoffs: game.DefaultPayoffs()}

	outcome := PlayMatch(&strategy.TitForTat{}, &strategy.AlwaysCooperate{}, id, p, rng)

	// B intends C every round, realized as D every round.
	if outcome.HistoryB.String() != "DDD" {
		t.Fatalf("expected fully inverted history, got %s", outcome.HistoryB)
	}
	// A intends C, D, D (mirroring realized moves), realized as D, C, C.
	if outcome.HistoryA.String() != "DCC" {
		t.Errorf("expected realized-move mirroring, got %s", outcome.HistoryA)
	}
}
