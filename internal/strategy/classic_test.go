package strategy

import (
	"math/rand"
	"testing"

	"github.com/mbarrial/pd-arena/internal/domain/game"
)

// playAgainst feeds a fixed opponent script to a strategy and returns the
// strategy's realized moves.
func playAgainst(s Strategy, script game.History) game.History {
	s.Reset()
	var mine, theirs game.History
	for round := 0; round < len(script); round++ {
		move := s.Decide(mine, theirs, round)
		mine = append(mine, move)
		theirs = append(theirs, script[round])
	}
	return mine
}

func assertMoves(t *testing.T, got game.History, expected string) {
	t.Helper()
	if got.String() != expected {
		t.Errorf("expected %s, got %s", expected, got.String())
	}
}

func TestTitForTatMirrorsDefector(t *testing.T) {
	moves := playAgainst(&TitForTat{}, game.History{game.Defect, game.Defect, game.Defect, game.Defect})
	assertMoves(t, moves, "CDDD")
}

func TestTitForTatStaysCooperative(t *testing.T) {
	moves := playAgainst(&TitForTat{}, game.History{game.Cooperate, game.Cooperate, game.Cooperate})
	assertMoves(t, moves, "CCC")
}

func TestGrimTriggerNeverForgives(t *testing.T) {
	moves := playAgainst(&GrimTrigger{}, game.History{
		game.Cooperate, game.Defect, game.Cooperate, game.Cooperate,
	})
	assertMoves(t, moves, "CCDD")
}

func TestGrimTriggerResetClearsGrudge(t *testing.T) {
	s := &GrimTrigger{}
	playAgainst(s, game.History{game.Defect, game.Defect})
	moves := playAgainst(s, game.History{game.Cooperate, game.Cooperate})
	assertMoves(t, moves, "CC")
}

func TestWinStayLoseShiftTransitions(t *testing.T) {
	// Opens C. CC repeats C, CD shifts to D, DD repeats D, DC shifts to C.
	moves := playAgainst(&WinStayLoseShift{}, game.History{
		game.Cooperate, game.Defect, game.Defect, game.Cooperate,
	})
	assertMoves(t, moves, "CCDD")
}

func TestSoftGrudgerPunishesExactlyTwice(t *testing.T) {
	moves := playAgainst(&SoftGrudger{}, game.History{
		game.Defect, game.Cooperate, game.Cooperate, game.Cooperate,
	})
	assertMoves(t, moves, "CDDC")
}

func TestProberExploitsPushover(t *testing.T) {
	moves := playAgainst(&Prober{}, game.History{
		game.Cooperate, game.Cooperate, game.Cooperate, game.Cooperate, game.Cooperate,
	})
	assertMoves(t, moves, "DCCDD")
}

func TestProberMirrorsRetaliator(t *testing.T) {
	moves := playAgainst(&Prober{}, game.History{
		game.Defect, game.Cooperate, game.Cooperate, game.Cooperate, game.Cooperate,
	})
	assertMoves(t, moves, "DCCCC")
}

func TestResponsiveTracksBalance(t *testing.T) {
	moves := playAgainst(&Responsive{}, game.History{
		game.Defect, game.Cooperate, game.Cooperate, game.Cooperate,
	})
	// One early defection tips the balance until cooperation catches up.
	assertMoves(t, moves, "CDCC")
}

func TestRandomUsesSharedSource(t *testing.T) {
	first := playAgainst(NewRandom(rand.New(rand.NewSource(42))), make(game.History, 20))
	second := playAgainst(NewRandom(rand.New(rand.NewSource(42))), make(game.History, 20))
	if first.String() != second.String() {
		t.Errorf("same seed produced different sequences: %s vs %s", first, second)
	}
}
