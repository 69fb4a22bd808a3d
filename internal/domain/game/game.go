// Package game defines the core domain for the repeated dilemma: moves,
// payoff matrices and match outcomes.
// This package is PURE and must NOT import any infrastructure packages (media, network, platform).
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Move is a single decision in one round of the dilemma.
type Move byte

const (
	Cooperate Move = 'C'
	Defect    Move = 'D'
)

// Invert returns the opposite move.
func (m Move) Invert() Move {
	if m == Cooperate {
		return Defect
	}
	return Cooperate
}

func (m Move) String() string {
	return string(byte(m))
}

// History is the realized move sequence of one side of a match.
type History []Move

// String renders the history in its compact wire form, e.g. "CCDC".
func (h History) String() string {
	b := make([]byte, len(h))
	for i, m := range h {
		b[i] = byte(m)
	}
	return string(b)
}

// MarshalJSON serializes the history as its compact string form rather than
// as an array of move bytes.
func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON accepts the compact string form produced by MarshalJSON.
func (h *History) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	moves := make(History, len(s))
	for i := 0; i < len(s); i++ {
		switch Move(s[i]) {
		case Cooperate, Defect:
			moves[i] = Move(s[i])
		default:
			return fmt.Errorf("invalid move %q in history %q", s[i], s)
		}
	}
	*h = moves
	return nil
}

// Last returns the most recent realized move, or ok=false for an empty history.
func (h History) Last() (Move, bool) {
	if len(h) == 0 {
		return Cooperate, false
	}
	return h[len(h)-1], true
}

// Count returns how many times the given move appears in the history.
func (h History) Count(m Move) int {
	n := 0
	for _, v := range h {
		if v == m {
			n++
		}
	}
	return n
}

// Payoffs is the 4-parameter payoff matrix of the dilemma.
// Conventionally T > R > P > S and 2R > T+S, but that is a caller contract;
// the engine scores whatever matrix it is given.
type Payoffs struct {
	T int `json:"T" yaml:"T"` // temptation to defect
	R int `json:"R" yaml:"R"` // reward for mutual cooperation
	P int `json:"P" yaml:"P"` // punishment for mutual defection
	S int `json:"S" yaml:"S"` // sucker payoff
}

// DefaultPayoffs returns the classic 5/3/1/0 matrix.
func DefaultPayoffs() Payoffs {
	return Payoffs{T: 5, R: 3, P: 1, S: 0}
}

// Score maps a pair of realized moves to a pair of scores.
func Score(a, b Move, p Payoffs) (int, int) {
	switch {
	case a == Cooperate && b == Cooperate:
		return p.R, p.R
	case a == Cooperate && b == Defect:
		return p.S, p.T
	case a == Defect && b == Cooperate:
		return p.T, p.S
	default:
		return p.P, p.P
	}
}

// Noisy applies move noise to an intended move. With noise <= 0 the move is
// returned unchanged and no randomness is consumed, which keeps the draw
// sequence stable for noise-free runs. Otherwise exactly one uniform sample
// is drawn from rng.
func Noisy(m Move, noise float64, rng *rand.Rand) Move {
	if noise <= 0 {
		return m
	}
	if rng.Float64() < noise {
		return m.Invert()
	}
	return m
}
