// Package tournament runs round-robin repetitions over the strategy catalog
// and aggregates the results into standings. It owns the single randomness
// source for a run, so two runs with the same seed and parameters produce
// byte-identical results.
package tournament

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/engine"
	"github.com/mbarrial/pd-arena/internal/media"
	"github.com/mbarrial/pd-arena/internal/platform/logger"
	"github.com/mbarrial/pd-arena/internal/platform/random"
	"github.com/mbarrial/pd-arena/internal/strategy"
)

// DefaultRounds is the fixed horizon used when neither a round count nor a
// continuation probability is given.
const DefaultRounds = 150

// Params configures a full tournament run.
type Params struct {
	// Rounds is the fixed match horizon. Ignored when Continuation is set.
	Rounds int
	// Continuation is the per-round probability of playing another round.
	Continuation float64
	// Noise is the per-move probability that a realized move inverts.
	Noise float64
	// Repeats is how many round-robin repetitions to play. Zero means one.
	Repeats int
	// Seed fixes the randomness source. Nil draws a fresh seed.
	Seed    *int64
	Payoffs game.Payoffs
	// Only restricts the field to the named strategies; Exclude removes
	// names from it. Both match canonically.
	Only    []string
	Exclude []string
	// Media configures the outlet network. Nil disables media entirely.
	Media *media.Config

	// OnMatch is invoked after every finished match, in play order.
	OnMatch func(*game.MatchOutcome)
	// OnDelivery is invoked for every media delivery, in delivery order.
	OnDelivery func(media.DeliveryEntry)
}

// MatchRow is one match in the result, flattened for export.
type MatchRow struct {
	Rep     int     `json:"rep"`
	Ordinal int     `json:"ordinal"`
	PlayerA string  `json:"player_a"`
	PlayerB string  `json:"player_b"`
	Rounds  int     `json:"rounds"`
	ScoreA  int     `json:"score_a"`
	ScoreB  int     `json:"score_b"`
	AvgA    float64 `json:"avg_a"`
	AvgB    float64 `json:"avg_b"`
	// HistoryA and HistoryB are the realized move sequences in compact
	// form, e.g. "CCDC".
	HistoryA string `json:"history_a"`
	HistoryB string `json:"history_b"`
}

// StandingRow is one strategy's aggregate across the whole run.
type StandingRow struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Matches     int     `json:"matches"`
	TotalScore  int     `json:"total_score"`
	TotalRounds int     `json:"total_rounds"`
	AvgPerRound float64 `json:"avg_per_round"`
}

// Result is the complete outcome of a run, including the parameters that
// produced it so a reader can reproduce it exactly.
type Result struct {
	Rounds       int             `json:"rounds"`
	Continuation float64         `json:"continuation"`
	Noise        float64         `json:"noise"`
	Repeats      int             `json:"repeats"`
	Seed         int64           `json:"seed"`
	Payoffs      game.Payoffs    `json:"payoffs"`
	Strategies   []strategy.Info `json:"strategies"`
	Matches      []MatchRow      `json:"matches"`
	Standings    []StandingRow   `json:"standings"`
	Media        *media.State    `json:"media,omitempty"`
}

type tally struct {
	matches int
	score   int
	rounds  int
}

// Run plays a full tournament and returns its result. Configuration problems
// (too few strategies, bad media configuration) surface as errors before any
// match is played.
func Run(p Params, log *logger.Logger) (*Result, error) {
	if log == nil {
		log = logger.NewLogger()
	}

	defs := strategy.Resolve(p.Only, p.Exclude)
	if len(defs) < 2 {
		return nil, fmt.Errorf("tournament needs at least 2 strategies, selection left %d", len(defs))
	}
	// The geometric stopping draw is uniform in [0,1), so a continuation
	// probability of 1 or more would never terminate a match.
	if p.Continuation >= 1 {
		return nil, fmt.Errorf("continuation probability must be below 1, got %v", p.Continuation)
	}

	if p.Repeats <= 0 {
		p.Repeats = 1
	}
	if p.Rounds <= 0 && p.Continuation <= 0 {
		p.Rounds = DefaultRounds
	}
	if p.Payoffs == (game.Payoffs{}) {
		p.Payoffs = game.DefaultPayoffs()
	}

	seed, err := resolveSeed(p.Seed)
	if err != nil {
		return nil, fmt.Errorf("resolve seed: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))

	network, err := media.NewNetwork(p.Media, rng)
	if err != nil {
		return nil, fmt.Errorf("media network: %w", err)
	}
	network.SetObserver(p.OnDelivery)

	matchParams := engine.Params{
		Rounds:       p.Rounds,
		Continuation: p.Continuation,
		Noise:        p.Noise,
		Payoffs:      p.Payoffs,
	}

	log.Event("RUN_START", "tournament", fmt.Sprintf(
		"strategies=%d repeats=%d rounds=%d continuation=%.3f noise=%.3f seed=%d",
		len(defs), p.Repeats, p.Rounds, p.Continuation, p.Noise, seed))

	result := &Result{
		Rounds:       p.Rounds,
		Continuation: p.Continuation,
		Noise:        p.Noise,
		Repeats:      p.Repeats,
		Seed:         seed,
		Payoffs:      p.Payoffs,
		Strategies:   infosFor(defs),
	}

	totals := make(map[string]*tally, len(defs))
	for _, def := range defs {
		totals[def.Name] = &tally{}
	}

	for rep := 0; rep < p.Repeats; rep++ {
		players := make([]strategy.Strategy, len(defs))
		listeners := make([]media.Listener, len(defs))
		for i, def := range defs {
			players[i] = def.New(rng)
			listeners[i] = players[i]
		}
		network.BindPlayers(listeners)

		ordinal := 0
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				id := game.MatchID{
					Rep:     rep,
					PlayerA: defs[i].Name,
					PlayerB: defs[j].Name,
					Ordinal: ordinal,
				}
				outcome := engine.PlayMatch(players[i], players[j], id, matchParams, rng)
				network.Publish(outcome)

				result.Matches = append(result.Matches, rowFor(outcome))
				accumulate(totals[defs[i].Name], outcome.Rounds, outcome.ScoreA)
				accumulate(totals[defs[j].Name], outcome.Rounds, outcome.ScoreB)
				if p.OnMatch != nil {
					p.OnMatch(outcome)
				}
				ordinal++
			}
		}
		network.Drain()
	}

	result.Standings = rankStandings(totals)
	if p.Media != nil {
		result.Media = network.ExportState(true)
	}

	log.Event("RUN_END", "tournament", fmt.Sprintf(
		"matches=%d standings=%d", len(result.Matches), len(result.Standings)))
	return result, nil
}

func resolveSeed(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	return random.NewSeed()
}

func infosFor(defs []strategy.Definition) []strategy.Info {
	infos := make([]strategy.Info, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, strategy.Info{Name: def.Name, Description: def.Description})
	}
	return infos
}

func rowFor(outcome *game.MatchOutcome) MatchRow {
	return MatchRow{
		Rep:      outcome.ID.Rep,
		Ordinal:  outcome.ID.Ordinal,
		PlayerA:  outcome.PlayerA,
		PlayerB:  outcome.PlayerB,
		Rounds:   outcome.Rounds,
		ScoreA:   outcome.ScoreA,
		ScoreB:   outcome.ScoreB,
		AvgA:     round4(outcome.AvgA),
		AvgB:     round4(outcome.AvgB),
		HistoryA: outcome.HistoryA.String(),
		HistoryB: outcome.HistoryB.String(),
	}
}

func accumulate(t *tally, rounds, score int) {
	t.matches++
	t.rounds += rounds
	t.score += score
}

// rankStandings orders strategies by average score per round descending,
// then total score descending, then name ascending.
func rankStandings(totals map[string]*tally) []StandingRow {
	rows := make([]StandingRow, 0, len(totals))
	for name, t := range totals {
		avg := 0.0
		if t.rounds > 0 {
			avg = float64(t.score) / float64(t.rounds)
		}
		rows = append(rows, StandingRow{
			Name:        name,
			Matches:     t.matches,
			TotalScore:  t.score,
			TotalRounds: t.rounds,
			AvgPerRound: round4(avg),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgPerRound != rows[j].AvgPerRound {
			return rows[i].AvgPerRound > rows[j].AvgPerRound
		}
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
