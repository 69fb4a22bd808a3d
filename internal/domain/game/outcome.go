package game

import (
	"encoding/json"
	"fmt"
)

// MatchID uniquely identifies a match within a run: repetition index, the two
// player names, and the ordinal position of the pairing within the repetition.
type MatchID struct {
	Rep     int
	PlayerA string
	PlayerB string
	Ordinal int
}

// String renders the identifier in its stable ordered form.
func (id MatchID) String() string {
	return fmt.Sprintf("%d:%s:%s:%d", id.Rep, id.PlayerA, id.PlayerB, id.Ordinal)
}

// MarshalJSON serializes the identifier as the stable ordered array
// [rep, playerA, playerB, ordinal].
func (id MatchID) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{id.Rep, id.PlayerA, id.PlayerB, id.Ordinal})
}

// UnmarshalJSON accepts the array form produced by MarshalJSON.
func (id *MatchID) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 4 {
		return fmt.Errorf("match id must have 4 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &id.Rep); err != nil {
		return err
	}
	if err := json.Unmarshal(parts[1], &id.PlayerA); err != nil {
		return err
	}
	if err := json.Unmarshal(parts[2], &id.PlayerB); err != nil {
		return err
	}
	return json.Unmarshal(parts[3], &id.Ordinal)
}

// MatchOutcome is the immutable record of one fully played match. It is
// created once by the match engine and shared read-only by every outlet and
// report that references it.
type MatchOutcome struct {
	ID       MatchID `json:"id"`
	PlayerA  string  `json:"player_a"`
	PlayerB  string  `json:"player_b"`
	Rounds   int     `json:"rounds"`
	ScoreA   int     `json:"score_a"`
	ScoreB   int     `json:"score_b"`
	AvgA     float64 `json:"avg_a"`
	AvgB     float64 `json:"avg_b"`
	HistoryA History `json:"history_a"`
	HistoryB History `json:"history_b"`
}

// NamedScores returns the cumulative scores keyed by player name.
func (o *MatchOutcome) NamedScores() map[string]int {
	return map[string]int{o.PlayerA: o.ScoreA, o.PlayerB: o.ScoreB}
}

// NamedAverages returns the per-round averages keyed by player name.
func (o *MatchOutcome) NamedAverages() map[string]float64 {
	return map[string]float64{o.PlayerA: o.AvgA, o.PlayerB: o.AvgB}
}

// NamedHistory returns the realized move sequences keyed by player name.
func (o *MatchOutcome) NamedHistory() map[string]string {
	return map[string]string{o.PlayerA: o.HistoryA.String(), o.PlayerB: o.HistoryB.String()}
}

// PlayerPair names the two sides of a match in A/B order.
type PlayerPair struct {
	A string `json:"A"`
	B string `json:"B"`
}

// Payload is the serializable summary of an outcome that media outlets
// circulate. Source and Accurate are stamped by the reporting outlet.
type Payload struct {
	MatchID  MatchID            `json:"match_id"`
	Rep      int                `json:"rep"`
	Ordinal  int                `json:"ordinal"`
	Players  PlayerPair         `json:"players"`
	Rounds   int                `json:"rounds"`
	Scores   map[string]int     `json:"scores"`
	Averages map[string]float64 `json:"averages"`
	History  map[string]string  `json:"history"`
	Rumor    bool               `json:"rumor,omitempty"`
	Source   string             `json:"source,omitempty"`
	Accurate bool               `json:"accurate"`
}

// BuildPayload returns the outcome summary an outlet would publish. An
// accurate payload carries the true named results. An inaccurate one swaps
// the two players' scores, averages and move sequences with each other: a
// plausible but attributionally wrong report, not random noise.
func (o *MatchOutcome) BuildPayload(accurate bool) Payload {
	p := Payload{
		MatchID:  o.ID,
		Rep:      o.ID.Rep,
		Ordinal:  o.ID.Ordinal,
		Players:  PlayerPair{A: o.PlayerA, B: o.PlayerB},
		Rounds:   o.Rounds,
		Scores:   o.NamedScores(),
		Averages: o.NamedAverages(),
		History:  o.NamedHistory(),
	}
	if accurate {
		return p
	}
	p.Scores = map[string]int{o.PlayerA: o.ScoreB, o.PlayerB: o.ScoreA}
	p.Averages = map[string]float64{o.PlayerA: o.AvgB, o.PlayerB: o.AvgA}
	p.History = map[string]string{o.PlayerA: o.HistoryB.String(), o.PlayerB: o.HistoryA.String()}
	p.Rumor = true
	return p
}
