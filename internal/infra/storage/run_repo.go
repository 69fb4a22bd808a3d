package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbarrial/pd-arena/internal/tournament"
)

// RunRepository stores completed tournament results.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveResult writes a full tournament result inside one transaction and
// returns the new run id.
func (r *RunRepository) SaveResult(ctx context.Context, result *tournament.Result) (int64, error) {
	payoffs, err := json.Marshal(result.Payoffs)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payoffs: %w", err)
	}
	strategies, err := json.Marshal(result.Strategies)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal strategies: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, seed, rounds, continuation, noise, repeats, payoffs_json, strategies_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now(), result.Seed, result.Rounds, result.Continuation,
		result.Noise, result.Repeats, string(payoffs), string(strategies),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, m := range result.Matches {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO matches (run_id, rep, ordinal, player_a, player_b, rounds, score_a, score_b, avg_a, avg_b, history_a, history_b)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.Rep, m.Ordinal, m.PlayerA, m.PlayerB, m.Rounds, m.ScoreA, m.ScoreB, m.AvgA, m.AvgB, m.HistoryA, m.HistoryB,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert match: %w", err)
		}
	}

	for _, s := range result.Standings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO standings (run_id, rank, name, matches, total_score, total_rounds, avg_per_round)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, s.Rank, s.Name, s.Matches, s.TotalScore, s.TotalRounds, s.AvgPerRound,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert standing: %w", err)
		}
	}

	if result.Media != nil {
		for recipient, entries := range result.Media.Reports {
			for _, entry := range entries {
				payload, err := json.Marshal(entry.Payload)
				if err != nil {
					return 0, fmt.Errorf("failed to marshal delivery payload: %w", err)
				}
				_, err = tx.ExecContext(ctx,
					`INSERT INTO media_deliveries (run_id, recipient, outlet, accurate, delay, rep, ordinal, payload_json)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					runID, recipient, entry.Outlet, entry.Accurate, entry.Delay, entry.Rep, entry.Ordinal, string(payload),
				)
				if err != nil {
					return 0, fmt.Errorf("failed to insert media delivery: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the stored run index.
type RunSummary struct {
	RunID     int64     `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Seed      int64     `json:"seed"`
	Rounds    int       `json:"rounds"`
	Repeats   int       `json:"repeats"`
}

// ListRuns returns stored runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, created_at, seed, rounds, repeats FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.CreatedAt, &s.Seed, &s.Rounds, &s.Repeats); err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// StandingsFor returns the stored standings of one run in rank order.
func (r *RunRepository) StandingsFor(ctx context.Context, runID int64) ([]tournament.StandingRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rank, name, matches, total_score, total_rounds, avg_per_round
		 FROM standings WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	defer rows.Close()

	var standings []tournament.StandingRow
	for rows.Next() {
		var s tournament.StandingRow
		if err := rows.Scan(&s.Rank, &s.Name, &s.Matches, &s.TotalScore, &s.TotalRounds, &s.AvgPerRound); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
