// Package main is the command line tournament runner.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/infra/storage"
	"github.com/mbarrial/pd-arena/internal/media"
	"github.com/mbarrial/pd-arena/internal/platform/logger"
	"github.com/mbarrial/pd-arena/internal/strategy"
	"github.com/mbarrial/pd-arena/internal/tournament"
)

func main() {
	rounds := flag.Int("rounds", tournament.DefaultRounds, "Rounds if continuation is 0")
	continuation := flag.Float64("continuation", 0.0, "Continuation probability per round, 0 for fixed rounds")
	noise := flag.Float64("noise", 0.0, "Probability that a move is flipped")
	repeats := flag.Int("repeats", 1, "Independent tournament repetitions")
	seed := flag.Int64("seed", -1, "Random seed, negative for a fresh one")
	payoffsJSON := flag.String("payoffs", `{"T":5,"R":3,"P":1,"S":0}`, "JSON for payoffs")
	only := flag.String("only", "", "Comma separated strategy names to include")
	exclude := flag.String("exclude", "", "Comma separated strategy names to exclude")
	mediaSpec := flag.String("media", "", "Media preset name, YAML/JSON object, or file path; empty disables media")
	format := flag.String("format", "csv", "Output format: csv or json")
	labels := flag.Bool("labels", false, "List strategy names and exit")
	dbPath := flag.String("db", "", "Optional SQLite path to persist the run")
	flag.Parse()

	if *labels {
		for _, info := range strategy.All() {
			fmt.Println(info.Name)
		}
		return
	}

	var payoffs game.Payoffs
	if err := json.Unmarshal([]byte(*payoffsJSON), &payoffs); err != nil {
		fatal("invalid payoffs: " + err.Error())
	}

	mediaArg := *mediaSpec
	if mediaArg != "" {
		// A readable file stands in for its contents.
		if data, err := os.ReadFile(mediaArg); err == nil {
			mediaArg = string(data)
		}
	}
	mediaCfg, err := media.ResolveConfig(mediaArg)
	if err != nil {
		fatal(err.Error())
	}

	params := tournament.Params{
		Rounds:       *rounds,
		Continuation: *continuation,
		Noise:        *noise,
		Repeats:      *repeats,
		Payoffs:      payoffs,
		Only:         splitList(*only),
		Exclude:      splitList(*exclude),
		Media:        mediaCfg,
	}
	if *seed >= 0 {
		params.Seed = seed
	}

	result, err := tournament.Run(params, logger.NewLogger())
	if err != nil {
		fatal(err.Error())
	}

	if *dbPath != "" {
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			fatal("open database: " + err.Error())
		}
		defer db.Close()
		runID, err := storage.NewRunRepository(db).SaveResult(context.Background(), result)
		if err != nil {
			fatal("persist run: " + err.Error())
		}
		fmt.Printf("Persisted as run %d in %s\n", runID, *dbPath)
	}

	outDir := os.Getenv("OUT_DIR")
	if outDir == "" {
		outDir = "out"
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fatal("create output directory: " + err.Error())
	}
	tag := "pd_" + time.Now().UTC().Format("20060102-150405")

	switch *format {
	case "csv":
		if err := writeMatchesCSV(filepath.Join(outDir, tag+"_matches.csv"), result.Matches); err != nil {
			fatal(err.Error())
		}
		if err := writeStandingsCSV(filepath.Join(outDir, tag+"_standings.csv"), result.Standings); err != nil {
			fatal(err.Error())
		}
		summary := map[string]any{
			"seed":       result.Seed,
			"strategies": result.Strategies,
			"standings":  topStandings(result.Standings, 5),
		}
		if err := writeJSONFile(filepath.Join(outDir, tag+"_summary.json"), summary); err != nil {
			fatal(err.Error())
		}
		if result.Media != nil {
			if err := writeJSONFile(filepath.Join(outDir, tag+"_media.json"), result.Media); err != nil {
				fatal(err.Error())
			}
		}
		fmt.Println("Done. See CSVs and JSON in " + outDir)
	case "json":
		if err := writeJSONFile(filepath.Join(outDir, tag+"_results.json"), result); err != nil {
			fatal(err.Error())
		}
		fmt.Println("Done. See JSON in " + outDir)
	default:
		fatal("unknown format " + *format)
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func topStandings(standings []tournament.StandingRow, n int) []tournament.StandingRow {
	if len(standings) < n {
		n = len(standings)
	}
	return standings[:n]
}

func writeMatchesCSV(path string, matches []tournament.MatchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"rep", "ordinal", "player_a", "player_b", "rounds", "score_a", "score_b", "avg_a", "avg_b", "history_a", "history_b"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, m := range matches {
		row := []string{
			strconv.Itoa(m.Rep),
			strconv.Itoa(m.Ordinal),
			m.PlayerA,
			m.PlayerB,
			strconv.Itoa(m.Rounds),
			strconv.Itoa(m.ScoreA),
			strconv.Itoa(m.ScoreB),
			formatFloat(m.AvgA),
			formatFloat(m.AvgB),
			m.HistoryA,
			m.HistoryB,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeStandingsCSV(path string, standings []tournament.StandingRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"rank", "name", "matches", "total_score", "total_rounds", "avg_per_round"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range standings {
		row := []string{
			strconv.Itoa(s.Rank),
			s.Name,
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.TotalScore),
			strconv.Itoa(s.TotalRounds),
			formatFloat(s.AvgPerRound),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, payload any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
