package strategy

import (
	"sort"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/media"
)

// Media-aware strategies layer an adaptive opening move or a mode switch on
// top of a classic base rule, driven by aggregated report statistics rather
// than raw match history.

const (
	sentinelWindow          = 30
	sentinelCautionFraction = 0.55
	watchdogStrictThreshold = 0.75
)

type moveCount struct {
	coop   int
	defect int
}

// outletNamesBy orders outlet names by the given preference, keeping the
// declared order among equals so enrollment stays deterministic.
func outletNamesBy(outlets []*media.Outlet, less func(a, b *media.Outlet) bool) []string {
	sorted := append([]*media.Outlet(nil), outlets...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	names := make([]string, 0, len(sorted))
	for _, outlet := range sorted {
		names = append(names, outlet.Name)
	}
	return names
}

// MediaSentinel plays tit-for-tat but opens defensively when recent outlet
// reports show a hostile environment.
type MediaSentinel struct {
	base
	window       int
	caution      float64
	recent       []moveCount
	coopTotal    int
	defectTotal  int
	startingMove game.Move
}

// NewMediaSentinel builds a sentinel with the default rolling window.
func NewMediaSentinel() *MediaSentinel {
	return &MediaSentinel{window: sentinelWindow, caution: sentinelCautionFraction, startingMove: game.Cooperate}
}

func (s *MediaSentinel) Name() string { return "MediaSentinel" }
func (s *MediaSentinel) Description() string {
	return "Tit-for-tat that opens cautiously when outlets report frequent defections."
}

func (s *MediaSentinel) Reset() {
	s.startingMove = game.Cooperate
}

func (s *MediaSentinel) MediaReset() {
	s.base.MediaReset()
	s.recent = nil
	s.coopTotal = 0
	s.defectTotal = 0
}

func (s *MediaSentinel) ReceiveMedia(report *media.Report) {
	s.base.ReceiveMedia(report)
	if !report.Accurate {
		return
	}
	var counts moveCount
	for _, actions := range report.Payload.History {
		for i := 0; i < len(actions); i++ {
			switch actions[i] {
			case byte(game.Cooperate):
				counts.coop++
			case byte(game.Defect):
				counts.defect++
			}
		}
	}
	if counts.coop == 0 && counts.defect == 0 {
		return
	}
	s.recent = append(s.recent, counts)
	s.coopTotal += counts.coop
	s.defectTotal += counts.defect
	for len(s.recent) > s.window {
		old := s.recent[0]
		s.recent = s.recent[1:]
		s.coopTotal -= old.coop
		s.defectTotal -= old.defect
	}
}

// PreferredOutlets follows the most accurate outlets first; the network
// truncates the list to any configured subscription limit.
func (s *MediaSentinel) PreferredOutlets(outlets []*media.Outlet) []string {
	return outletNamesBy(outlets, func(a, b *media.Outlet) bool {
		return a.Accuracy > b.Accuracy
	})
}

func (s *MediaSentinel) hostileEnvironment() bool {
	total := s.coopTotal + s.defectTotal
	if total < 1 {
		return false
	}
	return float64(s.defectTotal)/float64(total) >= s.caution
}

func (s *MediaSentinel) Decide(mine, theirs game.History, round int) game.Move {
	if round == 0 {
		s.startingMove = game.Cooperate
		if s.hostileEnvironment() {
			s.startingMove = game.Defect
		}
		return s.startingMove
	}
	if last, ok := theirs.Last(); ok && last == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}

// MediaTrendFollower plays win-stay/lose-shift but copies the opening of the
// highest-scoring strategy the outlets have reported on.
type MediaTrendFollower struct {
	base
	bestPlayer string
	bestScore  float64
	bestSet    bool
	bestAction game.Move
}

// NewMediaTrendFollower builds a trend follower with a cooperative default.
func NewMediaTrendFollower() *MediaTrendFollower {
	return &MediaTrendFollower{bestAction: game.Cooperate}
}

func (s *MediaTrendFollower) Name() string { return "MediaTrendFollower" }
func (s *MediaTrendFollower) Description() string {
	return "Win-stay/lose-shift with openings copied from the best reported strategy."
}

func (s *MediaTrendFollower) MediaReset() {
	s.base.MediaReset()
	s.bestPlayer = ""
	s.bestScore = 0
	s.bestSet = false
	s.bestAction = game.Cooperate
}

func (s *MediaTrendFollower) ReceiveMedia(report *media.Report) {
	s.base.ReceiveMedia(report)
	if !report.Accurate {
		return
	}
	averages := report.Payload.Averages
	if len(averages) == 0 {
		return
	}
	// Scan in player A/B order so ties resolve the same way every run.
	bestName := report.Payload.Players.A
	bestScore := averages[bestName]
	if other := report.Payload.Players.B; averages[other] > bestScore {
		bestName = other
		bestScore = averages[other]
	}
	sequence := report.Payload.History[bestName]
	action := game.Cooperate
	if len(sequence) > 0 && sequence[len(sequence)-1] == byte(game.Defect) {
		action = game.Defect
	}
	s.bestPlayer = bestName
	s.bestScore = bestScore
	s.bestSet = true
	s.bestAction = action
}

// PreferredOutlets follows the widest-reaching outlets first.
func (s *MediaTrendFollower) PreferredOutlets(outlets []*media.Outlet) []string {
	return outletNamesBy(outlets, func(a, b *media.Outlet) bool {
		return a.Coverage > b.Coverage
	})
}

func (s *MediaTrendFollower) Decide(mine, theirs game.History, round int) game.Move {
	if round == 0 || len(mine) == 0 {
		return s.bestAction
	}
	lastMine, _ := mine.Last()
	lastTheirs, ok := theirs.Last()
	if !ok {
		lastTheirs = game.Cooperate
	}
	if lastMine == lastTheirs {
		if lastMine == game.Defect {
			// Leaning on the trend avoids locking into mutual defection.
			return s.bestAction
		}
		return lastMine
	}
	if lastMine == game.Cooperate && lastTheirs == game.Defect {
		return game.Defect
	}
	// We defected while the opponent cooperated; follow the trend instead of
	// pressing the advantage.
	return s.bestAction
}

// MediaWatchdog tallies how often each outlet told the truth and switches
// between a grim and a forgiving posture based on network reliability.
type MediaWatchdog struct {
	base
	strict     float64
	stats      map[string]*moveCount // coop = accurate, defect = rumor tallies
	grimActive bool
}

// NewMediaWatchdog builds a watchdog with the default strictness threshold.
func NewMediaWatchdog() *MediaWatchdog {
	return &MediaWatchdog{strict: watchdogStrictThreshold, stats: map[string]*moveCount{}}
}

func (s *MediaWatchdog) Name() string { return "MediaWatchdog" }
func (s *MediaWatchdog) Description() string {
	return "Grim when the outlets prove reliable, forgiving when they spread rumors."
}

func (s *MediaWatchdog) Reset() {
	s.grimActive = false
}

func (s *MediaWatchdog) MediaReset() {
	s.base.MediaReset()
	s.stats = map[string]*moveCount{}
}

func (s *MediaWatchdog) ReceiveMedia(report *media.Report) {
	s.base.ReceiveMedia(report)
	tally := s.stats[report.Outlet]
	if tally == nil {
		tally = &moveCount{}
		s.stats[report.Outlet] = tally
	}
	if report.Accurate {
		tally.coop++
	} else {
		tally.defect++
	}
}

// PreferredOutlets follows every outlet in declared order; the watchdog
// wants the broadest sample to judge reliability from.
func (s *MediaWatchdog) PreferredOutlets(outlets []*media.Outlet) []string {
	names := make([]string, 0, len(outlets))
	for _, outlet := range outlets {
		names = append(names, outlet.Name)
	}
	return names
}

func (s *MediaWatchdog) networkReliability() float64 {
	if len(s.stats) == 0 {
		return 0.5
	}
	accurate, total := 0, 0
	for _, tally := range s.stats {
		accurate += tally.coop
		total += tally.coop + tally.defect
	}
	if total == 0 {
		return 0.5
	}
	return float64(accurate) / float64(total)
}

func (s *MediaWatchdog) Decide(mine, theirs game.History, round int) game.Move {
	if s.networkReliability() >= s.strict {
		if last, ok := theirs.Last(); ok && last == game.Defect {
			s.grimActive = true
		}
		if s.grimActive {
			return game.Defect
		}
		return game.Cooperate
	}
	// Low trust in the network encourages a forgiving posture: retaliate only
	// against two consecutive defections.
	if len(theirs) >= 2 && theirs[len(theirs)-1] == game.Defect && theirs[len(theirs)-2] == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}
