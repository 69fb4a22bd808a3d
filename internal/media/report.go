package media

import "github.com/mbarrial/pd-arena/internal/domain/game"

// Report is a single emission from an outlet about one match outcome. Delay
// is the sampled delivery delay in logical ticks; the network tracks the
// remaining countdown separately in its pending queue.
type Report struct {
	MatchID  game.MatchID
	Outlet   string
	Outcome  *game.MatchOutcome
	Payload  game.Payload
	Accurate bool
	Delay    int
}
