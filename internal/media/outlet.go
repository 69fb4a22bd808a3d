// Package media simulates the information channel between matches: outlets
// that stochastically cover outcomes, a network that queues and broadcasts
// their reports, and the subscription rules deciding who hears what.
package media

import (
	"errors"
	"math/rand"

	"github.com/mbarrial/pd-arena/internal/domain/game"
)

// ErrOutletName indicates an outlet record without the required name.
var ErrOutletName = errors.New("media outlet requires a name")

// Outlet is a simulated information source with independent coverage,
// accuracy and delivery-delay behavior. Outlets live for the whole run.
type Outlet struct {
	Name            string
	Coverage        float64
	Accuracy        float64
	Delay           DelaySpec
	AvoidDuplicates bool

	// Grows for the lifetime of the outlet; never reset between repetitions.
	reported map[game.MatchID]struct{}
}

// NewOutlet builds an outlet from its configuration record.
func NewOutlet(cfg OutletConfig) (*Outlet, error) {
	if cfg.Name == "" {
		return nil, ErrOutletName
	}
	return &Outlet{
		Name:            cfg.Name,
		Coverage:        cfg.Coverage,
		Accuracy:        cfg.Accuracy,
		Delay:           cfg.Delay,
		AvoidDuplicates: cfg.AvoidDuplicates,
		reported:        make(map[game.MatchID]struct{}),
	}, nil
}

// Consider samples whether and how the outlet reports an outcome. The draw
// order is fixed: duplicate check (no draw), coverage, accuracy, delay.
// Returns nil when the outcome is not covered.
func (o *Outlet) Consider(outcome *game.MatchOutcome, rng *rand.Rand) *Report {
	if o.AvoidDuplicates {
		if _, seen := o.reported[outcome.ID]; seen {
			return nil
		}
	}
	if rng.Float64() > clamp01(o.Coverage) {
		return nil
	}
	accurate := rng.Float64() <= clamp01(o.Accuracy)
	delay := o.Delay.Sample(rng)

	payload := outcome.BuildPayload(accurate)
	payload.Source = o.Name
	payload.Accurate = accurate

	if o.AvoidDuplicates {
		o.reported[outcome.ID] = struct{}{}
	}
	return &Report{
		MatchID:  outcome.ID,
		Outlet:   o.Name,
		Outcome:  outcome,
		Payload:  payload,
		Accurate: accurate,
		Delay:    delay,
	}
}

// ConfigSnapshot returns the outlet's current configuration record.
func (o *Outlet) ConfigSnapshot() OutletConfig {
	return OutletConfig{
		Name:            o.Name,
		Coverage:        o.Coverage,
		Accuracy:        o.Accuracy,
		Delay:           o.Delay,
		AvoidDuplicates: o.AvoidDuplicates,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
