package media

import (
	"fmt"
	"math/rand"

	"github.com/mbarrial/pd-arena/internal/domain/game"
)

// Listener receives broadcast reports. Strategies implement it; the network
// never needs to know anything else about its audience.
type Listener interface {
	Name() string
	MediaReset()
	ReceiveMedia(report *Report)
	PreferredOutlets(outlets []*Outlet) []string
}

// DeliveryEntry is one audited delivery of a report to a recipient.
type DeliveryEntry struct {
	Recipient string       `json:"recipient,omitempty"`
	Outlet    string       `json:"outlet"`
	Accurate  bool         `json:"accurate"`
	Delay     int          `json:"delay"`
	Rep       int          `json:"rep"`
	Ordinal   int          `json:"ordinal"`
	MatchID   game.MatchID `json:"match_id"`
	Payload   game.Payload `json:"payload"`
}

// State is a serializable snapshot of the network configuration and its
// delivery log grouped by recipient.
type State struct {
	Config struct {
		Outlets       []OutletConfig      `json:"outlets"`
		Subscriptions SubscriptionsConfig `json:"subscriptions"`
	} `json:"config"`
	Reports map[string][]DeliveryEntry `json:"reports,omitempty"`
}

type pendingReport struct {
	remaining int
	report    *Report
}

// Network owns the outlet set, the delayed-delivery queue, subscription
// resolution and broadcast dispatch. Delay advances only on Publish calls
// (logical ticks), never on a timer.
type Network struct {
	outlets     []*Outlet
	limit       int
	hasLimit    bool
	defaults    map[string][]string
	enrollments map[string][]string
	rng         *rand.Rand

	pending    []pendingReport
	listeners  []Listener
	resolved   map[string][]string
	auto       map[string][]string
	restricted bool
	log        []DeliveryEntry
	observer   func(DeliveryEntry)
}

// NewNetwork builds a network from a configuration. Outlet records missing a
// name surface as configuration errors before any simulation state exists.
func NewNetwork(cfg *Config, rng *rand.Rand) (*Network, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	n := &Network{
		rng:         rng,
		defaults:    map[string][]string{},
		enrollments: map[string][]string{},
		resolved:    map[string][]string{},
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	for _, oc := range cfg.Outlets {
		outlet, err := NewOutlet(oc)
		if err != nil {
			return nil, fmt.Errorf("outlet %d: %w", len(n.outlets), err)
		}
		n.outlets = append(n.outlets, outlet)
	}
	if subs := cfg.Subscriptions; subs != nil {
		if subs.Limit != nil {
			n.hasLimit = true
			n.limit = clampNonNegative(*subs.Limit)
		}
		for name, outlets := range subs.Defaults {
			n.defaults[name] = append([]string(nil), outlets...)
		}
		for name, outlets := range subs.Enrollments {
			n.enrollments[name] = append([]string(nil), outlets...)
		}
	}
	n.resolveSubscriptions()
	return n, nil
}

// SetRNG swaps the randomness source consumed by outlet sampling.
func (n *Network) SetRNG(rng *rand.Rand) {
	if rng != nil {
		n.rng = rng
	}
}

// Outlets returns the outlet set in declared order.
func (n *Network) Outlets() []*Outlet {
	return n.outlets
}

// SetObserver registers a hook invoked for every audited delivery, in
// delivery order. Used for live feeds and metrics; nil disables it.
func (n *Network) SetObserver(fn func(DeliveryEntry)) {
	n.observer = fn
}

// ResetLog clears the delivery log.
func (n *Network) ResetLog() {
	n.log = nil
}

// BindPlayers replaces the listener set for a new repetition: pending
// deliveries are discarded, every listener's media state is reset,
// auto-enrollments are recomputed and subscriptions re-resolved for the
// active player set.
func (n *Network) BindPlayers(players []Listener) {
	n.listeners = append([]Listener(nil), players...)
	n.pending = nil
	active := make(map[string]struct{}, len(n.listeners))
	for _, p := range n.listeners {
		p.MediaReset()
		active[p.Name()] = struct{}{}
	}
	n.auto = n.determineAutoEnrollments()
	n.resolveSubscriptions()
	n.applyActivePlayers(active)
}

// Publish advances the pending queue by one logical tick, delivering entries
// whose delay reaches zero, then lets every outlet consider the new outcome.
// Zero-delay reports broadcast immediately; delayed ones join the queue.
// Returns the reports delivered during this tick.
func (n *Network) Publish(outcome *game.MatchOutcome) []*Report {
	delivered := n.advancePending(false)
	for _, outlet := range n.outlets {
		report := outlet.Consider(outcome, n.rng)
		if report == nil {
			continue
		}
		if report.Delay > 0 {
			n.pending = append(n.pending, pendingReport{remaining: report.Delay, report: report})
		} else {
			n.broadcast(report)
			delivered = append(delivered, report)
		}
	}
	return delivered
}

// Drain force-delivers every pending report regardless of remaining delay.
func (n *Network) Drain() []*Report {
	var delivered []*Report
	for len(n.pending) > 0 {
		delivered = append(delivered, n.advancePending(true)...)
	}
	return delivered
}

func (n *Network) advancePending(force bool) []*Report {
	if len(n.pending) == 0 {
		return nil
	}
	var ready []*Report
	remaining := n.pending[:0]
	for _, entry := range n.pending {
		next := 0
		if !force {
			next = clampNonNegative(entry.remaining - 1)
		}
		if next == 0 {
			ready = append(ready, entry.report)
		} else {
			remaining = append(remaining, pendingReport{remaining: next, report: entry.report})
		}
	}
	n.pending = remaining
	for _, report := range ready {
		n.broadcast(report)
	}
	return ready
}

// broadcast delivers a report to every bound listener allowed to receive it.
// With no enrollment rules in effect, broadcast is unrestricted.
func (n *Network) broadcast(report *Report) {
	if len(n.listeners) == 0 {
		return
	}
	for _, listener := range n.listeners {
		name := listener.Name()
		if n.restricted && !contains(n.resolved[name], report.Outlet) {
			continue
		}
		listener.ReceiveMedia(report)
		n.logDelivery(report, name)
	}
}

func (n *Network) logDelivery(report *Report, recipient string) {
	entry := DeliveryEntry{
		Recipient: recipient,
		Outlet:    report.Outlet,
		Accurate:  report.Accurate,
		Delay:     report.Delay,
		Rep:       report.Outcome.ID.Rep,
		Ordinal:   report.Outcome.ID.Ordinal,
		MatchID:   report.MatchID,
		Payload:   report.Payload,
	}
	n.log = append(n.log, entry)
	if n.observer != nil {
		n.observer(entry)
	}
}

// ResolvedEnrollments returns a copy of the current strategy -> outlets
// mapping. An empty map means broadcast is unrestricted.
func (n *Network) ResolvedEnrollments() map[string][]string {
	out := make(map[string][]string, len(n.resolved))
	for name, outlets := range n.resolved {
		out[name] = append([]string(nil), outlets...)
	}
	return out
}

// normalizeChoices deduplicates, filters to known outlet names and truncates
// to the subscription limit.
func (n *Network) normalizeChoices(choices []string) []string {
	if len(choices) == 0 {
		return nil
	}
	available := n.outletNames()
	var result []string
	for _, choice := range choices {
		if n.hasLimit && len(result) >= n.limit {
			break
		}
		if _, known := available[choice]; !known || contains(result, choice) {
			continue
		}
		result = append(result, choice)
	}
	return result
}

// resolveSubscriptions layers the three enrollment sources, later overriding
// earlier for the same strategy name: configured defaults, then non-empty
// auto-enrollments, then explicit enrollments.
func (n *Network) resolveSubscriptions() {
	resolved := map[string][]string{}
	for name, outlets := range n.defaults {
		resolved[name] = n.normalizeChoices(outlets)
	}
	for name, outlets := range n.auto {
		if normalized := n.normalizeChoices(outlets); len(normalized) > 0 {
			resolved[name] = normalized
		}
	}
	for name, outlets := range n.enrollments {
		resolved[name] = n.normalizeChoices(outlets)
	}
	n.resolved = resolved
	n.pruneEnrollments()
}

func (n *Network) determineAutoEnrollments() map[string][]string {
	auto := map[string][]string{}
	for _, listener := range n.listeners {
		normalized := n.normalizeChoices(listener.PreferredOutlets(n.outlets))
		if len(normalized) > 0 {
			auto[listener.Name()] = normalized
		}
	}
	return auto
}

// applyActivePlayers restricts the resolved mapping to the bound player set.
// When no enrollment rules exist at all, broadcast stays unrestricted.
// Auto-enrollment preferences count as rules here: a strategy that asks to
// follow particular outlets narrows its deliveries to those outlets exactly
// as an explicit enrollment would.
func (n *Network) applyActivePlayers(active map[string]struct{}) {
	if len(active) == 0 {
		return
	}
	hasRules := len(n.defaults) > 0 || len(n.enrollments) > 0 || n.hasLimit || len(n.auto) > 0
	n.restricted = hasRules
	if !hasRules {
		n.resolved = map[string][]string{}
		return
	}
	resolved := map[string][]string{}
	for name := range active {
		if outlets, ok := n.resolved[name]; ok {
			resolved[name] = outlets
		} else {
			resolved[name] = n.normalizeChoices(n.defaults[name])
		}
	}
	n.resolved = resolved
	n.pruneEnrollments()
}

// pruneEnrollments drops outlet names no longer present in the outlet set
// and removes strategies left with nothing to receive.
func (n *Network) pruneEnrollments() {
	if len(n.resolved) == 0 {
		return
	}
	available := n.outletNames()
	for name, outlets := range n.resolved {
		var clean []string
		for _, outlet := range outlets {
			if _, ok := available[outlet]; ok {
				clean = append(clean, outlet)
			}
		}
		if len(clean) > 0 {
			n.resolved[name] = clean
		} else {
			delete(n.resolved, name)
		}
	}
}

func (n *Network) outletNames() map[string]struct{} {
	names := make(map[string]struct{}, len(n.outlets))
	for _, outlet := range n.outlets {
		names[outlet.Name] = struct{}{}
	}
	return names
}

// ExportState snapshots the network configuration plus, when requested, the
// delivery log grouped by recipient.
func (n *Network) ExportState(includeReports bool) *State {
	state := &State{}
	for _, outlet := range n.outlets {
		state.Config.Outlets = append(state.Config.Outlets, outlet.ConfigSnapshot())
	}
	if n.hasLimit {
		limit := n.limit
		state.Config.Subscriptions.Limit = &limit
	}
	state.Config.Subscriptions.Defaults = copyEnrollmentMap(n.defaults)
	state.Config.Subscriptions.Enrollments = copyEnrollmentMap(n.resolved)
	if includeReports {
		grouped := map[string][]DeliveryEntry{}
		for _, entry := range n.log {
			recipient := entry.Recipient
			entry.Recipient = ""
			grouped[recipient] = append(grouped[recipient], entry)
		}
		state.Reports = grouped
	}
	return state
}

func copyEnrollmentMap(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for name, outlets := range src {
		out[name] = append([]string(nil), outlets...)
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
