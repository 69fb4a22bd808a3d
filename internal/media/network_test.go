package media

import (
	"math/rand"
	"testing"
)

type stubListener struct {
	name     string
	prefs    []string
	received []*Report
	resets   int
}

func (s *stubListener) Name() string                { return s.name }
func (s *stubListener) MediaReset()                 { s.resets++; s.received = nil }
func (s *stubListener) ReceiveMedia(report *Report) { s.received = append(s.received, report) }
func (s *stubListener) PreferredOutlets(outlets []*Outlet) []string {
	return s.prefs
}

func immediateConfig() *Config {
	return &Config{
		Outlets: []OutletConfig{
			{Name: "Wire", Coverage: 1, Accuracy: 1, Delay: FixedDelay(0), AvoidDuplicates: true},
		},
	}
}

func TestMissingOutletNameIsConfigError(t *testing.T) {
	cfg := &Config{Outlets: []OutletConfig{{Coverage: 1}}}
	if _, err := NewNetwork(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected configuration error for unnamed outlet")
	}
}

func TestPublishDeliversImmediatelyWithoutRules(t *testing.T) {
	network, err := NewNetwork(immediateConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := &stubListener{name: "A"}
	b := &stubListener{name: "B"}
	network.BindPlayers([]Listener{a, b})

	delivered := network.Publish(testOutcome(0))
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered report, got %d", len(delivered))
	}
	if len(a.received) != 1 || len(b.received) != 1 {
		t.Errorf("expected unrestricted broadcast to both, got A=%d B=%d",
			len(a.received), len(b.received))
	}
	if a.resets != 1 {
		t.Errorf("expected one media reset at binding, got %d", a.resets)
	}
}

func TestDelayedReportsAdvanceOnPublishTicks(t *testing.T) {
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "Slow", Coverage: 1, Accuracy: 1, Delay: FixedDelay(2), AvoidDuplicates: true},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listener := &stubListener{name: "A"}
	network.BindPlayers([]Listener{listener})

	if delivered := network.Publish(testOutcome(0)); len(delivered) != 0 {
		t.Fatalf("delay-2 report delivered on its own tick: %d", len(delivered))
	}
	if delivered := network.Publish(testOutcome(1)); len(delivered) != 0 {
		t.Fatalf("delay-2 report delivered one tick early: %d", len(delivered))
	}
	// Third publish: the first report's remaining delay hits zero.
	delivered := network.Publish(testOutcome(2))
	if len(delivered) != 1 {
		t.Fatalf("expected 1 report after two ticks, got %d", len(delivered))
	}
	if delivered[0].MatchID.Ordinal != 0 {
		t.Errorf("expected the oldest report first, got ordinal %d", delivered[0].MatchID.Ordinal)
	}
	if len(listener.received) != 1 {
		t.Errorf("expected 1 delivery to listener, got %d", len(listener.received))
	}
}

func TestDrainForceDeliversEverything(t *testing.T) {
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "Slow", Coverage: 1, Accuracy: 1, Delay: FixedDelay(5), AvoidDuplicates: true},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listener := &stubListener{name: "A"}
	network.BindPlayers([]Listener{listener})

	network.Publish(testOutcome(0))
	network.Publish(testOutcome(1))

	drained := network.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained reports, got %d", len(drained))
	}
	if again := network.Drain(); len(again) != 0 {
		t.Errorf("second drain delivered %d reports", len(again))
	}
	if len(listener.received) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(listener.received))
	}
}

func TestSubscriptionPrecedence(t *testing.T) {
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "X", Coverage: 1, Accuracy: 1},
			{Name: "Y", Coverage: 1, Accuracy: 1},
		},
		Subscriptions: &SubscriptionsConfig{
			Defaults:    map[string][]string{"S": {"X"}},
			Enrollments: map[string][]string{"S": {"Y"}},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := &stubListener{name: "S", prefs: []string{"X"}}
	auto := &stubListener{name: "T", prefs: []string{"X"}}
	network.BindPlayers([]Listener{s, auto})

	resolved := network.ResolvedEnrollments()
	if got := resolved["S"]; len(got) != 1 || got[0] != "Y" {
		t.Errorf("explicit enrollment should override preference and default, got %v", got)
	}
	if got := resolved["T"]; len(got) != 1 || got[0] != "X" {
		t.Errorf("auto-enrollment should apply when nothing explicit exists, got %v", got)
	}
}

func TestSubscriptionLimitAndUnknownFilter(t *testing.T) {
	limit := 1
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "X", Coverage: 1, Accuracy: 1},
			{Name: "Y", Coverage: 1, Accuracy: 1},
		},
		Subscriptions: &SubscriptionsConfig{
			Limit:       &limit,
			Enrollments: map[string][]string{"S": {"Nowhere", "X", "X", "Y"}},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	network.BindPlayers([]Listener{&stubListener{name: "S"}})

	resolved := network.ResolvedEnrollments()
	if got := resolved["S"]; len(got) != 1 || got[0] != "X" {
		t.Errorf("expected [X] after filtering and limit, got %v", got)
	}
}

func TestZeroLimitBlocksAllDeliveries(t *testing.T) {
	zero := 0
	cfg := immediateConfig()
	cfg.Subscriptions = &SubscriptionsConfig{
		Limit:    &zero,
		Defaults: map[string][]string{"A": {"Wire"}},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listener := &stubListener{name: "A"}
	network.BindPlayers([]Listener{listener})

	network.Publish(testOutcome(0))
	if len(listener.received) != 0 {
		t.Errorf("zero limit should block every delivery, got %d", len(listener.received))
	}
}

func TestSubscriptionResolutionIdempotent(t *testing.T) {
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "X", Coverage: 1, Accuracy: 1},
			{Name: "Y", Coverage: 1, Accuracy: 1},
		},
		Subscriptions: &SubscriptionsConfig{
			Defaults: map[string][]string{"S": {"X", "Y"}},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	players := []Listener{&stubListener{name: "S"}}

	network.BindPlayers(players)
	first := network.ResolvedEnrollments()
	network.BindPlayers(players)
	second := network.ResolvedEnrollments()

	if len(first) != len(second) {
		t.Fatalf("mapping size changed: %v vs %v", first, second)
	}
	for name, outlets := range first {
		other := second[name]
		if len(other) != len(outlets) {
			t.Fatalf("mapping for %s changed: %v vs %v", name, outlets, other)
		}
		for i := range outlets {
			if outlets[i] != other[i] {
				t.Errorf("mapping for %s changed at %d: %v vs %v", name, i, outlets, other)
			}
		}
	}
}

func TestRestrictedBroadcastSkipsUnenrolled(t *testing.T) {
	cfg := immediateConfig()
	cfg.Subscriptions = &SubscriptionsConfig{
		Enrollments: map[string][]string{"A": {"Wire"}},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := &stubListener{name: "A"}
	b := &stubListener{name: "B"}
	network.BindPlayers([]Listener{a, b})

	network.Publish(testOutcome(0))
	if len(a.received) != 1 {
		t.Errorf("enrolled listener expected 1 report, got %d", len(a.received))
	}
	if len(b.received) != 0 {
		t.Errorf("unenrolled listener expected 0 reports, got %d", len(b.received))
	}
}

func TestBindPlayersDiscardsPendingAndResets(t *testing.T) {
	cfg := &Config{
		Outlets: []OutletConfig{
			{Name: "Slow", Coverage: 1, Accuracy: 1, Delay: FixedDelay(3), AvoidDuplicates: true},
		},
	}
	network, err := NewNetwork(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listener := &stubListener{name: "A"}
	network.BindPlayers([]Listener{listener})
	network.Publish(testOutcome(0))

	network.BindPlayers([]Listener{listener})
	if drained := network.Drain(); len(drained) != 0 {
		t.Errorf("rebinding should discard pending reports, drained %d", len(drained))
	}
	if listener.resets != 2 {
		t.Errorf("expected 2 media resets, got %d", listener.resets)
	}
}

func TestExportStateGroupsByRecipient(t *testing.T) {
	network, err := NewNetwork(immediateConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := &stubListener{name: "A"}
	b := &stubListener{name: "B"}
	network.BindPlayers([]Listener{a, b})
	network.Publish(testOutcome(0))

	state := network.ExportState(true)
	if len(state.Config.Outlets) != 1 || state.Config.Outlets[0].Name != "Wire" {
		t.Errorf("expected outlet config snapshot, got %+v", state.Config.Outlets)
	}
	if len(state.Reports["A"]) != 1 || len(state.Reports["B"]) != 1 {
		t.Errorf("expected one entry per recipient, got %v", state.Reports)
	}
	if state.Reports["A"][0].Recipient != "" {
		t.Error("grouped entries should not repeat the recipient name")
	}

	bare := network.ExportState(false)
	if bare.Reports != nil {
		t.Error("expected no reports when not requested")
	}
}
