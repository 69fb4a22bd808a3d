package strategy

import "testing"

func TestAllListsEveryStrategy(t *testing.T) {
	infos := All()
	if len(infos) != 13 {
		t.Errorf("expected 13 registered strategies, got %d", len(infos))
	}
	if infos[0].Name != "AlwaysCooperate" {
		t.Errorf("expected stable registry order, got %s first", infos[0].Name)
	}
	for _, info := range infos {
		if info.Description == "" {
			t.Errorf("strategy %s missing description", info.Name)
		}
	}
}

func TestCanonNormalization(t *testing.T) {
	cases := map[string]string{
		"TitForTat":     "titfortat",
		"Tit-For-Tat":   "titfortat",
		"tit_for_tat":   "titfortat",
		" Tit For Tat ": "titfortat",
	}
	for input, expected := range cases {
		if got := Canon(input); got != expected {
			t.Errorf("Canon(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestResolveOnly(t *testing.T) {
	defs := Resolve([]string{"tit-for-tat", "AlwaysDefect"}, nil)
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	// Registry order, not request order.
	if defs[0].Name != "AlwaysDefect" || defs[1].Name != "TitForTat" {
		t.Errorf("unexpected selection order: %s, %s", defs[0].Name, defs[1].Name)
	}
}

func TestResolveExclude(t *testing.T) {
	defs := Resolve(nil, []string{"Random"})
	if len(defs) != 12 {
		t.Errorf("expected 12 definitions after exclusion, got %d", len(defs))
	}
	for _, def := range defs {
		if def.Name == "Random" {
			t.Error("excluded strategy still selected")
		}
	}
}

func TestResolveAcceptsRandomStrategyAlias(t *testing.T) {
	defs := Resolve([]string{"RandomStrategy", "TitForTat"}, nil)
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[1].Name != "Random" {
		t.Errorf("expected alias to select Random, got %s", defs[1].Name)
	}

	defs = Resolve(nil, []string{"random_strategy"})
	for _, def := range defs {
		if def.Name == "Random" {
			t.Error("aliased exclusion still selected Random")
		}
	}
}

func TestFactoriesProduceFreshInstances(t *testing.T) {
	defs := Resolve([]string{"GrimTrigger"}, nil)
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	a := defs[0].New(nil)
	b := defs[0].New(nil)
	if a == b {
		t.Error("factory returned a shared instance")
	}
	if a.Name() != "GrimTrigger" {
		t.Errorf("expected GrimTrigger, got %s", a.Name())
	}
}
