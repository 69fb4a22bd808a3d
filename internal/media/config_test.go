package media

import "testing"

func TestBasicPreset(t *testing.T) {
	cfg, ok := Preset("basic")
	if !ok {
		t.Fatal("basic preset missing")
	}
	if len(cfg.Outlets) != 3 {
		t.Errorf("expected 3 outlets, got %d", len(cfg.Outlets))
	}
	if cfg.Subscriptions == nil || cfg.Subscriptions.Limit == nil || *cfg.Subscriptions.Limit != 2 {
		t.Errorf("expected subscription limit 2, got %+v", cfg.Subscriptions)
	}
}

func TestNonePresetDisablesBroadcast(t *testing.T) {
	cfg, ok := Preset("none")
	if !ok {
		t.Fatal("none preset missing")
	}
	if len(cfg.Outlets) != 0 {
		t.Errorf("expected no outlets, got %d", len(cfg.Outlets))
	}
	if cfg.Subscriptions.Limit == nil || *cfg.Subscriptions.Limit != 0 {
		t.Error("none preset should carry an explicit zero limit")
	}
}

func TestResolveConfigEmptyDisablesMedia(t *testing.T) {
	cfg, err := ResolveConfig("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestResolveConfigPresetName(t *testing.T) {
	cfg, err := ResolveConfig("basic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || len(cfg.Outlets) != 3 {
		t.Errorf("expected basic preset, got %+v", cfg)
	}
}

func TestResolveConfigObjectText(t *testing.T) {
	text := `
outlets:
  - name: Courier
    coverage: 0.4
    delay: [0, 2]
subscriptions:
  limit: 1
`
	cfg, err := ResolveConfig(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Outlets) != 1 {
		t.Fatalf("expected 1 outlet, got %d", len(cfg.Outlets))
	}
	outlet := cfg.Outlets[0]
	if outlet.Name != "Courier" || outlet.Coverage != 0.4 {
		t.Errorf("unexpected outlet %+v", outlet)
	}
	// Omitted fields take the documented defaults.
	if outlet.Accuracy != 1.0 || !outlet.AvoidDuplicates {
		t.Errorf("defaults not applied: %+v", outlet)
	}
	if outlet.Delay.Kind != DelayRange || outlet.Delay.Lo != 0 || outlet.Delay.Hi != 2 {
		t.Errorf("two-element delay should parse as a range, got %+v", outlet.Delay)
	}
}

func TestResolveConfigJSONObjectText(t *testing.T) {
	text := `{"outlets": [{"name": "Courier"}]}`
	cfg, err := ResolveConfig(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Outlets) != 1 || cfg.Outlets[0].Name != "Courier" {
		t.Errorf("expected Courier outlet, got %+v", cfg)
	}
}

func TestResolveConfigRejectsUnknownValue(t *testing.T) {
	if _, err := ResolveConfig("no-such-preset"); err == nil {
		t.Error("expected error for unknown preset name")
	}
}
