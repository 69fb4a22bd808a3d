package media

import (
	"encoding/json"
	"math/rand"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFixedDelayConsumesNoDraws(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	fresh := rand.New(rand.NewSource(3))

	if got := FixedDelay(4).Sample(rng); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if rng.Float64() != fresh.Float64() {
		t.Error("fixed delay consumed a random draw")
	}
}

func TestNegativeDelayFlooredAtZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := FixedDelay(-3).Sample(rng); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := ChoiceDelay(-5).Sample(rng); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestRangeDelayInclusiveAndOrderAgnostic(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	if got := RangeDelay(2, 2).Sample(rng); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	for i := 0; i < 100; i++ {
		got := RangeDelay(5, 1).Sample(rng)
		if got < 1 || got > 5 {
			t.Fatalf("sample %d outside inclusive range [1,5]", got)
		}
	}
}

func TestEmptyChoicesSampleZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	fresh := rand.New(rand.NewSource(2))
	if got := ChoiceDelay().Sample(rng); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if rng.Float64() != fresh.Float64() {
		t.Error("empty choice set consumed a random draw")
	}
}

func TestDelaySpecYAMLForms(t *testing.T) {
	cases := []struct {
		text   string
		expect DelaySpec
	}{
		{"delay: 2", FixedDelay(2)},
		{"delay: [0, 3]", RangeDelay(0, 3)},
		{"delay: [0, 1, 2, 3]", ChoiceDelay(0, 1, 2, 3)},
		{"delay: {min: 1, max: 4}", RangeDelay(1, 4)},
		{"delay: {choices: [0, 2, 5]}", ChoiceDelay(0, 2, 5)},
		{`delay: "garbage"`, FixedDelay(0)},
	}
	for _, tc := range cases {
		var doc struct {
			Delay DelaySpec `yaml:"delay"`
		}
		if err := yaml.Unmarshal([]byte(tc.text), &doc); err != nil {
			t.Errorf("%q: unexpected error %v", tc.text, err)
			continue
		}
		if doc.Delay.Kind != tc.expect.Kind || doc.Delay.Value != tc.expect.Value ||
			doc.Delay.Lo != tc.expect.Lo || doc.Delay.Hi != tc.expect.Hi ||
			len(doc.Delay.Choices) != len(tc.expect.Choices) {
			t.Errorf("%q: expected %+v, got %+v", tc.text, tc.expect, doc.Delay)
		}
	}
}

func TestDelaySpecJSONForms(t *testing.T) {
	cases := []struct {
		spec   DelaySpec
		expect string
	}{
		{FixedDelay(2), "2"},
		{RangeDelay(0, 3), "[0,3]"},
		{ChoiceDelay(0, 1, 2), "[0,1,2]"},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.spec)
		if err != nil {
			t.Fatalf("marshal %+v: %v", tc.spec, err)
		}
		if string(data) != tc.expect {
			t.Errorf("expected %s, got %s", tc.expect, data)
		}
	}
}
