package media

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutletConfig is one outlet record in a media configuration.
type OutletConfig struct {
	Name            string    `yaml:"name" json:"name"`
	Coverage        float64   `yaml:"coverage" json:"coverage"`
	Accuracy        float64   `yaml:"accuracy" json:"accuracy"`
	Delay           DelaySpec `yaml:"delay" json:"delay"`
	AvoidDuplicates bool      `yaml:"avoid_duplicates" json:"avoid_duplicates"`
}

// UnmarshalYAML applies the documented defaults (full coverage, full
// accuracy, no delay, duplicate avoidance on) before decoding the record.
func (c *OutletConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain OutletConfig
	tmp := plain{Coverage: 1.0, Accuracy: 1.0, AvoidDuplicates: true}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*c = OutletConfig(tmp)
	return nil
}

// SubscriptionsConfig controls which outlets each strategy may receive.
type SubscriptionsConfig struct {
	// Limit caps how many outlets any one strategy resolves to. A nil limit
	// means unbounded; an explicit zero disables broadcast entirely.
	Limit       *int                `yaml:"limit" json:"limit"`
	Defaults    map[string][]string `yaml:"defaults" json:"defaults,omitempty"`
	Enrollments map[string][]string `yaml:"enrollments" json:"enrollments,omitempty"`
}

// Config is a full media network configuration.
type Config struct {
	Outlets       []OutletConfig       `yaml:"outlets" json:"outlets"`
	Subscriptions *SubscriptionsConfig `yaml:"subscriptions" json:"subscriptions,omitempty"`
}

func intPtr(n int) *int { return &n }

// Presets reusable across the CLI and the web server.
var presets = map[string]func() *Config{
	"none": func() *Config {
		return &Config{
			Outlets:       nil,
			Subscriptions: &SubscriptionsConfig{Limit: intPtr(0)},
		}
	},
	"basic": func() *Config {
		return &Config{
			Outlets: []OutletConfig{
				{Name: "GlobalTruth", Coverage: 0.85, Accuracy: 0.98, Delay: RangeDelay(0, 1), AvoidDuplicates: true},
				{Name: "AxelrodTimes", Coverage: 0.65, Accuracy: 0.9, Delay: ChoiceDelay(0, 1, 2), AvoidDuplicates: true},
				{Name: "RumorMill", Coverage: 0.5, Accuracy: 0.55, Delay: ChoiceDelay(0, 1, 2, 3), AvoidDuplicates: true},
			},
			Subscriptions: &SubscriptionsConfig{Limit: intPtr(2)},
		}
	},
}

// DefaultPreset names the preset used when a caller asks for media without
// specifying which.
const DefaultPreset = "basic"

// Preset returns a fresh copy of a named preset configuration.
func Preset(name string) (*Config, bool) {
	build, ok := presets[name]
	if !ok {
		build, ok = presets[strings.ToLower(name)]
	}
	if !ok {
		return nil, false
	}
	return build(), true
}

// PresetNames lists the available preset names.
func PresetNames() []string {
	return []string{"none", "basic"}
}

// ResolveConfig normalizes a media specification: a preset name, or a
// YAML/JSON object describing outlets and subscriptions. An empty
// specification resolves to nil (media disabled). Anything else that does
// not decode to an object is a configuration error.
func ResolveConfig(spec string) (*Config, error) {
	value := strings.TrimSpace(spec)
	if value == "" {
		return nil, nil
	}
	if cfg, ok := Preset(value); ok {
		return cfg, nil
	}
	var probe yaml.Node
	if err := yaml.Unmarshal([]byte(value), &probe); err != nil {
		return nil, fmt.Errorf("invalid media configuration: %w", err)
	}
	if len(probe.Content) == 0 || probe.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("media configuration %q is neither a known preset nor an object", value)
	}
	var cfg Config
	if err := probe.Content[0].Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid media configuration: %w", err)
	}
	return &cfg, nil
}
