package media

import (
	"encoding/json"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// DelayKind discriminates the delay specification variants.
type DelayKind int

const (
	DelayFixed DelayKind = iota
	DelayRange
	DelayChoices
)

// DelaySpec describes how many logical ticks an outlet holds a report before
// delivery: a fixed count, an inclusive integer range, or a discrete choice
// set. Malformed configuration input maps to Fixed(0) rather than failing.
type DelaySpec struct {
	Kind    DelayKind
	Value   int
	Lo, Hi  int
	Choices []int
}

// FixedDelay returns a constant delay specification.
func FixedDelay(n int) DelaySpec {
	return DelaySpec{Kind: DelayFixed, Value: n}
}

// RangeDelay returns a uniform inclusive range specification.
func RangeDelay(lo, hi int) DelaySpec {
	return DelaySpec{Kind: DelayRange, Lo: lo, Hi: hi}
}

// ChoiceDelay returns a uniform pick over a discrete set.
func ChoiceDelay(choices ...int) DelaySpec {
	return DelaySpec{Kind: DelayChoices, Choices: choices}
}

// Sample draws one delay value. Fixed delays and empty choice sets consume no
// randomness; ranges and non-empty choice sets consume exactly one draw.
// Results are floored at zero.
func (d DelaySpec) Sample(rng *rand.Rand) int {
	switch d.Kind {
	case DelayRange:
		lo, hi := d.Lo, d.Hi
		if hi < lo {
			lo, hi = hi, lo
		}
		return clampNonNegative(lo + rng.Intn(hi-lo+1))
	case DelayChoices:
		if len(d.Choices) == 0 {
			return 0
		}
		return clampNonNegative(d.Choices[rng.Intn(len(d.Choices))])
	default:
		return clampNonNegative(d.Value)
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// UnmarshalYAML decodes the accepted configuration forms:
//
//	delay: 2              fixed
//	delay: [0, 3]         inclusive range
//	delay: [0, 1, 2, 3]   discrete choices
//	delay: {min: 1, max: 4}
//	delay: {choices: [0, 2, 5]}
//
// Anything unparseable decodes to Fixed(0); delay specs never abort a run.
func (d *DelaySpec) UnmarshalYAML(value *yaml.Node) error {
	*d = FixedDelay(0)
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err == nil {
			*d = FixedDelay(n)
		}
	case yaml.SequenceNode:
		var vals []int
		if err := value.Decode(&vals); err != nil || len(vals) == 0 {
			return nil
		}
		if len(vals) == 2 {
			*d = RangeDelay(vals[0], vals[1])
		} else {
			*d = ChoiceDelay(vals...)
		}
	case yaml.MappingNode:
		var m struct {
			Choices []int `yaml:"choices"`
			Min     *int  `yaml:"min"`
			Max     *int  `yaml:"max"`
		}
		if err := value.Decode(&m); err != nil {
			return nil
		}
		if len(m.Choices) > 0 {
			*d = ChoiceDelay(m.Choices...)
			return nil
		}
		lo := 0
		if m.Min != nil {
			lo = *m.Min
		}
		hi := lo
		if m.Max != nil {
			hi = *m.Max
		}
		*d = RangeDelay(lo, hi)
	}
	return nil
}

// MarshalJSON renders the spec in its configuration form: a number for fixed
// delays, a two-element array for ranges, and an array for choice sets.
func (d DelaySpec) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DelayRange:
		return json.Marshal([]int{d.Lo, d.Hi})
	case DelayChoices:
		return json.Marshal(d.Choices)
	default:
		return json.Marshal(d.Value)
	}
}
