package strategy

import (
	"math/rand"
	"strings"
)

// Factory builds a fresh strategy instance for one repetition. Factories
// receive the run's shared randomness source; most ignore it.
type Factory func(rng *rand.Rand) Strategy

// Definition describes one registered strategy.
type Definition struct {
	Name        string
	Description string
	New         Factory
}

// Info is the catalog entry exposed to the CLI and web API.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var registry = []Definition{
	{"AlwaysCooperate", "Cooperates every round.", func(*rand.Rand) Strategy { return &AlwaysCooperate{} }},
	{"AlwaysDefect", "Defects every round.", func(*rand.Rand) Strategy { return &AlwaysDefect{} }},
	{"TitForTat", "Cooperates first, then mirrors the opponent's last move.", func(*rand.Rand) Strategy { return &TitForTat{} }},
	{"GrimTrigger", "Cooperates until the first observed defection, then defects forever.", func(*rand.Rand) Strategy { return &GrimTrigger{} }},
	{"WinStayLoseShift", "Repeats its last move after CC or DD, switches otherwise.", func(*rand.Rand) Strategy { return &WinStayLoseShift{} }},
	{"Random", "Flips a fair coin every round.", func(rng *rand.Rand) Strategy { return NewRandom(rng) }},
	{"Prober", "Probes with D,C,C; mirrors retaliators, exploits pushovers.", func(*rand.Rand) Strategy { return &Prober{} }},
	{"SoftGrudger", "Answers a defection with two rounds of punishment, then forgives.", func(*rand.Rand) Strategy { return &SoftGrudger{} }},
	{"Responsive", "Cooperates while the opponent has cooperated at least as often as defected.", func(*rand.Rand) Strategy { return &Responsive{} }},
	{"Grudger", "Never forgives: one defection and it defects for the rest of the match.", func(*rand.Rand) Strategy { return &Grudger{} }},
	{"MediaSentinel", "Tit-for-tat that opens cautiously when outlets report frequent defections.", func(*rand.Rand) Strategy { return NewMediaSentinel() }},
	{"MediaTrendFollower", "Win-stay/lose-shift with openings copied from the best reported strategy.", func(*rand.Rand) Strategy { return NewMediaTrendFollower() }},
	{"MediaWatchdog", "Grim when the outlets prove reliable, forgiving when they spread rumors.", func(*rand.Rand) Strategy { return NewMediaWatchdog() }},
}

// All returns catalog metadata for every registered strategy, in stable
// registry order.
func All() []Info {
	infos := make([]Info, 0, len(registry))
	for _, def := range registry {
		infos = append(infos, Info{Name: def.Name, Description: def.Description})
	}
	return infos
}

// Canon normalizes a strategy name for comparisons: lowercase with spaces,
// hyphens and underscores stripped.
func Canon(name string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// aliases maps accepted alternate spellings, in canonical form, to the
// registered canonical name. "RandomStrategy" is the historical name of the
// Random strategy and still appears in old run configurations.
var aliases = map[string]string{
	"randomstrategy": "random",
}

func canonKey(name string) string {
	key := Canon(name)
	if target, ok := aliases[key]; ok {
		return target
	}
	return key
}

// Resolve selects strategy definitions using optional include and exclude
// lists matched by canonical name. A nil include list selects everything not
// excluded. Registry order is preserved.
func Resolve(only, exclude []string) []Definition {
	var onlySet map[string]struct{}
	if len(only) > 0 {
		onlySet = make(map[string]struct{}, len(only))
		for _, name := range only {
			onlySet[canonKey(name)] = struct{}{}
		}
	}
	excludeSet := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excludeSet[canonKey(name)] = struct{}{}
	}

	var selected []Definition
	for _, def := range registry {
		canon := Canon(def.Name)
		if onlySet != nil {
			if _, ok := onlySet[canon]; !ok {
				continue
			}
		}
		if _, ok := excludeSet[canon]; ok {
			continue
		}
		selected = append(selected, def)
	}
	return selected
}
