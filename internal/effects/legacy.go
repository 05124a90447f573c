package effects

import (
	"fmt"
	"math"

	"sacncore/internal/config"
)

var legacyShowTypes = []config.ShowType{
	config.ShowStatic, // 1
	config.ShowAll,    // 2
	config.ShowAll,    // 3
	config.ShowChase,  // 4
	config.ShowChase,  // 5
	config.ShowChase,  // 6
}

var legacyDirections = []config.Direction{
	config.DirectionLR,     // 1
	config.DirectionRL,     // 2
	config.DirectionMidEnd, // 3
	config.DirectionEndMid, // 4
}

var legacySizeTable = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 16, 20, 25, 33, 50, 100}

// legacyTransitionWidth maps the legacy show-type index (1-based) to
// its 2A transitionWidth per §4.4.L. Types 3 and 4 have no defined
// mapping; default to 0 rather than inventing an intermediate value.
func legacyTransitionWidth(legacyType int) float64 {
	switch legacyType {
	case 1:
		return 0
	case 2, 6:
		return 1.0
	case 5:
		return 0.25
	default:
		return 0
	}
}

// TranslateLegacy converts a legacy-schema show into the 2A schema
// (§4.4.L). An error means the show is untranslatable; the caller
// must fall back to DefaultGray() and flag degraded.
func TranslateLegacy(s config.Show) (config.Show, error) {
	if s.LegacyShowType < 1 || s.LegacyShowType > len(legacyShowTypes) {
		return config.Show{}, fmt.Errorf("effects: legacy showType %d out of range", s.LegacyShowType)
	}
	if s.LegacyDirection < 1 || s.LegacyDirection > len(legacyDirections) {
		return config.Show{}, fmt.Errorf("effects: legacy direction %d out of range", s.LegacyDirection)
	}
	if s.LegacySize < 1 || s.LegacySize > len(legacySizeTable) {
		return config.Show{}, fmt.Errorf("effects: legacy size %d out of range", s.LegacySize)
	}

	colors := make([]config.Color, len(s.Colors))
	copy(colors, s.Colors)

	return config.Show{
		ID:              s.ID,
		EngineVersion:   config.EngineVersion2A,
		ShowType:        legacyShowTypes[s.LegacyShowType-1],
		Direction:       legacyDirections[s.LegacyDirection-1],
		Speed:           int(math.Round(float64(s.LegacySpeed)*1.7 + 10)),
		Size:            legacySizeTable[s.LegacySize-1],
		Splits:          1,
		Transition:      config.TransitionBoth,
		TransitionWidth: legacyTransitionWidth(s.LegacyShowType),
		Bounce:          false,
		Colors:          colors,
	}, nil
}

// Resolve returns a ready-to-validate 2A show for s, translating it
// first when it is legacy-schema. On any failure it returns
// DefaultGray() and reports degraded via ok=false.
func Resolve(s config.Show) (show config.Show, ok bool) {
	if s.EngineVersion == config.EngineVersion2A {
		if err := Validate(s); err != nil {
			return DefaultGray(), false
		}
		return s, true
	}

	translated, err := TranslateLegacy(s)
	if err != nil {
		return DefaultGray(), false
	}
	if err := Validate(translated); err != nil {
		return DefaultGray(), false
	}
	return translated, true
}
