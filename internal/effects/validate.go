package effects

import (
	"fmt"

	"sacncore/internal/config"
)

// Validate checks a 2A show configuration against the domain table in
// spec §4.4. It does not mutate s.
func Validate(s config.Show) error {
	switch s.ShowType {
	case config.ShowStatic, config.ShowAll, config.ShowChase, config.ShowPulse:
	default:
		return fmt.Errorf("effects: invalid showType %q", s.ShowType)
	}
	switch s.Direction {
	case config.DirectionLR, config.DirectionRL, config.DirectionMidEnd, config.DirectionEndMid, config.DirectionRandom:
	default:
		return fmt.Errorf("effects: invalid direction %q", s.Direction)
	}
	if s.Speed < 10 || s.Speed > 180 {
		return fmt.Errorf("effects: speed %d out of range 10..180", s.Speed)
	}
	if s.Size < 1 || s.Size > 200 {
		return fmt.Errorf("effects: size %d out of range 1..200", s.Size)
	}
	if s.Splits < 1 || s.Splits > 10 {
		return fmt.Errorf("effects: splits %d out of range 1..10", s.Splits)
	}
	switch s.Transition {
	case config.TransitionBoth, config.TransitionLeading, config.TransitionTrailing:
	default:
		return fmt.Errorf("effects: invalid transition %q", s.Transition)
	}
	if s.TransitionWidth < 0.0 || s.TransitionWidth > 1.0 {
		return fmt.Errorf("effects: transitionWidth %f out of range 0.0..1.0", s.TransitionWidth)
	}
	if len(s.Colors) < 1 || len(s.Colors) > 25 {
		return fmt.Errorf("effects: colors length %d out of range 1..25", len(s.Colors))
	}
	return nil
}

// DefaultGray is the fallback configuration used for untranslatable
// legacy shows and for engine-pool entries with no known 2A show
// (§4.4, §4.5).
func DefaultGray() config.Show {
	return config.Show{
		EngineVersion:   config.EngineVersion2A,
		ShowType:        config.ShowStatic,
		Direction:       config.DirectionLR,
		Speed:           60,
		Size:            100,
		Splits:          1,
		Transition:      config.TransitionBoth,
		TransitionWidth: 0,
		Bounce:          false,
		Colors:          []config.Color{{R: 128, G: 128, B: 128}},
	}
}
