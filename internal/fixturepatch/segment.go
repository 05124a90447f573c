// Package fixturepatch expands configured fixtures into DMX segments,
// samples the effects engines, and writes DMX slot values (§4.6).
package fixturepatch

import (
	"sacncore/internal/config"
)

// Segment is one renderable unit of a patched fixture (§3 "DMX segment").
type Segment struct {
	Universe     int
	StartAddress int
	ColorMode    config.ColorMode
}

// expand turns one Fixture into its DMX segments per §4.6's expansion
// rules.
func expand(f config.Fixture, ft config.FixtureType) []Segment {
	channelStep := ft.Channels
	if ft.Segments > 0 {
		channelStep = ft.Channels / ft.Segments
	}
	if channelStep <= 0 {
		channelStep = ft.Channels
	}

	var count int
	switch {
	case ft.MultiCountOneFixture:
		count = f.Quantity
	case ft.Segments > 1:
		count = ft.Segments
	default:
		count = 1
	}
	if count < 1 {
		count = 1
	}

	segments := make([]Segment, count)
	for i := 0; i < count; i++ {
		segments[i] = Segment{
			Universe:     f.Universe,
			StartAddress: f.StartAddress + i*channelStep,
			ColorMode:    ft.Color,
		}
	}
	return segments
}
