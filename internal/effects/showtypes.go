package effects

import (
	"math"

	"sacncore/internal/config"
)

// framesPerBeat implements §4.4's fixed 25ms-frame timing derivation.
func framesPerBeat(speedBPM int) int {
	v := 1000.0 / (float64(speedBPM) / 60.0) / 25.0
	n := int(math.Round(v))
	if n < 1 {
		n = 1
	}
	return n
}

// pixelsPerColor implements §4.4's "Color base" sizing rule.
func pixelsPerColor(s config.Show) int {
	if s.ShowType == config.ShowStatic {
		if len(s.Colors) == 0 {
			return CanvasSize
		}
		return CanvasSize / len(s.Colors)
	}
	return int(math.Ceil(float64(CanvasSize) / (100.0 / float64(s.Size))))
}

// fadesAt reports whether the boundary following color index i (of n
// colors total) includes a fade, per §9's exact predicate for the
// leading/trailing open question.
func fadesAt(transition config.Transition, i, n int) bool {
	switch transition {
	case config.TransitionBoth:
		return true
	case config.TransitionLeading:
		return i%2 == 1 || i == n-1
	case config.TransitionTrailing:
		return i%2 == 0 && i != n-1
	default:
		return false
	}
}

// buildColorBase implements the shared "Color base" segment
// construction used by static/all/chase (§4.4): for each color, a run
// of flat color optionally followed by a fade toward the next color.
func buildColorBase(s config.Show, ppc int) []config.Color {
	n := len(s.Colors)
	fadeLen := int(math.Round(float64(ppc) * s.TransitionWidth))
	if fadeLen > ppc {
		fadeLen = ppc
	}
	staticLen := ppc - fadeLen

	out := make([]config.Color, 0, ppc*n)
	for i := 0; i < n; i++ {
		c := s.Colors[i]
		for k := 0; k < staticLen; k++ {
			out = append(out, c)
		}
		if fadesAt(s.Transition, i, n) && fadeLen > 0 {
			next := s.Colors[(i+1)%n]
			for k := 1; k <= fadeLen; k++ {
				out = append(out, interpolate(c, next, k, fadeLen))
			}
		} else {
			for k := 0; k < fadeLen; k++ {
				out = append(out, c)
			}
		}
	}
	return out
}

// buildPulseBase implements §4.4's pulse base-construction rule: a
// fade-in/static/fade-out pulse per non-base color, separated by runs
// of the base color (colors[0]).
func buildPulseBase(s config.Show, ppc int) []config.Color {
	n := len(s.Colors)
	if n < 2 {
		return buildColorBase(s, ppc)
	}
	baseColor := s.Colors[0]
	fadeLen := int(math.Round(float64(ppc) * s.TransitionWidth))
	if fadeLen > ppc {
		fadeLen = ppc
	}
	staticLen := ppc - fadeLen

	out := make([]config.Color, 0, ppc*n*2)
	for i := 1; i < n; i++ {
		c := s.Colors[i]
		pulseIdx := i - 1
		pulseCount := n - 1
		includeFade := fadesAt(s.Transition, pulseIdx, pulseCount) && fadeLen > 0

		if includeFade {
			for k := 0; k < fadeLen; k++ {
				out = append(out, interpolate(baseColor, c, k, fadeLen))
			}
		}
		for k := 0; k < staticLen; k++ {
			out = append(out, c)
		}
		if includeFade {
			for k := fadeLen; k >= 1; k-- {
				out = append(out, interpolate(baseColor, c, k-1, fadeLen))
			}
		}
		for k := 0; k < CanvasSize; k++ {
			out = append(out, baseColor)
		}
	}
	return out
}

// circulationShift implements §4.4's "Circulation" formula.
func circulationShift(ppc, fpb, frameCounter, beatCounter int) int {
	if fpb == 0 {
		fpb = 1
	}
	v := float64(ppc)/float64(fpb)*float64(frameCounter) + float64(ppc)*float64(beatCounter-1)
	return int(math.Round(v))
}
