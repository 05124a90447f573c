package effects

import (
	"math"
	"math/rand"

	"sacncore/internal/config"
)

// CanvasSize is the virtual pixel canvas width every engine renders
// onto (§4.4).
const CanvasSize = 5000

func interpolate(c1, c2 config.Color, k, steps int) config.Color {
	if steps <= 0 {
		return c2
	}
	f := func(a, b uint8) uint8 {
		v := float64(b)/float64(steps)*float64(k) + float64(a)/float64(steps)*float64(steps-k)
		return uint8(math.Round(v))
	}
	return config.Color{R: f(c1.R, c2.R), G: f(c1.G, c2.G), B: f(c1.B, c2.B)}
}

// resize maps src onto a new slice of length n by nearest-preceding
// stride sampling, serving both the "expand" and "trim" cases of
// §4.4's expand/trim-to-5000 step with one implementation.
func resize(src []config.Color, n int) []config.Color {
	if len(src) == 0 {
		return make([]config.Color, n)
	}
	out := make([]config.Color, n)
	for i := 0; i < n; i++ {
		srcIdx := i * len(src) / n
		if srcIdx >= len(src) {
			srcIdx = len(src) - 1
		}
		out[i] = src[srcIdx]
	}
	return out
}

func reverse(src []config.Color) []config.Color {
	out := make([]config.Color, len(src))
	for i, c := range src {
		out[len(src)-1-i] = c
	}
	return out
}

// rotateRight shifts every pixel shift positions to the right
// (circularly): the pixel that lands at index i came from
// src[(i-shift) mod len(src)].
func rotateRight(src []config.Color, shift int) []config.Color {
	n := len(src)
	if n == 0 {
		return src
	}
	shift = ((shift % n) + n) % n
	out := make([]config.Color, n)
	for i := 0; i < n; i++ {
		srcIdx := ((i-shift)%n + n) % n
		out[i] = src[srcIdx]
	}
	return out
}

// sampleEveryOther returns pixels at even indices 0,2,4,...
func sampleEveryOther(src []config.Color) []config.Color {
	out := make([]config.Color, 0, (len(src)+1)/2)
	for i := 0; i < len(src); i += 2 {
		out = append(out, src[i])
	}
	return out
}

// applyDirection implements §4.4's direction transform over a
// CanvasSize-length pixel array.
func applyDirection(src []config.Color, dir config.Direction, perm []int) []config.Color {
	switch dir {
	case config.DirectionLR:
		return src
	case config.DirectionRL:
		return reverse(src)
	case config.DirectionMidEnd:
		sample := sampleEveryOther(src)
		return resize(append(reverse(sample), sample...), len(src))
	case config.DirectionEndMid:
		sample := sampleEveryOther(src)
		return resize(append(sample, reverse(sample)...), len(src))
	case config.DirectionRandom:
		out := make([]config.Color, len(src))
		for i := range src {
			out[i] = src[perm[i%len(perm)]%len(src)]
		}
		return out
	default:
		return src
	}
}

// newPermutation builds a stable Fisher-Yates permutation of [0,n) off
// a per-engine nonce, so "random" direction output is deterministic
// for the engine's lifetime (§4.4, §9).
func newPermutation(n int, nonce int64) []int {
	r := rand.New(rand.NewSource(nonce))
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// applySplits samples src every len(src)/splits pixels and broadcasts
// each sample across its split width (§4.4 "Splits").
func applySplits(src []config.Color, splits int) []config.Color {
	if splits <= 1 {
		splits = 1
	}
	n := len(src)
	step := n / splits
	if step <= 0 {
		step = 1
	}
	out := make([]config.Color, n)
	for s := 0; s < splits; s++ {
		start := s * step
		end := start + step
		if s == splits-1 || end > n {
			end = n
		}
		if start >= n {
			break
		}
		sample := src[start]
		for i := start; i < end; i++ {
			out[i] = sample
		}
	}
	return out
}
