package fixturepatch

import (
	"testing"

	"sacncore/internal/config"
)

func TestExpandSingleSegmentFixture(t *testing.T) {
	f := config.Fixture{Universe: 1, StartAddress: 1, Quantity: 1}
	ft := config.FixtureType{Channels: 3, Segments: 1, Color: config.ColorModeRGB}

	segs := expand(f, ft)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].StartAddress != 1 || segs[0].ColorMode != config.ColorModeRGB {
		t.Errorf("unexpected segment: %+v", segs[0])
	}
}

func TestExpandMultiSegmentFixture(t *testing.T) {
	f := config.Fixture{Universe: 1, StartAddress: 1}
	ft := config.FixtureType{Channels: 12, Segments: 4, Color: config.ColorModeRGB}

	segs := expand(f, ft)
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segs))
	}
	for i, s := range segs {
		want := 1 + i*3
		if s.StartAddress != want {
			t.Errorf("segment %d StartAddress = %d, want %d", i, s.StartAddress, want)
		}
	}
}

func TestExpandMultiCountOneFixture(t *testing.T) {
	f := config.Fixture{Universe: 1, StartAddress: 1, Quantity: 3}
	ft := config.FixtureType{Channels: 3, Segments: 1, Color: config.ColorModeRGB, MultiCountOneFixture: true}

	segs := expand(f, ft)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments (one per quantity), got %d", len(segs))
	}
	for i, s := range segs {
		want := 1 + i*3
		if s.StartAddress != want {
			t.Errorf("segment %d StartAddress = %d, want %d", i, s.StartAddress, want)
		}
	}
}

func TestExpandRGBWFixture(t *testing.T) {
	f := config.Fixture{Universe: 2, StartAddress: 10, Quantity: 1}
	ft := config.FixtureType{Channels: 4, Segments: 1, Color: config.ColorModeRGBW}

	segs := expand(f, ft)
	if len(segs) != 1 || segs[0].ColorMode != config.ColorModeRGBW {
		t.Errorf("unexpected RGBW segment: %+v", segs)
	}
}
