package scheduler

import (
	"reflect"
	"testing"

	"sacncore/internal/clock"
	"sacncore/internal/config"
)

// composeLayers layers the weekly and custom layers in Scheduler.Tick's
// order without going through wall-clock time, so the concrete
// end-to-end scenarios can pin an exact `now`. Sensor and web layers
// are not included; tests that need them layer them on explicitly.
func composeLayers(snap *config.Snapshot, now clock.Now) config.ShowIDVector {
	weekly, _ := weeklyLayer(snap, now)
	custom := customLayer(snap, now, nil)
	return LayerVector(weekly, custom)
}

func TestScenarioEmptyConfig(t *testing.T) {
	snap := config.EmptySnapshot()
	got := composeLayers(&snap, clock.Now{Weekday: 3, Hour: 12})
	if !reflect.DeepEqual(got, config.ShowIDVector{}) {
		t.Errorf("expected all-zero vector for empty config, got %+v", got)
	}
}

func TestScenarioWeeklyOnly(t *testing.T) {
	var data config.ShowIDVector
	data[0] = config.ShowSlot{ShowID: 10}
	data[1] = config.ShowSlot{ShowID: 20}

	snap := config.EmptySnapshot()
	snap.ScheduleBlocks = []config.ScheduleBlock{
		{Day: 3, Start: 13, Height: 2, EventBlockID: 7}, // now.hr+1 = 13, so now.hr = 12
	}
	snap.EventBlocks = map[int]config.EventBlock{7: {ID: 7, ShowData: data}}

	got := composeLayers(&snap, clock.Now{Weekday: 3, Hour: 12})
	if got[0].ShowID != 10 || got[1].ShowID != 20 {
		t.Errorf("expected [10,20,0...], got %+v", got)
	}
}

func TestScenarioWebOverWeekly(t *testing.T) {
	var weeklyData config.ShowIDVector
	weeklyData[0] = config.ShowSlot{ShowID: 10}
	weeklyData[1] = config.ShowSlot{ShowID: 20}

	snap := config.EmptySnapshot()
	snap.ScheduleBlocks = []config.ScheduleBlock{
		{Day: 3, Start: 13, Height: 2, EventBlockID: 7},
	}
	snap.EventBlocks = map[int]config.EventBlock{7: {ID: 7, ShowData: weeklyData}}
	snap.Overrides[1] = config.Override{ID: 1, ShowsData: `[0,99,0,0,0,0,0,0,0,0]`}
	snap.WebOverrides = []config.WebOverride{{ID: 1, Active: true, OverrideID: 1}}

	weekly := composeLayers(&snap, clock.Now{Weekday: 3, Hour: 12})
	web, err := webLayer(&snap, nil)
	if err != nil {
		t.Fatalf("webLayer: %v", err)
	}
	got := LayerVector(weekly, web)

	if got[0].ShowID != 10 || got[1].ShowID != 99 {
		t.Errorf("expected [10,99,0...], got %+v", got)
	}
}

func TestScenarioGroups(t *testing.T) {
	var weeklyData, customData config.ShowIDVector
	weeklyData[0] = config.ShowSlot{GroupIDs: []int{5, 0, 7}}
	customData[0] = config.ShowSlot{GroupIDs: []int{0, 6, 0}}

	snap := config.EmptySnapshot()
	snap.ScheduleBlocks = []config.ScheduleBlock{
		{Day: 3, Start: 13, Height: 2, EventBlockID: 7},
	}
	snap.EventBlocks = map[int]config.EventBlock{7: {ID: 7, ShowData: weeklyData}}
	snap.CustomBlocks = []config.CustomBlock{
		block("groups", 1, 1, 12, 31, 0, 0, 23, 59, customData),
	}

	got := composeLayers(&snap, clock.Now{Month: 6, Day: 1, Weekday: 3, Hour: 12})
	want := []int{5, 6, 7}
	if got[0].GroupIDs == nil {
		t.Fatalf("expected slot 0 to carry group ids, got %+v", got[0])
	}
	for i, v := range want {
		if got[0].GroupIDs[i] != v {
			t.Errorf("group slot %d = %d, want %d (full: %+v)", i, got[0].GroupIDs[i], v, got[0].GroupIDs)
		}
	}
}

func TestInvariantFinalVectorHasTenSlots(t *testing.T) {
	var v config.ShowIDVector
	if len(v) != 10 {
		t.Fatalf("ShowIDVector must have 10 slots, has %d", len(v))
	}
}

func TestInvariantLayerIdentity(t *testing.T) {
	var base config.ShowIDVector
	base[3] = config.ShowSlot{ShowID: 11}
	base[7] = config.ShowSlot{GroupIDs: []int{1, 2}}

	got := LayerVector(base, config.ShowIDVector{})
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(got[i], base[i]) {
			t.Errorf("layer(b, zero) must equal b at slot %d: got %+v want %+v", i, got[i], base[i])
		}
	}
}
