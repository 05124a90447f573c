package scheduler

import (
	"testing"
	"time"

	"sacncore/internal/config"
	"sacncore/internal/sensorcache"
)

func intp(v int) *int { return &v }

func snapWithOverride(id int, showsData string) config.Snapshot {
	snap := config.EmptySnapshot()
	snap.Overrides[id] = config.Override{ID: id, ShowsData: showsData}
	return snap
}

func TestSensorLayerToggleMode(t *testing.T) {
	snap := snapWithOverride(1, `[77,0,0,0,0,0,0,0,0,0]`)
	snap.Sensors = []config.Sensor{
		{ID: 5, Data: [16]config.SensorPort{
			0: {PortNumber: 1, Mode: config.SensorModeToggle, OverrideID: 1},
		}},
	}

	cache := sensorcache.New()
	cache.Update(5, [16]int{1})

	timers := map[pulseKey]pulseTimer{}
	got := sensorLayer(&snap, cache, timers, time.Now(), nil)
	if got[0].ShowID != 77 {
		t.Errorf("expected toggle override applied while asserted, got %+v", got)
	}

	cache.Update(5, [16]int{0})
	got = sensorLayer(&snap, cache, timers, time.Now(), nil)
	if got[0].ShowID != 0 {
		t.Errorf("expected no override once toggle port deasserts, got %+v", got)
	}
}

func TestSensorLayerPulseDecay(t *testing.T) {
	snap := snapWithOverride(1, `[77,0,0,0,0,0,0,0,0,0]`)
	snap.Sensors = []config.Sensor{
		{ID: 5, Data: [16]config.SensorPort{
			0: {PortNumber: 1, Mode: config.SensorModePulse, OverrideID: 1, TimeLength: 3, TimeMode: config.TimeUnitSec},
		}},
	}
	cache := sensorcache.New()
	timers := map[pulseKey]pulseTimer{}

	base := time.Now()

	// t=0: rising edge, starts a 3s timer.
	cache.Update(5, [16]int{1})
	got := sensorLayer(&snap, cache, timers, base, nil)
	if got[0].ShowID != 77 {
		t.Fatalf("expected override on rising edge, got %+v", got)
	}

	// t=1: port deasserts but the timer is still active (1 < 3).
	cache.Update(5, [16]int{0})
	got = sensorLayer(&snap, cache, timers, base.Add(1*time.Second), nil)
	if got[0].ShowID != 77 {
		t.Errorf("expected override to persist mid-decay, got %+v", got)
	}

	// t=2: still active.
	got = sensorLayer(&snap, cache, timers, base.Add(2*time.Second), nil)
	if got[0].ShowID != 77 {
		t.Errorf("expected override still active at t=2, got %+v", got)
	}

	// t=4: timer expired, override gone and timer removed.
	got = sensorLayer(&snap, cache, timers, base.Add(4*time.Second), nil)
	if got[0].ShowID != 0 {
		t.Errorf("expected override expired at t=4, got %+v", got)
	}
	if _, ok := timers[pulseKey{SenseID: 5, PortNumber: 1}]; ok {
		t.Error("expected expired pulse timer to be deleted")
	}
}

func TestSortedPortsPriorityOrder(t *testing.T) {
	sensor := config.Sensor{ID: 1, Data: [16]config.SensorPort{
		0: {PortNumber: 1, Priority: intp(5)},
		1: {PortNumber: 2, Priority: intp(1)},
		2: {PortNumber: 3, Priority: nil},
	}}
	ports := sortedPorts(sensor, [16]int{})
	if ports[0].port.PortNumber != 2 {
		t.Errorf("expected lowest-priority-number port first, got port %d", ports[0].port.PortNumber)
	}
	if ports[1].port.PortNumber != 1 {
		t.Errorf("expected second-lowest priority number second, got port %d", ports[1].port.PortNumber)
	}
	// Ports 3..16 all lack a priority and tie-break by descending index,
	// so port 3 (index 2) lands in the final position.
	if ports[15].port.PortNumber != 3 {
		t.Errorf("expected the unset-priority port to sort last, got port %d", ports[15].port.PortNumber)
	}
}

func TestSortedPortsMissingPriorityTieBreak(t *testing.T) {
	sensor := config.Sensor{ID: 1, Data: [16]config.SensorPort{
		0: {PortNumber: 1},
		1: {PortNumber: 2},
	}}
	ports := sortedPorts(sensor, [16]int{})
	// All 16 ports lack a priority, so the order is index 15..0 and the
	// two configured ports come last.
	if ports[14].originalIdx != 1 || ports[15].originalIdx != 0 {
		t.Errorf("expected descending original index among equal (missing) priorities, got %+v", ports[14:])
	}
}
