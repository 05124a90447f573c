package scheduler

import (
	"sort"
	"time"

	"sacncore/internal/config"
	"sacncore/internal/logger"
	"sacncore/internal/sensorcache"
)

// pulseKey identifies one sensor port's pulse timer.
type pulseKey struct {
	SenseID    int
	PortNumber int
}

// pulseTimer tracks how long a pulse-mode port's override stays active
// past its last assertion (§3 PulseTimer).
type pulseTimer struct {
	activeUntil time.Time
}

func timeUnit(mode config.SensorTimeUnit) time.Duration {
	switch mode {
	case config.TimeUnitSec:
		return time.Second
	case config.TimeUnitMin:
		return time.Minute
	case config.TimeUnitHour:
		return time.Hour
	default:
		return 0
	}
}

// sensorPort pairs a configured port with its live asserted state and
// sort keys.
type sensorPort struct {
	sensorID     int
	originalIdx  int
	port         config.SensorPort
	asserted     bool
}

func sortedPorts(sensor config.Sensor, state [16]int) []sensorPort {
	ports := make([]sensorPort, 16)
	for i := 0; i < 16; i++ {
		ports[i] = sensorPort{
			sensorID:    sensor.ID,
			originalIdx: i,
			port:        sensor.Data[i],
			asserted:    state[i] != 0,
		}
	}

	sort.SliceStable(ports, func(i, j int) bool {
		pi, pj := ports[i].port.Priority, ports[j].port.Priority
		var vi, vj int
		hasI, hasJ := pi != nil, pj != nil
		if hasI {
			vi = *pi
		}
		if hasJ {
			vj = *pj
		}
		switch {
		case hasI && hasJ:
			if vi != vj {
				return vi < vj
			}
		case hasI != hasJ:
			// Missing priority sorts as +Inf: present priority wins.
			return hasI
		}
		// Tie: descending original index (lower port number wins ties).
		return ports[i].originalIdx > ports[j].originalIdx
	})
	return ports
}

// sensorLayer evaluates every configured Sensor's ports in priority
// order, composing toggle/pulse overrides onto the running vector and
// maintaining timers in place (§4.3 "Sensor-override layer").
func sensorLayer(
	snap *config.Snapshot,
	cache *sensorcache.Cache,
	timers map[pulseKey]pulseTimer,
	now time.Time,
	log logger.Logger,
) config.ShowIDVector {
	var out config.ShowIDVector

	for _, sensor := range snap.Sensors {
		state := cache.GetPortDataByID(sensor.ID)
		ports := sortedPorts(sensor, state)

		for _, p := range ports {
			portNumber := p.originalIdx + 1
			if p.port.OverrideID <= 0 {
				continue
			}

			key := pulseKey{SenseID: p.sensorID, PortNumber: portNumber}

			switch p.port.Mode {
			case config.SensorModeToggle:
				if p.asserted {
					out = applyOverride(out, snap, p.port.OverrideID, log)
				}

			case config.SensorModePulse:
				unit := timeUnit(p.port.TimeMode)
				if p.asserted && unit > 0 && p.port.TimeLength > 0 {
					timers[key] = pulseTimer{
						activeUntil: now.Add(time.Duration(p.port.TimeLength) * unit),
					}
				}
				if t, ok := timers[key]; ok {
					if now.Before(t.activeUntil) {
						out = applyOverride(out, snap, p.port.OverrideID, log)
					} else {
						delete(timers, key)
					}
				}
			}
		}
	}

	return out
}

func applyOverride(running config.ShowIDVector, snap *config.Snapshot, overrideID int, log logger.Logger) config.ShowIDVector {
	ov, ok := snap.Overrides[overrideID]
	if !ok {
		if log != nil {
			log.With(logger.Fields{"module": "scheduler"}).Warnf("unknown override id %d", overrideID)
		}
		return running
	}
	vec, err := ParseShowIDVector(ov.ShowsData)
	if err != nil {
		if log != nil {
			log.With(logger.Fields{"module": "scheduler"}).Warnf("override %d: %v", overrideID, err)
		}
		return running
	}
	return LayerVector(running, vec)
}
