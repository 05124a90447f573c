package fixturepatch

import (
	"fmt"
	"time"

	"sacncore/internal/config"
	"sacncore/internal/enginepool"
	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
	"sacncore/internal/modstatus"
	"sacncore/internal/scheduler"
)

// DMXWriter is the sink Patch writes DMX slot values to (implemented
// by the sACN transmitter).
type DMXWriter interface {
	Set(universe, channel int, value uint8)
}

// Status mirrors §4.8's moduleStatus vocabulary for the Fixture Patch.
type Status = modstatus.Status

const (
	StatusOperational = modstatus.StatusOperational
	StatusDegraded    = modstatus.StatusDegraded
	StatusErrored     = modstatus.StatusErrored
)

// Patch runs the 25ms fixture-patch tick: reconciling the engine pool
// against the Scheduler's final vector, rendering each engine, and
// writing sampled colors to DMX (§4.6).
type Patch struct {
	log        logger.Logger
	store      *config.Store
	scheduler  *scheduler.Scheduler
	pool       *enginepool.Pool
	writer     DMXWriter
	bus        *eventbus.Bus
	universes  int
}

// New builds a Patch. universes bounds the white-out sweep used when
// the device is unassigned to a location.
func New(log logger.Logger, store *config.Store, sched *scheduler.Scheduler, pool *enginepool.Pool, writer DMXWriter, bus *eventbus.Bus, universes int) *Patch {
	return &Patch{log: log, store: store, scheduler: sched, pool: pool, writer: writer, bus: bus, universes: universes}
}

// Tick runs one 25ms pass.
func (p *Patch) Tick() {
	snap := p.store.Current()

	if !snap.AssignedLocation {
		p.whiteOutAll()
		p.publishStatus(StatusOperational)
		return
	}

	final := p.scheduler.Final()

	want := map[int]struct{}{}
	for _, slot := range final {
		if slot.IsGroup() {
			for _, id := range slot.GroupIDs {
				if id > 0 {
					want[id] = struct{}{}
				}
			}
		} else if slot.ShowID > 0 {
			want[slot.ShowID] = struct{}{}
		}
	}
	p.pool.Reconcile(want, snap.Shows)
	p.pool.RunAll()

	zoneGroups := map[int]int{}
	for _, z := range snap.Zones {
		zoneGroups[z.Number] = z.Groups
	}

	fixturesByZoneGroup := map[[2]int][]config.Fixture{}
	fixturesByZone := map[int][]config.Fixture{}
	for _, f := range snap.Fixtures {
		key := [2]int{f.ZoneNumber, f.GroupNumber}
		fixturesByZoneGroup[key] = append(fixturesByZoneGroup[key], f)
		fixturesByZone[f.ZoneNumber] = append(fixturesByZone[f.ZoneNumber], f)
	}

	degraded := false
	for zoneIdx := 0; zoneIdx < 10; zoneIdx++ {
		zoneNumber := zoneIdx + 1
		slot := final[zoneIdx]
		groups := zoneGroups[zoneNumber]

		if slot.IsGroup() && groups > 0 {
			for g := 0; g < groups; g++ {
				showID := 0
				if g < len(slot.GroupIDs) {
					showID = slot.GroupIDs[g]
				}
				fixtures := fixturesByZoneGroup[[2]int{zoneNumber, g + 1}]
				if err := p.renderFixtures(snap, fixtures, showID); err != nil {
					p.warn(zoneNumber, err)
					degraded = true
				}
			}
			continue
		}

		// Scalar addressing: the zone's fixtures are one combined set
		// sharing a single sample across the whole zone (§4.6), not one
		// independently-sampled set per group bucket.
		showID := slot.ShowID
		fixtures := fixturesByZone[zoneNumber]
		if err := p.renderFixtures(snap, fixtures, showID); err != nil {
			p.warn(zoneNumber, err)
			degraded = true
		}
	}

	if degraded {
		p.publishStatus(StatusDegraded)
	} else {
		p.publishStatus(StatusOperational)
	}
}

func (p *Patch) renderFixtures(snap *config.Snapshot, fixtures []config.Fixture, showID int) error {
	var segments []Segment
	for _, f := range fixtures {
		ft, ok := snap.FixtureTypes[f.Type]
		if !ok {
			return fmt.Errorf("fixturepatch: unknown fixture type %q", f.Type)
		}
		segments = append(segments, expand(f, ft)...)
	}
	if len(segments) == 0 {
		return nil
	}

	var engine interface {
		SetFixtureCount(int)
		GetFixtureColor(int) config.Color
	}
	if showID != 0 {
		engine = p.pool.Get(showID)
	}
	if engine != nil {
		engine.SetFixtureCount(len(segments))
	}

	for i, seg := range segments {
		var c config.Color
		if showID != 0 && engine != nil {
			c = engine.GetFixtureColor(i)
		}

		switch seg.ColorMode {
		case config.ColorModeRGB:
			p.writer.Set(seg.Universe, seg.StartAddress, c.R)
			p.writer.Set(seg.Universe, seg.StartAddress+1, c.G)
			p.writer.Set(seg.Universe, seg.StartAddress+2, c.B)
		case config.ColorModeRGBW:
			w := minByte(c.R, c.G, c.B)
			p.writer.Set(seg.Universe, seg.StartAddress, c.R)
			p.writer.Set(seg.Universe, seg.StartAddress+1, c.G)
			p.writer.Set(seg.Universe, seg.StartAddress+2, c.B)
			p.writer.Set(seg.Universe, seg.StartAddress+3, w)
		default:
			return fmt.Errorf("fixturepatch: unknown color mode %q", seg.ColorMode)
		}
	}
	return nil
}

func minByte(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func (p *Patch) whiteOutAll() {
	for u := 1; u <= p.universes; u++ {
		for c := 1; c <= 512; c++ {
			p.writer.Set(u, c, 255)
		}
	}
}

func (p *Patch) warn(zone int, err error) {
	if p.log != nil {
		p.log.With(logger.Fields{"module": "fixturepatch"}).Warnf("zone %d: %v", zone, err)
	}
}

func (p *Patch) publishStatus(status Status) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(eventbus.Event{Topic: eventbus.TopicModuleStatus, Data: modstatus.Event{
		Name:      "fixturepatch",
		Status:    status,
		Timestamp: time.Now(),
	}})
}
