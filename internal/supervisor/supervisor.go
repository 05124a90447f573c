// Package supervisor aggregates module health, drives the front-panel
// LED, and arms the white-backup failsafe (§4.8).
package supervisor

import (
	"sync"
	"time"

	"sacncore/internal/eventbus"
	"sacncore/internal/led"
	"sacncore/internal/logger"
	"sacncore/internal/modstatus"
)

// LEDColor is one of the single-byte LED panel tokens (§4.8, §6).
type LEDColor byte

const (
	LEDRainbow   LEDColor = 'A' // Network online
	LEDPurple    LEDColor = 'B' // Network offline
	LEDCyan      LEDColor = 'C' // Scheduler/FixturePatch errored -> white backup
	LEDReserved  LEDColor = 'D' // reserved
	LEDSolidRed  LEDColor = 'E' // sACN errored
	LEDBlue      LEDColor = 'F' // degraded
)

// unresponsiveTimeout is the staleness window after which a
// non-one-shot module is marked unresponsive (§4.8).
const unresponsiveTimeout = 10 * time.Second

// stickyWindow is how long a worse status sticks over an incoming
// "operational" for the same module (§4.8).
const stickyWindow = time.Second

// tickPeriod is the Supervisor's evaluation cadence.
const tickPeriod = 2 * time.Second

// WhiteBackupArmer is the sACN transmitter's failsafe control surface.
type WhiteBackupArmer interface {
	SetWhiteBackupMode(bool)
}

type moduleState struct {
	status    modstatus.Status
	data      interface{}
	timestamp time.Time
	oneShot   bool
	worseAt   time.Time // when status last transitioned to errored/degraded
}

// Supervisor subscribes to moduleStatus events and evaluates overall
// system health on a 2s cadence.
type Supervisor struct {
	log   logger.Logger
	bus   *eventbus.Bus
	led   led.Writer
	white WhiteBackupArmer

	mu      sync.Mutex
	modules map[string]*moduleState

	overall modstatus.Status
	unsub   func()
	stop    chan struct{}
}

// New builds a Supervisor.
func New(log logger.Logger, bus *eventbus.Bus, ledWriter led.Writer, white WhiteBackupArmer) *Supervisor {
	return &Supervisor{
		log:     log,
		bus:     bus,
		led:     ledWriter,
		white:   white,
		modules: make(map[string]*moduleState),
		stop:    make(chan struct{}),
	}
}

// Start subscribes to moduleStatus and begins the 2s evaluation loop.
func (s *Supervisor) Start() {
	s.unsub = s.bus.Subscribe(eventbus.TopicModuleStatus, func(e eventbus.Event) {
		ev, ok := e.Data.(modstatus.Event)
		if !ok {
			return
		}
		s.record(ev)
	})

	go func() {
		ticker := time.NewTicker(tickPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.evaluate()
			}
		}
	}()
}

// Stop ends the evaluation loop and status subscription.
func (s *Supervisor) Stop() {
	close(s.stop)
	if s.unsub != nil {
		s.unsub()
	}
}

func (s *Supervisor) record(ev modstatus.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.modules[ev.Name]
	if !ok {
		m = &moduleState{}
		s.modules[ev.Name] = m
	}

	worse := ev.Status == modstatus.StatusErrored || ev.Status == modstatus.StatusDegraded
	// Sticky degradation: an incoming "operational" within stickyWindow
	// of a worse status for the same module is ignored (§4.8).
	if ev.Status == modstatus.StatusOperational && !m.worseAt.IsZero() && ev.Timestamp.Sub(m.worseAt) < stickyWindow {
		return
	}

	m.status = ev.Status
	m.data = ev.Data
	m.timestamp = ev.Timestamp
	m.oneShot = ev.OneShot
	if worse {
		m.worseAt = ev.Timestamp
	}
}

func (s *Supervisor) evaluate() {
	s.mu.Lock()
	now := time.Now()
	for name, m := range s.modules {
		if !m.oneShot && now.Sub(m.timestamp) > unresponsiveTimeout {
			m.status = modstatus.StatusUnresponsive
		}
		_ = name
	}

	status := func(name string) modstatus.Status {
		if m, ok := s.modules[name]; ok {
			return m.status
		}
		return ""
	}

	sacnStatus := status("sacn")
	schedStatus := status("scheduler")
	patchStatus := status("fixturepatch")
	configStatus := status("configmanager")
	supervisorStatus := status("supervisor")
	networkStatus := status("network")

	var color LEDColor
	var overall modstatus.Status
	armWhite := false

	switch {
	case sacnStatus == modstatus.StatusErrored:
		color = LEDSolidRed
		overall = modstatus.StatusErrored

	case schedStatus == modstatus.StatusErrored || patchStatus == modstatus.StatusErrored:
		color = LEDCyan
		overall = modstatus.StatusOperational // "white" is a mode, not a health status name
		armWhite = true

	case schedStatus == modstatus.StatusDegraded || patchStatus == modstatus.StatusDegraded ||
		configStatus == modstatus.StatusErrored || supervisorStatus == modstatus.StatusErrored ||
		networkStatus == modstatus.StatusErrored:
		color = LEDBlue
		overall = modstatus.StatusDegraded

	case networkStatus == modstatus.StatusOnline:
		color = LEDRainbow
		overall = modstatus.StatusOnline

	case networkStatus == modstatus.StatusOffline:
		color = LEDPurple
		overall = modstatus.StatusOffline

	default:
		color = LEDRainbow
		overall = modstatus.StatusOperational
	}
	s.overall = overall
	s.mu.Unlock()

	if s.white != nil {
		s.white.SetWhiteBackupMode(armWhite)
	}
	if s.led != nil {
		if err := s.led.WriteColor(byte(color)); err != nil && s.log != nil {
			s.log.With(logger.Fields{"module": "supervisor"}).Errorf("LED write failed: %v", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Topic: eventbus.TopicSystemStatusUpdate, Data: modstatus.Event{
			Name:      "system",
			Status:    overall,
			Data:      string(color),
			Timestamp: now,
		}})
	}
}

// Overall reports the most recently computed system status.
func (s *Supervisor) Overall() modstatus.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall
}
