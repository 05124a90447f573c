package scheduler

import (
	"sync"
	"time"

	"sacncore/internal/clock"
	"sacncore/internal/config"
	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
	"sacncore/internal/modstatus"
	"sacncore/internal/sensorcache"
)

// Status mirrors the §4.8 moduleStatus vocabulary for the Scheduler
// subsystem itself.
type Status = modstatus.Status

const (
	StatusOperational = modstatus.StatusOperational
	StatusDegraded    = modstatus.StatusDegraded
	StatusErrored     = modstatus.StatusErrored
)

// Scheduler produces the final 10-slot show vector each tick by
// layering weekly, custom, sensor-override and web-override sources
// (§4.3).
type Scheduler struct {
	log   logger.Logger
	clock *clock.Clock
	store *config.Store
	cache *sensorcache.Cache
	bus   *eventbus.Bus

	mu     sync.RWMutex
	final  config.ShowIDVector
	status Status

	timers map[pulseKey]pulseTimer
	stop   chan struct{}
	unsub  func()
}

// New builds a Scheduler. Call Start to begin ticking.
func New(log logger.Logger, clk *clock.Clock, store *config.Store, cache *sensorcache.Cache, bus *eventbus.Bus) *Scheduler {
	return &Scheduler{
		log:    log,
		clock:  clk,
		store:  store,
		cache:  cache,
		bus:    bus,
		timers: make(map[pulseKey]pulseTimer),
		stop:   make(chan struct{}),
	}
}

// Start runs the 1s ticker plus the senseData-triggered extra tick
// (§4.3), until Stop is called.
func (s *Scheduler) Start() {
	s.unsub = s.bus.Subscribe(eventbus.TopicSenseData, func(eventbus.Event) {
		s.Tick()
	})

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop halts the ticker and event subscription.
func (s *Scheduler) Stop() {
	close(s.stop)
	if s.unsub != nil {
		s.unsub()
	}
}

// Tick computes one schedule pass and publishes the resulting status.
// Errors are never thrown across the tick boundary (§7): a failing
// layer resets to transparent and the tick degrades, but always
// completes and emits a final vector.
func (s *Scheduler) Tick() {
	snap := s.store.Current()
	now := s.clock.Now()
	degraded := false

	weekly, err := weeklyLayer(snap, now)
	if err != nil {
		s.warn("weekly layer", err)
		weekly = config.ShowIDVector{}
		degraded = true
	}

	custom := customLayer(snap, now, s.log)

	s.mu.Lock()
	sensorOverride := sensorLayer(snap, s.cache, s.timers, time.Now(), s.log)
	s.mu.Unlock()

	web, err := webLayer(snap, s.log)
	if err != nil {
		s.warn("web layer", err)
		web = config.ShowIDVector{}
		degraded = true
	}

	final := LayerVector(LayerVector(LayerVector(weekly, custom), sensorOverride), web)

	status := StatusOperational
	if degraded {
		status = StatusDegraded
	}

	s.mu.Lock()
	s.final = final
	s.status = status
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Topic: eventbus.TopicModuleStatus, Data: modstatus.Event{
			Name:      "scheduler",
			Status:    status,
			Timestamp: time.Now(),
		}})
	}
}

func (s *Scheduler) warn(layer string, err error) {
	if s.log != nil {
		s.log.With(logger.Fields{"module": "scheduler"}).Warnf("%s failed: %v", layer, err)
	}
}

// Final returns the most recently completed schedule vector (§5
// ordering guarantee: never a partially computed one).
func (s *Scheduler) Final() config.ShowIDVector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.final
}

// CurrentStatus reports the Scheduler's own health.
func (s *Scheduler) CurrentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
