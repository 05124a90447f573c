// Package enginepool reconciles the set of live effects.Engine
// instances against the show ids appearing in the current schedule
// (§4.5).
package enginepool

import (
	"sacncore/internal/config"
	"sacncore/internal/effects"
	"sacncore/internal/logger"
)

// Pool owns one Engine per distinct active show id.
type Pool struct {
	log     logger.Logger
	engines map[int]*effects.Engine
	nonce   int64
}

// New creates an empty Pool. nonceSeed seeds the per-engine random
// direction permutations deterministically (distinct per show id, but
// stable for the process lifetime).
func New(log logger.Logger, nonceSeed int64) *Pool {
	return &Pool{
		log:     log,
		engines: make(map[int]*effects.Engine),
		nonce:   nonceSeed,
	}
}

// Reconcile ensures an Engine exists for every id in want and removes
// any engine whose id is not in want (§4.5). shows supplies the
// configuration for each id; an id missing from shows falls back to
// the default gray engine. Must run before any GetFixtureColor call in
// the same tick (§5 ordering guarantee).
func (p *Pool) Reconcile(want map[int]struct{}, shows map[int]config.Show) {
	for id := range p.engines {
		if _, ok := want[id]; !ok {
			delete(p.engines, id)
		}
	}

	for id := range want {
		if id == 0 {
			continue // 0 means "none"; never pooled.
		}
		if _, ok := p.engines[id]; ok {
			continue
		}
		show, ok := shows[id]
		if !ok {
			show = effects.DefaultGray()
			show.ID = id
		}
		engine, degraded := effects.New(show, p.nonce+int64(id))
		if degraded && p.log != nil {
			p.log.With(logger.Fields{"module": "enginepool"}).Warnf(
				"show %d could not be resolved, using default gray", id)
		}
		p.engines[id] = engine
	}
}

// Get returns the engine for id, or nil if id is not currently pooled.
func (p *Pool) Get(id int) *effects.Engine {
	return p.engines[id]
}

// RunAll advances every pooled engine by one frame.
func (p *Pool) RunAll() {
	for _, e := range p.engines {
		e.Run()
	}
}

// Len reports the number of live engines (test/diagnostic helper).
func (p *Pool) Len() int {
	return len(p.engines)
}
