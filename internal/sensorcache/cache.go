// Package sensorcache holds the most-recently-seen port state for
// every Attitude Sense sensor and ingests it from UDP (§4.2).
package sensorcache

import "sync"

// Cache is the single-writer, many-reader store of per-sensor port
// state. The UDP listener is the only writer; the Scheduler is the
// reader.
type Cache struct {
	mu    sync.RWMutex
	ports map[int][16]int
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{ports: make(map[int][16]int)}
}

// Update replaces the cached state for sensor id wholly (§3 invariant:
// exactly one record per id, updates replace wholly).
func (c *Cache) Update(id int, data [16]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ports[id] = data
}

// GetPortDataByID returns the cached 16-vector for id, or a 16-zero
// vector when id has never been seen.
func (c *Cache) GetPortDataByID(id int) [16]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ports[id]
}
