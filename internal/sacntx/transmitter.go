// Package sacntx transmits DMX universes over sACN (ANSI E1.31) at a
// fixed cadence, with a white-backup failsafe (§4.7).
package sacntx

import (
	"fmt"
	"sync"
	"time"

	"github.com/Hundemeier/go-sacn/sacn"

	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
	"sacncore/internal/modstatus"
	"sacncore/internal/netutil"
)

// sendPeriod is the fixed sACN transmit cadence (§4.7).
const sendPeriod = 24 * time.Millisecond

// sourceName is the E1.31 source name every packet carries (§4.7, §6).
const sourceName = "Attitude sACN Client"

// Transmitter holds one 512-slot buffer per universe and sends all of
// them, unconditionally, on every tick.
type Transmitter struct {
	log logger.Logger
	bus *eventbus.Bus

	trans sacn.Transmitter
	chans map[int]chan<- []byte

	mu          sync.Mutex
	buffers     map[int]*[512]byte
	whiteBackup bool

	stop chan struct{}
}

// New creates a Transmitter bound to the interface inside bindCIDR,
// with universes 1..universeCount pre-activated.
func New(log logger.Logger, bus *eventbus.Bus, bindCIDR string, universeCount int) (*Transmitter, error) {
	bindIP, err := netutil.FindInterfaceIP(bindCIDR)
	if err != nil {
		return nil, fmt.Errorf("sacntx: failed to find bind address: %w", err)
	}
	bindAddr := ""
	if bindIP != nil {
		bindAddr = bindIP.String()
	}

	var cid [16]byte
	copy(cid[:], sourceName)

	trans, err := sacn.NewTransmitter(bindAddr, cid, sourceName)
	if err != nil {
		return nil, fmt.Errorf("sacntx: failed to create transmitter: %w", err)
	}

	t := &Transmitter{
		log:     log,
		bus:     bus,
		trans:   trans,
		chans:   make(map[int]chan<- []byte),
		buffers: make(map[int]*[512]byte),
		stop:    make(chan struct{}),
	}

	for u := 1; u <= universeCount; u++ {
		ch, err := trans.Activate(uint16(u))
		if err != nil {
			return nil, fmt.Errorf("sacntx: failed to activate universe %d: %w", u, err)
		}
		t.chans[u] = ch
		t.buffers[u] = &[512]byte{}
	}

	return t, nil
}

// Set writes slot c of universe u after bounds-checking; out-of-range
// calls are silently dropped (§4.7).
func (t *Transmitter) Set(u, c int, v uint8) {
	if u < 1 || c < 1 || c > 512 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.buffers[u]
	if !ok {
		return
	}
	buf[c-1] = v
}

// SetWhiteBackupMode arms or disarms the safe-mode failsafe: while
// armed, every slot of every universe is forced to 255 before send
// (§4.7).
func (t *Transmitter) SetWhiteBackupMode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.whiteBackup = enabled
}

// Start begins the 24ms unconditional-send ticker.
func (t *Transmitter) Start() {
	go func() {
		ticker := time.NewTicker(sendPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.sendAll()
			}
		}
	}()
}

// Stop halts the send ticker and deactivates every universe.
func (t *Transmitter) Stop() {
	close(t.stop)
	for _, ch := range t.chans {
		close(ch)
	}
}

func (t *Transmitter) sendAll() {
	t.mu.Lock()
	whiteBackup := t.whiteBackup
	snapshot := make(map[int][512]byte, len(t.buffers))
	for u, buf := range t.buffers {
		var out [512]byte
		if whiteBackup {
			for i := range out {
				out[i] = 255
			}
		} else {
			out = *buf
		}
		snapshot[u] = out
	}
	t.mu.Unlock()

	for u, data := range snapshot {
		ch, ok := t.chans[u]
		if !ok {
			continue
		}
		select {
		case ch <- data[:]:
		default:
			// Transmitter is backed up; drop this frame rather than
			// block the send loop, and report the fault.
			t.reportError(fmt.Errorf("sacntx: universe %d send channel full", u))
		}
	}
}

func (t *Transmitter) reportError(err error) {
	if t.log != nil {
		t.log.With(logger.Fields{"module": "sacntx"}).Errorf("%v", err)
	}
	if t.bus != nil {
		t.bus.Publish(eventbus.Event{Topic: eventbus.TopicModuleStatus, Data: modstatus.Event{
			Name:      "sacn",
			Status:    modstatus.StatusErrored,
			Data:      err.Error(),
			Timestamp: time.Now(),
		}})
	}
}
