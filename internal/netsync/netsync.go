// Package netsync polls the cloud configuration endpoint for snapshot
// updates and opportunistically opens a websocket for a live telemetry
// push subchannel. The cloud side itself is out of scope; this
// package only owns the poll/swap contract the core consumes.
package netsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sacncore/internal/config"
	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
	"sacncore/internal/modstatus"
)

// pollPeriod is the config-sync cadence (§5 table).
const pollPeriod = time.Second

// Conf configures the poller.
type Conf struct {
	Endpoint     string
	WebsocketURL string
}

// Poller fetches config.Snapshot updates from the cloud endpoint on a
// fixed cadence and swaps them into the Store.
type Poller struct {
	log   logger.Logger
	cfg   Conf
	store *config.Store
	bus   *eventbus.Bus

	client *http.Client
	ws     *websocket.Conn

	stop chan struct{}
}

// New builds a Poller. Call Start to begin polling.
func New(log logger.Logger, cfg Conf, store *config.Store, bus *eventbus.Bus) *Poller {
	return &Poller{
		log:    log,
		cfg:    cfg,
		store:  store,
		bus:    bus,
		client: &http.Client{Timeout: 5 * time.Second},
		stop:   make(chan struct{}),
	}
}

// Start begins the 1s poll loop and attempts the opportunistic
// websocket dial. Both run until ctx is canceled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	if p.cfg.WebsocketURL != "" {
		p.dialWebsocket()
	}

	go func() {
		ticker := time.NewTicker(pollPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()
}

// Stop ends the poll loop and closes the websocket, if any.
func (p *Poller) Stop() {
	close(p.stop)
	if p.ws != nil {
		p.ws.Close()
	}
}

func (p *Poller) poll() {
	if p.cfg.Endpoint == "" {
		return
	}

	resp, err := p.client.Get(p.cfg.Endpoint)
	if err != nil {
		p.warn(fmt.Errorf("netsync: fetch snapshot: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.warn(fmt.Errorf("netsync: fetch snapshot: unexpected status %d", resp.StatusCode))
		return
	}

	var next config.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&next); err != nil {
		p.warn(fmt.Errorf("netsync: decode snapshot: %w", err))
		return
	}

	p.store.Swap(next)
	p.publishStatus(modstatus.StatusOperational, "")
}

// dialWebsocket attempts one opportunistic dial for the telemetry push
// subchannel. Failure only disables the push; polling is unaffected.
func (p *Poller) dialWebsocket() {
	conn, _, err := websocket.DefaultDialer.Dial(p.cfg.WebsocketURL, nil)
	if err != nil {
		p.log.With(logger.Fields{"module": "netsync"}).Infof("websocket push unavailable: %v", err)
		return
	}
	p.ws = conn
}

// PushTelemetry writes payload to the push subchannel, if connected.
// A write failure silently drops the payload; polling continues
// regardless.
func (p *Poller) PushTelemetry(payload interface{}) {
	if p.ws == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.ws.WriteMessage(websocket.TextMessage, body)
}

func (p *Poller) warn(err error) {
	p.log.With(logger.Fields{"module": "netsync"}).Warnf("%v", err)
	p.publishStatus(modstatus.StatusDegraded, err.Error())
}

func (p *Poller) publishStatus(status modstatus.Status, data string) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(eventbus.Event{Topic: eventbus.TopicModuleStatus, Data: modstatus.Event{
		Name:      "configmanager",
		Status:    status,
		Data:      data,
		Timestamp: time.Now(),
	}})
}
