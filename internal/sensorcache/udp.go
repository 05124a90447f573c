package sensorcache

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
)

// dataPattern matches DATA = "d,d,d,...,d" for exactly 16 bits (§4.2).
var dataPattern = regexp.MustCompile(`^([01],){15}[01]$`)

// rawPacket is the loosely-typed JSON shape every inbound datagram is
// decoded into before validation. ID is a json.Number and
// VERSION/PACKET_NO are kept as raw JSON because the wire format does
// not guarantee their concrete JSON type.
type rawPacket struct {
	Type     int             `json:"TYPE"`
	ID       json.Number     `json:"ID"`
	Name     string          `json:"NAME"`
	Version  json.RawMessage `json:"VERSION"`
	PacketNo json.RawMessage `json:"PACKET_NO"`
	Data     string          `json:"DATA"`
}

// SenseData is the payload fanned out on the senseData topic (§4.2, §6).
type SenseData struct {
	Timestamp time.Time
	Name      string
	Type      int
	ID        int
	Version   string
	PacketNo  string
	Data      [16]int
}

// Listener binds the UDP sensor port and feeds validated packets into
// a Cache, fanning out senseData events on bus.
type Listener struct {
	log   logger.Logger
	cache *Cache
	bus   *eventbus.Bus
	conn  *net.UDPConn
}

// NewListener binds port on all interfaces (IPv4).
func NewListener(log logger.Logger, cache *Cache, bus *eventbus.Bus, port int) (*Listener, error) {
	addr := &net.UDPAddr{Port: port, IP: net.IPv4zero}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("sensorcache: failed to bind UDP port %d: %w", port, err)
	}
	return &Listener{log: log, cache: cache, bus: bus, conn: conn}, nil
}

// Run reads datagrams until ctx-style shutdown via Close. Intended to
// run in its own goroutine; receive itself is non-blocking per packet
// but the read loop blocks between packets (§5 "UDP receive is
// non-blocking" refers to not stalling the rest of the system, not to
// a busy-poll).
func (l *Listener) Run(stop <-chan struct{}) {
	buf := make([]byte, 4096)
	go func() {
		<-stop
		l.conn.Close()
	}()

	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-stop:
				return
			default:
				l.log.With(logger.Fields{"module": "sensorcache"}).Warnf("UDP read error: %v", err)
				continue
			}
		}
		l.handle(append([]byte(nil), buf[:n]...))
	}
}

// Close stops the listener.
func (l *Listener) Close() error {
	return l.conn.Close()
}

func (l *Listener) handle(payload []byte) {
	var generic map[string]interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		l.log.With(logger.Fields{"module": "sensorcache"}).Warnf("invalid UDP JSON payload: %v", err)
		return
	}
	l.bus.Publish(eventbus.Event{Topic: eventbus.TopicReceivedUDP, Data: generic})

	var pkt rawPacket
	if err := json.Unmarshal(payload, &pkt); err != nil {
		l.log.With(logger.Fields{"module": "sensorcache"}).Warnf("invalid UDP packet shape: %v", err)
		return
	}

	if pkt.Type != 1 {
		// TYPE=2 (emit) and any other type pass through via receivedUDP
		// only; sensor-specific validation/caching applies to TYPE=1.
		return
	}

	sd, err := validateSensorPacket(pkt)
	if err != nil {
		l.log.With(logger.Fields{"module": "sensorcache"}).Warnf("rejected sensor packet: %v", err)
		return
	}

	l.cache.Update(sd.ID, sd.Data)
	l.bus.Publish(eventbus.Event{Topic: eventbus.TopicSenseData, Data: sd})
}

func validateSensorPacket(pkt rawPacket) (SenseData, error) {
	if pkt.ID == "" {
		return SenseData{}, fmt.Errorf("missing ID")
	}
	id, err := strconv.Atoi(strings.TrimSpace(pkt.ID.String()))
	if err != nil {
		return SenseData{}, fmt.Errorf("ID is not an integer: %w", err)
	}

	if pkt.Name == "" {
		return SenseData{}, fmt.Errorf("missing NAME")
	}
	if len(pkt.Version) == 0 {
		return SenseData{}, fmt.Errorf("missing VERSION")
	}
	if len(pkt.PacketNo) == 0 {
		return SenseData{}, fmt.Errorf("missing PACKET_NO")
	}
	if !dataPattern.MatchString(pkt.Data) {
		return SenseData{}, fmt.Errorf("DATA does not match the 16-bit pattern: %q", pkt.Data)
	}

	var data [16]int
	for i, tok := range strings.Split(pkt.Data, ",") {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return SenseData{}, fmt.Errorf("DATA token %d invalid: %w", i, err)
		}
		data[i] = v
	}

	return SenseData{
		Timestamp: time.Now(),
		Name:      pkt.Name,
		Type:      pkt.Type,
		ID:        id,
		Version:   string(pkt.Version),
		PacketNo:  string(pkt.PacketNo),
		Data:      data,
	}, nil
}
