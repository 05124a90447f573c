// Package eventbus implements the in-process, topic-keyed pub/sub used
// for status reporting and sensor fan-out (§4.9).
package eventbus

import (
	"sort"

	"sacncore/internal/logger"
)

// Topic names used across the core (§6, §4.9).
const (
	TopicSenseData           = "senseData"
	TopicModuleStatus        = "moduleStatus"
	TopicModuleStatusUpdate  = "moduleStatusUpdate"
	TopicSystemStatusUpdate  = "systemStatusUpdate"
	TopicLog                 = "log"
	TopicMacrosStatus        = "macrosStatus"
	TopicReceivedUDP         = "receivedUDP"
)

// Event is one published message: Topic identifies the channel, Data
// carries the topic-specific payload.
type Event struct {
	Topic string
	Data  interface{}
}

// Handler receives a published Event. A handler must not block for
// long — delivery is synchronous and a slow handler delays every other
// subscriber on the same Emit call.
type Handler func(Event)

// Bus is a synchronous, FIFO-per-topic, best-effort publisher. A
// subscriber whose handler panics is recovered and logged; it never
// prevents delivery to other subscribers.
type Bus struct {
	log         logger.Logger
	handlers    map[string]map[uint64]Handler
	allHandlers map[uint64]Handler
	nextID      uint64
	mu          chan struct{} // binary semaphore; see lock()/unlock()
}

// New creates an empty Bus.
func New(log logger.Logger) *Bus {
	b := &Bus{
		log:         log,
		handlers:    make(map[string]map[uint64]Handler),
		allHandlers: make(map[uint64]Handler),
		mu:          make(chan struct{}, 1),
	}
	b.mu <- struct{}{}
	return b
}

func (b *Bus) lock()   { <-b.mu }
func (b *Bus) unlock() { b.mu <- struct{}{} }

// Subscribe registers handler for topic. The returned func
// unsubscribes it.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.lock()
	defer b.unlock()
	id := b.nextID
	b.nextID++
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uint64]Handler)
	}
	b.handlers[topic][id] = handler
	return func() {
		b.lock()
		defer b.unlock()
		delete(b.handlers[topic], id)
	}
}

// SubscribeAll registers handler for every topic. The returned func
// unsubscribes it.
func (b *Bus) SubscribeAll(handler Handler) func() {
	b.lock()
	defer b.unlock()
	id := b.nextID
	b.nextID++
	b.allHandlers[id] = handler
	return func() {
		b.lock()
		defer b.unlock()
		delete(b.allHandlers, id)
	}
}

// Publish delivers event to every subscriber of event.Topic plus every
// all-topic subscriber, synchronously and in FIFO registration order.
func (b *Bus) Publish(event Event) {
	b.lock()
	topicHandlers := b.handlers[event.Topic]
	ids := make([]uint64, 0, len(topicHandlers)+len(b.allHandlers))
	byID := make(map[uint64]Handler, len(topicHandlers)+len(b.allHandlers))
	for id, h := range topicHandlers {
		ids = append(ids, id)
		byID[id] = h
	}
	for id, h := range b.allHandlers {
		ids = append(ids, id)
		byID[id] = h
	}
	b.unlock()

	// Registration ids are monotonically increasing, so sorting them
	// recovers FIFO registration order out of the unordered maps.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b.deliver(event, byID[id])
	}
}

func (b *Bus) deliver(event Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			if b.log != nil {
				b.log.With(logger.Fields{"module": "eventbus"}).Errorf(
					"subscriber panic on topic %s: %v", event.Topic, r)
			}
		}
	}()
	h(event)
}
