// Package bus provides the in-process event bus connecting gesture detection
// to handlers, the websocket feed, and the tray.
package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType classifies bus events.
type EventType string

const (
	// EventGesture is a confirmed gesture emission.
	EventGesture EventType = "GESTURE"
	// EventSystem covers lifecycle notices: pipeline started, tracking lost,
	// config reloaded.
	EventSystem EventType = "SYSTEM"
	// EventError carries recoverable pipeline failures.
	EventError EventType = "ERROR"
)

// Event is a single bus message. Events are passed by value; subscribers must
// not retain or mutate the Data map.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Source     string         `json:"source"`
	Gesture    string         `json:"gesture,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewGestureEvent builds a GESTURE event with a fresh ID.
func NewGestureEvent(gesture string, confidence float64, data map[string]any, ts time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventGesture,
		Source:     "validator",
		Gesture:    gesture,
		Confidence: confidence,
		Data:       data,
		Timestamp:  ts,
	}
}

// NewSystemEvent builds a SYSTEM event with a fresh ID.
func NewSystemEvent(data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventSystem,
		Source:    "app",
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorEvent builds an ERROR event carrying the failure message.
func NewErrorEvent(err error, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	data["error"] = err.Error()
	return Event{
		ID:        uuid.NewString(),
		Type:      EventError,
		Source:    "pipeline",
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SubscriberFunc receives published events.
type SubscriberFunc func(Event)

type subscriber struct {
	id    int
	types map[EventType]struct{} // nil means all types
	fn    SubscriberFunc
}

// Bus is a thread-safe publish/subscribe hub. Publish never invokes
// subscribers while holding the bus lock, so subscribers may subscribe or
// unsubscribe from within their callback without deadlocking.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
	log    zerolog.Logger
}

// New creates an empty Bus.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		nextID: 1,
		log:    log.With().Str("component", "bus").Logger(),
	}
}

// Subscribe registers fn for the given event types; with no types it receives
// everything. Returns a subscription id for Unsubscribe.
func (b *Bus) Subscribe(fn SubscriberFunc, types ...EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var filter map[EventType]struct{}
	if len(types) > 0 {
		filter = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			filter[t] = struct{}{}
		}
	}
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, types: filter, fn: fn})
	return id
}

// Unsubscribe removes a subscription. Returns false for an unknown id.
func (b *Bus) Unsubscribe(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers the event to every matching subscriber, synchronously and
// in subscription order. A panicking subscriber is logged and skipped; it
// cannot prevent delivery to the others.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		if s.types != nil {
			if _, ok := s.types[evt.Type]; !ok {
				continue
			}
		}
		b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Int("subscriber", s.id).Str("event", string(evt.Type)).
				Interface("panic", r).Msg("subscriber panicked")
		}
	}()
	s.fn(evt)
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
