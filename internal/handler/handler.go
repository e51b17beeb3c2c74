// Package handler routes confirmed gesture events to registered actions,
// honoring per-handler priorities, gesture allowlists, and cooldowns.
package handler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
)

const (
	// MinPriority and MaxPriority bound handler priorities. Higher priority
	// handlers run first.
	MinPriority = 0
	MaxPriority = 100
)

// Outcome is what a handler produces when it acts on an event. A nil Outcome
// means the handler declined, which leaves its cooldown untouched.
type Outcome struct {
	Message string
	Data    map[string]any
}

// Func is a gesture action. It runs on the dispatch goroutine, so long
// operations should be moved off it by the handler itself.
type Func func(evt bus.Event) (*Outcome, error)

// registration is one handler plus its dispatch policy. lastFired is guarded
// by its own mutex so cooldown bookkeeping never blocks the registry lock.
type registration struct {
	id       string
	name     string
	priority int
	gestures map[string]struct{} // nil means all gestures
	cooldown time.Duration
	fn       Func
	order    int

	mu        sync.Mutex
	lastFired time.Time
}

// Manager holds handler registrations and dispatches gesture events to them.
type Manager struct {
	mu        sync.RWMutex
	regs      []*registration
	nextOrder int
	now       func() time.Time
	log       zerolog.Logger
}

// NewManager creates an empty Manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		now: time.Now,
		log: log.With().Str("component", "handler").Logger(),
	}
}

// Register adds a handler. gestures limits which gesture names reach it; an
// empty list means every gesture. cooldown is the minimum interval between
// successful invocations. Returns the registration id.
func (m *Manager) Register(name string, priority int, gestures []string, cooldown time.Duration, fn Func) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("handler %q: nil function", name)
	}
	if priority < MinPriority || priority > MaxPriority {
		return "", fmt.Errorf("handler %q: priority %d out of range [%d, %d]", name, priority, MinPriority, MaxPriority)
	}
	if cooldown < 0 {
		return "", fmt.Errorf("handler %q: negative cooldown %v", name, cooldown)
	}

	var filter map[string]struct{}
	if len(gestures) > 0 {
		filter = make(map[string]struct{}, len(gestures))
		for _, g := range gestures {
			filter[g] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	reg := &registration{
		id:       uuid.NewString(),
		name:     name,
		priority: priority,
		gestures: filter,
		cooldown: cooldown,
		fn:       fn,
		order:    m.nextOrder,
	}
	m.nextOrder++
	m.regs = append(m.regs, reg)
	m.log.Debug().Str("handler", name).Int("priority", priority).Msg("handler registered")
	return reg.id, nil
}

// Unregister removes a handler by registration id.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.regs {
		if r.id == id {
			m.regs = append(m.regs[:i], m.regs[i+1:]...)
			return true
		}
	}
	return false
}

// HandlerCount returns the number of registered handlers.
func (m *Manager) HandlerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regs)
}

// HandleEvent dispatches one gesture event to every eligible handler, highest
// priority first, serially. Returns the outcomes of every handler that acted,
// in dispatch order. Designed to be subscribed to the bus for GESTURE events.
func (m *Manager) HandleEvent(evt bus.Event) []*Outcome {
	if evt.Type != bus.EventGesture {
		return nil
	}

	m.mu.RLock()
	eligible := make([]*registration, 0, len(m.regs))
	for _, r := range m.regs {
		if r.gestures != nil {
			if _, ok := r.gestures[evt.Gesture]; !ok {
				continue
			}
		}
		eligible = append(eligible, r)
	}
	m.mu.RUnlock()

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].priority != eligible[j].priority {
			return eligible[i].priority > eligible[j].priority
		}
		return eligible[i].order < eligible[j].order
	})

	var outcomes []*Outcome
	for _, r := range eligible {
		if outcome := m.dispatch(r, evt); outcome != nil {
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

// dispatch invokes one handler if its cooldown has elapsed and returns its
// outcome, or nil if it did not act. The cooldown is consumed only when the
// handler actually acts: declining (nil outcome) or failing leaves it ready
// to fire on the next event.
func (m *Manager) dispatch(r *registration, evt bus.Event) *Outcome {
	r.mu.Lock()
	ready := r.cooldown == 0 || m.now().Sub(r.lastFired) >= r.cooldown
	r.mu.Unlock()
	if !ready {
		m.log.Debug().Str("handler", r.name).Str("gesture", evt.Gesture).Msg("handler cooling down")
		return nil
	}

	outcome, err := m.invoke(r, evt)
	if err != nil {
		m.log.Error().Err(err).Str("handler", r.name).Str("gesture", evt.Gesture).Msg("handler failed")
		return nil
	}
	if outcome == nil {
		return nil
	}

	r.mu.Lock()
	r.lastFired = m.now()
	r.mu.Unlock()
	m.log.Debug().Str("handler", r.name).Str("gesture", evt.Gesture).Str("result", outcome.Message).
		Msg("handler fired")
	return outcome
}

func (m *Manager) invoke(r *registration, evt bus.Event) (outcome *Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = nil
			err = fmt.Errorf("handler %q panicked: %v", r.name, rec)
		}
	}()
	return r.fn(evt)
}
