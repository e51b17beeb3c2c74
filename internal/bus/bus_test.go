package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	b := New(zerolog.Nop())
	var got1, got2 []Event
	b.Subscribe(func(e Event) { got1 = append(got1, e) })
	b.Subscribe(func(e Event) { got2 = append(got2, e) })

	evt := NewGestureEvent("OPEN_PALM", 0.9, nil, time.Now())
	b.Publish(evt)

	if len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("deliveries = %d, %d, want 1 each", len(got1), len(got2))
	}
	if got1[0].ID != evt.ID || got2[0].ID != evt.ID {
		t.Error("subscribers received different event IDs")
	}
}

func TestPublish_DeliversInSubscriptionOrder(t *testing.T) {
	b := New(zerolog.Nop())
	var order []int
	for i := 0; i < 8; i++ {
		i := i
		b.Subscribe(func(Event) { order = append(order, i) })
	}

	b.Publish(NewSystemEvent(nil))

	if len(order) != 8 {
		t.Fatalf("delivered to %d subscribers, want 8", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("delivery order = %v, want subscription order", order)
		}
	}
}

func TestSubscribe_TypeFilter(t *testing.T) {
	b := New(zerolog.Nop())
	var gestures, systems int
	b.Subscribe(func(Event) { gestures++ }, EventGesture)
	b.Subscribe(func(Event) { systems++ }, EventSystem)

	b.Publish(NewGestureEvent("WAVE", 1.0, nil, time.Now()))
	b.Publish(NewSystemEvent(map[string]any{"state": "started"}))
	b.Publish(NewGestureEvent("PINCH", 0.8, nil, time.Now()))

	if gestures != 2 {
		t.Errorf("gesture subscriber got %d events, want 2", gestures)
	}
	if systems != 1 {
		t.Errorf("system subscriber got %d events, want 1", systems)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New(zerolog.Nop())
	var count int
	id := b.Subscribe(func(Event) { count++ })

	b.Publish(NewSystemEvent(nil))
	if !b.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for live subscription")
	}
	b.Publish(NewSystemEvent(nil))

	if count != 1 {
		t.Errorf("subscriber invoked %d times, want 1", count)
	}
	if b.Unsubscribe(id) {
		t.Error("second Unsubscribe returned true")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", b.SubscriberCount())
	}
}

func TestPublish_PanicIsolation(t *testing.T) {
	b := New(zerolog.Nop())
	var delivered int
	b.Subscribe(func(Event) { panic("subscriber bug") })
	b.Subscribe(func(Event) { delivered++ })

	b.Publish(NewSystemEvent(nil))

	if delivered != 1 {
		t.Errorf("healthy subscriber invoked %d times, want 1 despite panicking sibling", delivered)
	}
}

func TestPublish_SubscriberCanUnsubscribeItself(t *testing.T) {
	b := New(zerolog.Nop())
	var count int
	var id int
	id = b.Subscribe(func(Event) {
		count++
		b.Unsubscribe(id)
	})

	b.Publish(NewSystemEvent(nil))
	b.Publish(NewSystemEvent(nil))

	if count != 1 {
		t.Errorf("one-shot subscriber invoked %d times, want 1", count)
	}
}

func TestPublish_Concurrent(t *testing.T) {
	b := New(zerolog.Nop())
	var mu sync.Mutex
	var count int
	b.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish(NewSystemEvent(nil))
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("delivered %d events, want 1000", count)
	}
}

func TestNewErrorEvent(t *testing.T) {
	evt := NewErrorEvent(errors.New("camera unavailable"), map[string]any{"source": "capture"})
	if evt.Type != EventError {
		t.Errorf("Type = %s, want %s", evt.Type, EventError)
	}
	if evt.Data["error"] != "camera unavailable" {
		t.Errorf("Data[error] = %v, want camera unavailable", evt.Data["error"])
	}
	if evt.Data["source"] != "capture" {
		t.Errorf("Data[source] = %v, want capture", evt.Data["source"])
	}
	if evt.ID == "" {
		t.Error("event ID is empty")
	}
}

func TestEventConstructors_StampSource(t *testing.T) {
	cases := []struct {
		evt  Event
		want string
	}{
		{NewGestureEvent("WAVE", 1.0, nil, time.Now()), "validator"},
		{NewSystemEvent(nil), "app"},
		{NewErrorEvent(errors.New("boom"), nil), "pipeline"},
	}
	for _, c := range cases {
		if c.evt.Source != c.want {
			t.Errorf("%s event Source = %q, want %q", c.evt.Type, c.evt.Source, c.want)
		}
	}
}
