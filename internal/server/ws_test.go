package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
)

func TestEventsHandler_StreamsEvents(t *testing.T) {
	b := bus.New(zerolog.Nop())
	h := NewEventsHandler(b, zerolog.Nop())

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// The connection registers asynchronously with the handler.
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Publish(bus.NewGestureEvent("SWIPE_LEFT", 0.9, nil, time.Now()))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var evt bus.Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if evt.Gesture != "SWIPE_LEFT" || evt.Confidence != 0.9 {
		t.Errorf("event = %+v, want SWIPE_LEFT at 0.9", evt)
	}
}

func TestEventsHandler_SlowClientDoesNotBlockPublish(t *testing.T) {
	b := bus.New(zerolog.Nop())
	h := NewEventsHandler(b, zerolog.Nop())

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The client never reads. Publishing far more events than any socket
	// buffer holds must still return promptly: excess events are dropped
	// for the stalled client instead of stalling the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5000; i++ {
			b.Publish(bus.NewGestureEvent("SWIPE_LEFT", 0.9, nil, time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Publish blocked on an unread websocket client")
	}
}

func TestEventsHandler_CleansUpOnDisconnect(t *testing.T) {
	b := bus.New(zerolog.Nop())
	h := NewEventsHandler(b, zerolog.Nop())

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never deregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
