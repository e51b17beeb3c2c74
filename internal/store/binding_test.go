package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBindingCRUD(t *testing.T) {
	s := testStore(t)
	r := s.Bindings()

	b := &Binding{
		ID:         uuid.NewString(),
		Gesture:    "THUMBS_UP",
		PluginName: "system-control",
		ActionName: "volume_up",
		Config:     json.RawMessage(`{"step": 5}`),
		Priority:   80,
		Cooldown:   500 * time.Millisecond,
		Enabled:    true,
	}
	if err := r.Create(b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByID(b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Gesture != "THUMBS_UP" || got.Priority != 80 || got.Cooldown != 500*time.Millisecond {
		t.Errorf("GetByID = %+v", got)
	}
	if !got.Enabled {
		t.Error("Enabled lost in round trip")
	}
	var cfg map[string]int
	if err := json.Unmarshal(got.Config, &cfg); err != nil || cfg["step"] != 5 {
		t.Errorf("Config = %s, %v", got.Config, err)
	}

	got.Priority = 20
	got.Enabled = false
	if err := r.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = r.GetByID(b.ID)
	if got.Priority != 20 || got.Enabled {
		t.Errorf("after update = %+v", got)
	}

	if err := r.Delete(b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.GetByID(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete err = %v, want ErrNotFound", err)
	}
}

func TestListEnabled(t *testing.T) {
	s := testStore(t)
	r := s.Bindings()

	mk := func(gesture string, priority int, enabled bool) {
		t.Helper()
		err := r.Create(&Binding{
			ID: uuid.NewString(), Gesture: gesture,
			PluginName: "p", ActionName: "a",
			Priority: priority, Enabled: enabled,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk("WAVE", 10, true)
	mk("PINCH", 90, true)
	mk("POINTING", 50, false)

	enabled, err := r.ListEnabled()
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 2 {
		t.Fatalf("ListEnabled = %d bindings, want 2", len(enabled))
	}
	if enabled[0].Gesture != "PINCH" || enabled[1].Gesture != "WAVE" {
		t.Errorf("order = [%s %s], want priority desc", enabled[0].Gesture, enabled[1].Gesture)
	}

	all, _ := r.List()
	if len(all) != 3 {
		t.Errorf("List = %d bindings, want 3", len(all))
	}
}
