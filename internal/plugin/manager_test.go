package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "volume", `{
		"name": "volume",
		"version": "1.0.0",
		"executable": "volume.sh",
		"actions": ["volume_up", "volume_down"]
	}`)
	writeManifest(t, dir, "keys", `{
		"name": "keys",
		"version": "0.2.0",
		"executable": "keys",
		"actions": ["press"]
	}`)

	m := NewManager(dir, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	plugins := m.List()
	if len(plugins) != 2 {
		t.Fatalf("List() = %d plugins, want 2", len(plugins))
	}
	// List is sorted by name.
	if plugins[0].Manifest.Name != "keys" || plugins[1].Manifest.Name != "volume" {
		t.Errorf("List() order = [%s %s], want [keys volume]", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}

	p, err := m.Get("volume")
	if err != nil {
		t.Fatalf("Get(volume): %v", err)
	}
	if p.Executable != filepath.Join(dir, "volume", "volume.sh") {
		t.Errorf("Executable = %s, want manifest path under plugin dir", p.Executable)
	}
}

func TestDiscover_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "good", `{"name": "good", "executable": "run"}`)
	writeManifest(t, dir, "broken", `{not json`)
	writeManifest(t, dir, "nameless", `{"executable": "run"}`)
	// A bare subdirectory without a manifest is ignored.
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := m.List(); len(got) != 1 || got[0].Manifest.Name != "good" {
		t.Errorf("List() = %v, want only the valid plugin", got)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "does-not-exist"), zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover on missing dir: %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("missing dir produced plugins")
	}
}

func TestDiscover_ReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "old", `{"name": "old", "executable": "run"}`)

	m := NewManager(dir, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}

	if err := os.RemoveAll(filepath.Join(dir, "old")); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, "new", `{"name": "new", "executable": "run"}`)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Get("old"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get(old) err = %v, want ErrPluginNotFound", err)
	}
	if _, err := m.Get("new"); err != nil {
		t.Errorf("Get(new): %v", err)
	}
}
