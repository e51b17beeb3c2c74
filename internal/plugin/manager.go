package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPluginNotFound is returned when a requested plugin is not loaded.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager scans a plugin directory and holds the loaded set. Discovery can be
// re-run at any time; the loaded set is replaced atomically.
type Manager struct {
	mu      sync.RWMutex
	dir     string
	plugins map[string]*Plugin
	log     zerolog.Logger
}

// NewManager creates a Manager rooted at dir.
func NewManager(dir string, log zerolog.Logger) *Manager {
	return &Manager{
		dir:     dir,
		plugins: make(map[string]*Plugin),
		log:     log.With().Str("component", "plugin").Logger(),
	}
}

// Discover scans the plugin directory. Each subdirectory with a valid
// plugin.json becomes a plugin; unreadable or malformed entries are logged
// and skipped rather than failing the whole scan. A missing directory loads
// an empty set.
func (m *Manager) Discover() error {
	loaded := make(map[string]*Plugin)

	info, err := os.Stat(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			m.replace(loaded)
			return nil
		}
		return fmt.Errorf("plugin dir %s: %w", m.dir, err)
	}
	if !info.IsDir() {
		m.replace(loaded)
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("reading plugin dir %s: %w", m.dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginPath := filepath.Join(m.dir, entry.Name())
		manifestPath := filepath.Join(pluginPath, "plugin.json")

		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			if !os.IsNotExist(err) {
				m.log.Warn().Err(err).Str("path", manifestPath).Msg("skipping unreadable manifest")
			}
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(raw, &manifest); err != nil {
			m.log.Warn().Err(err).Str("path", manifestPath).Msg("skipping malformed manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			m.log.Warn().Str("path", manifestPath).Msg("skipping manifest missing name or executable")
			continue
		}

		loaded[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       pluginPath,
			Executable: filepath.Join(pluginPath, manifest.Executable),
		}
		m.log.Info().Str("plugin", manifest.Name).Str("version", manifest.Version).Msg("plugin loaded")
	}

	m.replace(loaded)
	return nil
}

func (m *Manager) replace(loaded map[string]*Plugin) {
	m.mu.Lock()
	m.plugins = loaded
	m.mu.Unlock()
}

// Get returns a loaded plugin by name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	return p, nil
}

// List returns all loaded plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// Dir returns the plugin directory path.
func (m *Manager) Dir() string {
	return m.dir
}
