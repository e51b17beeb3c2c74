package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
	if cfg.Pipeline.FilterWindow != 5 {
		t.Errorf("FilterWindow = %d, want default 5", cfg.Pipeline.FilterWindow)
	}
	if cfg.Pipeline.StabilityFrames != 3 {
		t.Errorf("StabilityFrames = %d, want default 3", cfg.Pipeline.StabilityFrames)
	}
	if cfg.Camera.IdleFPS != 5 || cfg.Camera.ActiveFPS != 15 {
		t.Errorf("FPS = %d/%d, want defaults 5/15", cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS)
	}
	if cfg.Plugins.Timeout != 5*time.Second {
		t.Errorf("plugin timeout = %v, want default 5s", cfg.Plugins.Timeout)
	}
	if !cfg.Server.Enabled {
		t.Error("server disabled by default, want enabled")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("pipeline:\n  filterWindow: 7\n  minConfidence: 0.8\ncamera:\n  id: 2\n")
	if err := os.WriteFile(filepath.Join(dir, "mudra.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.FilterWindow != 7 {
		t.Errorf("FilterWindow = %d, want 7 from file", cfg.Pipeline.FilterWindow)
	}
	if cfg.Pipeline.MinConfidence != 0.8 {
		t.Errorf("MinConfidence = %v, want 0.8 from file", cfg.Pipeline.MinConfidence)
	}
	if cfg.Camera.ID != 2 {
		t.Errorf("Camera.ID = %d, want 2 from file", cfg.Camera.ID)
	}
	// Untouched keys keep their defaults.
	if cfg.Pipeline.StabilityFrames != 3 {
		t.Errorf("StabilityFrames = %d, want default 3", cfg.Pipeline.StabilityFrames)
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("pipeline:\n  filterWindow: 4\n")
	if err := os.WriteFile(filepath.Join(dir, "mudra.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("even filter window accepted")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero motion threshold", func(c *Config) { c.Camera.MotionThreshold = 0 }},
		{"zero idle fps", func(c *Config) { c.Camera.IdleFPS = 0 }},
		{"active below idle fps", func(c *Config) { c.Camera.ActiveFPS = c.Camera.IdleFPS - 1 }},
		{"zero idle timeout", func(c *Config) { c.Camera.IdleTimeout = 0 }},
		{"zero max hands", func(c *Config) { c.Tracking.MaxHands = 0 }},
		{"detection confidence above 1", func(c *Config) { c.Tracking.MinDetectionConfidence = 1.1 }},
		{"zero tracking confidence", func(c *Config) { c.Tracking.MinTrackingConfidence = 0 }},
		{"zero loss frames", func(c *Config) { c.Tracking.LossFrames = 0 }},
		{"zero min confidence", func(c *Config) { c.Pipeline.MinConfidence = 0 }},
		{"min confidence above 1", func(c *Config) { c.Pipeline.MinConfidence = 1.5 }},
		{"zero stability frames", func(c *Config) { c.Pipeline.StabilityFrames = 0 }},
		{"even filter window", func(c *Config) { c.Pipeline.FilterWindow = 6 }},
		{"filter window below 3", func(c *Config) { c.Pipeline.FilterWindow = 1 }},
		{"context frames below 2", func(c *Config) { c.Pipeline.ContextFrames = 1 }},
		{"zero plugin timeout", func(c *Config) { c.Plugins.Timeout = 0 }},
		{"enabled server without addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}
