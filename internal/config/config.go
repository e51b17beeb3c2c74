// Package config loads and validates application configuration. Values come
// from mudra.yaml with sane defaults for every key, so a missing config file
// is not an error; an invalid one is fatal at startup.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full validated application configuration.
type Config struct {
	DataDir  string         `mapstructure:"dataDir"`
	LogLevel string         `mapstructure:"logLevel"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Plugins  PluginConfig   `mapstructure:"plugins"`
	Server   ServerConfig   `mapstructure:"server"`
}

// CameraConfig controls frame capture and the motion gate.
type CameraConfig struct {
	ID              int           `mapstructure:"id"`
	MotionThreshold float64       `mapstructure:"motionThreshold"`
	IdleFPS         int           `mapstructure:"idleFps"`
	ActiveFPS       int           `mapstructure:"activeFps"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
}

// TrackingConfig controls the hand landmark tracker.
type TrackingConfig struct {
	MaxHands               int     `mapstructure:"maxHands"`
	MinDetectionConfidence float64 `mapstructure:"minDetectionConfidence"`
	MinTrackingConfidence  float64 `mapstructure:"minTrackingConfidence"`
	LossFrames             int     `mapstructure:"lossFrames"`
}

// PipelineConfig controls detection, smoothing, and stability validation.
type PipelineConfig struct {
	MinConfidence   float64 `mapstructure:"minConfidence"`
	StabilityFrames int     `mapstructure:"stabilityFrames"`
	FilterWindow    int     `mapstructure:"filterWindow"`
	ContextFrames   int     `mapstructure:"contextFrames"`
}

// PluginConfig controls plugin discovery and execution.
type PluginConfig struct {
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the local HTTP/websocket API.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads mudra.yaml from configDir, applies defaults and MUDRA_*
// environment overrides, and validates the result. A missing file falls back
// to defaults; any other failure is returned.
func Load(configDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("dataDir", "")
	v.SetDefault("logLevel", "info")

	v.SetDefault("camera.id", 0)
	v.SetDefault("camera.motionThreshold", 1.0)
	v.SetDefault("camera.idleFps", 5)
	v.SetDefault("camera.activeFps", 15)
	v.SetDefault("camera.idleTimeout", 2*time.Second)

	v.SetDefault("tracking.maxHands", 2)
	v.SetDefault("tracking.minDetectionConfidence", 0.5)
	v.SetDefault("tracking.minTrackingConfidence", 0.5)
	v.SetDefault("tracking.lossFrames", 5)

	v.SetDefault("pipeline.minConfidence", 0.6)
	v.SetDefault("pipeline.stabilityFrames", 3)
	v.SetDefault("pipeline.filterWindow", 5)
	v.SetDefault("pipeline.contextFrames", 30)

	v.SetDefault("plugins.dir", "")
	v.SetDefault("plugins.timeout", 5*time.Second)

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", "127.0.0.1:8970")

	v.SetConfigName("mudra")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("mudra")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its allowed range. Construction fails
// fast on the first violation rather than letting a bad value surface mid
// pipeline.
func (c *Config) Validate() error {
	if c.Camera.MotionThreshold <= 0 {
		return fmt.Errorf("camera.motionThreshold must be positive, got %v", c.Camera.MotionThreshold)
	}
	if c.Camera.IdleFPS < 1 {
		return fmt.Errorf("camera.idleFps must be at least 1, got %d", c.Camera.IdleFPS)
	}
	if c.Camera.ActiveFPS < c.Camera.IdleFPS {
		return fmt.Errorf("camera.activeFps (%d) must be at least camera.idleFps (%d)", c.Camera.ActiveFPS, c.Camera.IdleFPS)
	}
	if c.Camera.IdleTimeout <= 0 {
		return fmt.Errorf("camera.idleTimeout must be positive, got %v", c.Camera.IdleTimeout)
	}

	if c.Tracking.MaxHands < 1 {
		return fmt.Errorf("tracking.maxHands must be at least 1, got %d", c.Tracking.MaxHands)
	}
	if c.Tracking.MinDetectionConfidence <= 0 || c.Tracking.MinDetectionConfidence > 1 {
		return fmt.Errorf("tracking.minDetectionConfidence must be in (0, 1], got %v", c.Tracking.MinDetectionConfidence)
	}
	if c.Tracking.MinTrackingConfidence <= 0 || c.Tracking.MinTrackingConfidence > 1 {
		return fmt.Errorf("tracking.minTrackingConfidence must be in (0, 1], got %v", c.Tracking.MinTrackingConfidence)
	}
	if c.Tracking.LossFrames < 1 {
		return fmt.Errorf("tracking.lossFrames must be at least 1, got %d", c.Tracking.LossFrames)
	}

	if c.Pipeline.MinConfidence <= 0 || c.Pipeline.MinConfidence > 1 {
		return fmt.Errorf("pipeline.minConfidence must be in (0, 1], got %v", c.Pipeline.MinConfidence)
	}
	if c.Pipeline.StabilityFrames < 1 {
		return fmt.Errorf("pipeline.stabilityFrames must be at least 1, got %d", c.Pipeline.StabilityFrames)
	}
	if c.Pipeline.FilterWindow < 3 || c.Pipeline.FilterWindow%2 == 0 {
		return fmt.Errorf("pipeline.filterWindow must be an odd number of at least 3, got %d", c.Pipeline.FilterWindow)
	}
	if c.Pipeline.ContextFrames < 2 {
		return fmt.Errorf("pipeline.contextFrames must be at least 2, got %d", c.Pipeline.ContextFrames)
	}

	if c.Plugins.Timeout <= 0 {
		return fmt.Errorf("plugins.timeout must be positive, got %v", c.Plugins.Timeout)
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.addr must be set when the server is enabled")
	}
	return nil
}
