// Package plugin discovers and runs external action plugins. A plugin is a
// directory holding a plugin.json manifest and an executable that speaks JSON
// over stdin/stdout, one request per invocation.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and the actions it offers.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is sent to a plugin on stdin. Data carries the gesture's payload,
// e.g. the pinch point or swipe magnitude, so plugins can act on where and
// how the gesture happened.
type Request struct {
	Action     string          `json:"action"`
	Gesture    string          `json:"gesture"`
	Confidence float64         `json:"confidence,omitempty"`
	Data       map[string]any  `json:"data,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response is what a plugin prints to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin: its manifest plus resolved filesystem paths.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
