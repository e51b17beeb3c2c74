// System control plugin for Mudra. Handles volume, brightness, and media
// playback on macOS via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

type request struct {
	Action     string          `json:"action"`
	Gesture    string          `json:"gesture"`
	Confidence float64         `json:"confidence"`
	Data       map[string]any  `json:"data"`
	Config     json.RawMessage `json:"config"`
	Params     json.RawMessage `json:"params"`
}

type response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

var actions = map[string]func() error{
	"volume-up":        func() error { return osascript(`set volume output volume ((output volume of (get volume settings)) + 10)`) },
	"volume-down":      func() error { return osascript(`set volume output volume ((output volume of (get volume settings)) - 10)`) },
	"volume-mute":      func() error { return osascript(`set volume with output muted`) },
	"brightness-up":    func() error { return keyCode(144) },
	"brightness-down":  func() error { return keyCode(145) },
	"media-play-pause": func() error { return keyCode(49) },
	"media-next":       func() error { return keyCode(124) },
	"media-prev":       func() error { return keyCode(123) },
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("decoding request: %v", err))
		return
	}

	fn, ok := actions[req.Action]
	if !ok {
		fail(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err := fn(); err != nil {
		fail(fmt.Sprintf("action %s: %v", req.Action, err))
		return
	}
	json.NewEncoder(os.Stdout).Encode(response{Success: true})
}

func fail(msg string) {
	json.NewEncoder(os.Stdout).Encode(response{Success: false, Error: msg})
}

func osascript(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %s", err, out)
	}
	return nil
}

func keyCode(code int) error {
	return osascript(fmt.Sprintf(`tell application "System Events" to key code %d`, code))
}
