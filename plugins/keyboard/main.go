// Keyboard plugin for Mudra. Sends keystrokes and shortcuts on macOS via
// AppleScript. The key and modifiers come from the binding's params.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
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

type keystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

var modifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("decoding request: %v", err))
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		if err := keystroke(firstNonNil(req.Params, req.Config)); err != nil {
			fail(fmt.Sprintf("action %s: %v", req.Action, err))
			return
		}
	default:
		fail(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	json.NewEncoder(os.Stdout).Encode(response{Success: true})
}

// firstNonNil lets bindings carry the key in their config when no explicit
// params are given.
func firstNonNil(raws ...json.RawMessage) json.RawMessage {
	for _, raw := range raws {
		if len(raw) > 0 {
			return raw
		}
	}
	return nil
}

func fail(msg string) {
	json.NewEncoder(os.Stdout).Encode(response{Success: false, Error: msg})
}

func keystroke(raw json.RawMessage) error {
	var p keystrokeParams
	if raw == nil {
		return fmt.Errorf("key is required")
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("parsing params: %w", err)
	}
	if p.Key == "" {
		return fmt.Errorf("key is required")
	}

	script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, p.Key)
	if mods := modifierList(p.Modifiers); mods != "" {
		script = fmt.Sprintf(`tell application "System Events" to keystroke %q using {%s}`, p.Key, mods)
	}

	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %s", err, out)
	}
	return nil
}

func modifierList(names []string) string {
	var out []string
	for _, name := range names {
		if m, ok := modifiers[strings.ToLower(name)]; ok {
			out = append(out, m)
		}
	}
	return strings.Join(out, ", ")
}
