// Package inspect renders a host's current state as JSON and answers path
// queries against it.
package inspect

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shaurasan/SnapShotTool/packages/host"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// PanelState is one panel's readable display state. Isolate is nil when the
// panel does not support isolation.
type PanelState struct {
	Name    string          `json:"name"`
	Camera  string          `json:"camera,omitempty"`
	Flags   map[string]bool `json:"flags,omitempty"`
	Isolate *bool           `json:"isolate,omitempty"`
}

// State is a point-in-time view of the host.
type State struct {
	Frame     int          `json:"frame"`
	Selection []string     `json:"selection,omitempty"`
	Panels    []PanelState `json:"panels"`
}

// Collect reads the host's visible panels and the given display flags.
// Unreadable flags are skipped, matching what a capture would see.
func Collect(h host.Host, flags []string, log *slog.Logger) (*State, error) {
	if log == nil {
		log = slog.Default()
	}

	panels, err := h.Panels()
	if err != nil {
		return nil, fmt.Errorf("listing panels: %w", err)
	}

	state := &State{
		Frame:     h.CurrentFrame(),
		Selection: h.Selection(),
		Panels:    make([]PanelState, 0, len(panels)),
	}

	for _, p := range panels {
		ps := PanelState{
			Name:   p.Name,
			Camera: p.Camera,
			Flags:  make(map[string]bool, len(flags)),
		}
		for _, flag := range flags {
			v, err := h.DisplayFlag(p.Name, flag)
			if err != nil {
				log.Debug("flag not readable", "panel", p.Name, "flag", flag, "error", err)
				continue
			}
			ps.Flags[flag] = v
		}
		if on, err := h.IsolateState(p.Name); err == nil {
			ps.Isolate = &on
		}
		state.Panels = append(state.Panels, ps)
	}

	return state, nil
}

// JSON renders the state as indented JSON.
func (s *State) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Query evaluates a gjson path against a JSON state document and returns a
// printable result. Objects and arrays come back as raw JSON.
func Query(data []byte, path string) (string, error) {
	r := gjson.GetBytes(data, path)
	if !r.Exists() {
		return "", fmt.Errorf("path %q not found", path)
	}
	if r.IsObject() || r.IsArray() {
		return string(pretty.Ugly([]byte(r.Raw))), nil
	}
	return r.String(), nil
}
