package scripthost

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shaurasan/SnapShotTool/packages/host"
)

// Fixture describes a scripted host session: the current frame, the scene
// selection, and the panels with their display state and capture behavior.
type Fixture struct {
	Frame     int            `json:"frame,omitempty"`
	Selection []string       `json:"selection,omitempty"`
	Panels    []PanelFixture `json:"panels"`
}

// PanelFixture describes one model panel. UnsupportedFlags lists toggles
// the panel cannot answer for: queries fail with host.ErrUnsupported and an
// edit naming one is rejected outright.
type PanelFixture struct {
	Name             string          `json:"name"`
	Camera           string          `json:"camera,omitempty"`
	Hidden           bool            `json:"hidden,omitempty"`
	Flags            map[string]bool `json:"flags,omitempty"`
	UnsupportedFlags []string        `json:"unsupportedFlags,omitempty"`
	Isolate          *IsolateFixture `json:"isolate,omitempty"`
	Capture          *CaptureFixture `json:"capture,omitempty"`
}

// IsolateFixture marks a panel as supporting isolate-select. A panel
// without one reports host.ErrUnsupported for isolation queries.
type IsolateFixture struct {
	State bool `json:"state"`
}

// CaptureFixture shapes how the panel answers a capture call.
//
// Returns selects the shape of the raw return value: "string" (default),
// "list", "none", or "invalid". Pattern makes the host answer with a
// frame-number placeholder in the path while writing the real file under
// the substituted name. Fail injects a failure: "error" makes the call
// itself fail, "missing" writes nothing, "empty" writes a zero-byte file.
type CaptureFixture struct {
	Returns string `json:"returns,omitempty"`
	Pattern bool   `json:"pattern,omitempty"`
	Fail    string `json:"fail,omitempty"`
	Fill    string `json:"fill,omitempty"`
}

// Capture fixture return shapes.
const (
	ReturnString  = "string"
	ReturnList    = "list"
	ReturnNone    = "none"
	ReturnInvalid = "invalid"
)

// Capture fixture failure injections.
const (
	FailNone    = ""
	FailError   = "error"
	FailMissing = "missing"
	FailEmpty   = "empty"
)

// LoadFixture reads a hostfile, validates it against the fixture schema and
// unmarshals it. Schema violations are returned as a single error listing
// every finding.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hostfile: %w", err)
	}

	if err := ValidateFixture(data); err != nil {
		return nil, fmt.Errorf("hostfile %s: %w", path, err)
	}

	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("parsing hostfile %s: %w", path, err)
	}
	return &fix, nil
}

// DefaultFixture builds a starter fixture with two perspective-style panels
// and every given display toggle enabled. The flag list is supplied by the
// caller so this package stays independent of the capture pipeline.
func DefaultFixture(flags []string) *Fixture {
	panel := func(name, camera string) PanelFixture {
		f := make(map[string]bool, len(flags))
		for _, flag := range flags {
			f[flag] = true
		}
		return PanelFixture{
			Name:    name,
			Camera:  camera,
			Flags:   f,
			Isolate: &IsolateFixture{State: false},
		}
	}

	return &Fixture{
		Frame: 1,
		Panels: []PanelFixture{
			panel("modelPanel1", "persp"),
			panel("modelPanel4", "top"),
		},
	}
}

// FixtureFromHost snapshots a live host into a fixture, querying the given
// display toggles on every visible panel. Toggles a panel cannot answer for
// land in its unsupported list.
func FixtureFromHost(h host.Host, flags []string) (*Fixture, error) {
	panels, err := h.Panels()
	if err != nil {
		return nil, fmt.Errorf("listing panels: %w", err)
	}

	fix := &Fixture{
		Frame:     h.CurrentFrame(),
		Selection: h.Selection(),
	}

	for _, p := range panels {
		pf := PanelFixture{
			Name:   p.Name,
			Camera: p.Camera,
			Flags:  make(map[string]bool, len(flags)),
		}
		for _, flag := range flags {
			v, err := h.DisplayFlag(p.Name, flag)
			if err != nil {
				pf.UnsupportedFlags = append(pf.UnsupportedFlags, flag)
				continue
			}
			pf.Flags[flag] = v
		}
		state, err := h.IsolateState(p.Name)
		if err == nil {
			pf.Isolate = &IsolateFixture{State: state}
		} else if !errors.Is(err, host.ErrUnsupported) {
			return nil, fmt.Errorf("reading isolate state of %s: %w", p.Name, err)
		}
		fix.Panels = append(fix.Panels, pf)
	}

	return fix, nil
}

// Save writes the fixture as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
