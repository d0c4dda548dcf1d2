package scripthost

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shaurasan/SnapShotTool/packages/host"
)

// Operation names recorded in the call log.
const (
	OpSetDisplayFlags = "setDisplayFlags"
	OpSetIsolateState = "setIsolateState"
	OpCaptureFrame    = "captureFrame"
)

// Call records one state-changing host interaction.
type Call struct {
	Op    string
	Panel string
	Flags map[string]bool
	State bool
	Args  host.CaptureArgs
}

type panelState struct {
	camera      string
	hidden      bool
	flags       map[string]bool
	unsupported map[string]struct{}
	isolateOK   bool
	isolate     bool
	capture     CaptureFixture
}

// Host is a scripted, fixture-driven implementation of host.Host. It keeps
// live display state so save/mutate/restore sequences round-trip, renders
// real image files for capture calls, and records every state-changing call
// for assertions.
type Host struct {
	mu        sync.Mutex
	frame     int
	selection []string
	order     []string
	panels    map[string]*panelState
	calls     []Call
	log       *slog.Logger
}

// Option configures a scripted host.
type Option func(*Host)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// New builds a scripted host from a fixture.
func New(fix *Fixture, opts ...Option) *Host {
	h := &Host{
		frame:     fix.Frame,
		selection: append([]string(nil), fix.Selection...),
		panels:    make(map[string]*panelState, len(fix.Panels)),
		log:       slog.Default(),
	}

	for _, pf := range fix.Panels {
		ps := &panelState{
			camera:      pf.Camera,
			hidden:      pf.Hidden,
			flags:       make(map[string]bool, len(pf.Flags)),
			unsupported: make(map[string]struct{}, len(pf.UnsupportedFlags)),
		}
		for k, v := range pf.Flags {
			ps.flags[k] = v
		}
		for _, f := range pf.UnsupportedFlags {
			ps.unsupported[f] = struct{}{}
		}
		if pf.Isolate != nil {
			ps.isolateOK = true
			ps.isolate = pf.Isolate.State
		}
		if pf.Capture != nil {
			ps.capture = *pf.Capture
		}
		h.panels[pf.Name] = ps
		h.order = append(h.order, pf.Name)
	}

	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) PanelExists(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.panels[name]
	return ok
}

func (h *Host) Panels() ([]host.Panel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	panels := make([]host.Panel, 0, len(h.order))
	for _, name := range h.order {
		ps := h.panels[name]
		if ps.hidden {
			continue
		}
		panels = append(panels, host.Panel{Name: name, Camera: ps.camera})
	}
	return panels, nil
}

func (h *Host) DisplayFlag(panel, flag string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[panel]
	if !ok {
		return false, host.ErrPanelNotFound
	}
	if _, bad := ps.unsupported[flag]; bad {
		return false, fmt.Errorf("flag %q on %s: %w", flag, panel, host.ErrUnsupported)
	}
	v, ok := ps.flags[flag]
	if !ok {
		return false, fmt.Errorf("flag %q on %s: %w", flag, panel, host.ErrUnsupported)
	}
	return v, nil
}

func (h *Host) SetDisplayFlags(panel string, flags map[string]bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[panel]
	if !ok {
		return host.ErrPanelNotFound
	}

	// Reject the whole edit when any flag is unsupported, the way a host
	// rejects a call with an unknown argument. Checked in sorted order so
	// the reported flag is deterministic.
	names := make([]string, 0, len(flags))
	for k := range flags {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, bad := ps.unsupported[k]; bad {
			return fmt.Errorf("flag %q on %s: %w", k, panel, host.ErrUnsupported)
		}
	}

	applied := make(map[string]bool, len(flags))
	for _, k := range names {
		ps.flags[k] = flags[k]
		applied[k] = flags[k]
	}
	h.calls = append(h.calls, Call{Op: OpSetDisplayFlags, Panel: panel, Flags: applied})
	return nil
}

func (h *Host) IsolateState(panel string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[panel]
	if !ok {
		return false, host.ErrPanelNotFound
	}
	if !ps.isolateOK {
		return false, fmt.Errorf("isolate select on %s: %w", panel, host.ErrUnsupported)
	}
	return ps.isolate, nil
}

func (h *Host) SetIsolateState(panel string, on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[panel]
	if !ok {
		return host.ErrPanelNotFound
	}
	if !ps.isolateOK {
		return fmt.Errorf("isolate select on %s: %w", panel, host.ErrUnsupported)
	}
	ps.isolate = on
	h.calls = append(h.calls, Call{Op: OpSetIsolateState, Panel: panel, State: on})
	return nil
}

func (h *Host) Selection() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.selection...)
}

func (h *Host) CurrentFrame() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

func (h *Host) CameraName(panel string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[panel]
	if !ok {
		return "", host.ErrPanelNotFound
	}
	if ps.camera == "" {
		return "", fmt.Errorf("camera of %s: %w", panel, host.ErrUnsupported)
	}
	return ps.camera, nil
}

func (h *Host) CaptureFrame(args host.CaptureArgs) (any, error) {
	h.mu.Lock()
	ps, ok := h.panels[args.Panel]
	if !ok {
		h.mu.Unlock()
		return nil, host.ErrPanelNotFound
	}
	cfg := ps.capture
	fill := cfg.Fill
	h.calls = append(h.calls, Call{Op: OpCaptureFrame, Panel: args.Panel, Args: args})
	h.mu.Unlock()

	if cfg.Fail == FailError {
		return nil, fmt.Errorf("render failed for %s", args.Panel)
	}

	writePath := args.Path
	returnPath := args.Path
	if cfg.Pattern {
		returnPath = patternPath(args.Path)
		writePath = substituteFrame(returnPath, args.StartFrame, args.FramePadding)
	}

	switch cfg.Fail {
	case FailMissing:
		// The host claims success but produces nothing.
	case FailEmpty:
		if err := os.WriteFile(writePath, nil, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", writePath, err)
		}
	default:
		if err := writeImage(writePath, args.Width, args.Height, fill); err != nil {
			return nil, fmt.Errorf("writing %s: %w", writePath, err)
		}
		h.log.Debug("frame rendered", "panel", args.Panel, "path", writePath,
			"width", args.Width, "height", args.Height)
	}

	switch cfg.Returns {
	case ReturnNone:
		return nil, nil
	case ReturnList:
		return []any{returnPath}, nil
	case ReturnInvalid:
		return 42, nil
	default:
		return returnPath, nil
	}
}

// Calls returns a copy of the recorded state-changing calls.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// PanelFlags returns a copy of the panel's current display toggles.
func (h *Host) PanelFlags(name string) map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[name]
	if !ok {
		return nil
	}
	flags := make(map[string]bool, len(ps.flags))
	for k, v := range ps.flags {
		flags[k] = v
	}
	return flags
}

// PanelIsolate returns the panel's current isolate state and whether the
// panel supports isolation at all.
func (h *Host) PanelIsolate(name string) (state, supported bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.panels[name]
	if !ok {
		return false, false
	}
	return ps.isolate, ps.isolateOK
}

// SetSelection replaces the scene selection.
func (h *Host) SetSelection(objects ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selection = append([]string(nil), objects...)
}

// SetFrame moves the time slider.
func (h *Host) SetFrame(frame int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = frame
}

// patternPath inserts the frame-number placeholder before the extension,
// mirroring hosts that name image sequences name.####.ext.
func patternPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + ".####"
	}
	return strings.TrimSuffix(path, ext) + ".####" + ext
}

func substituteFrame(path string, frame, padding int) string {
	if padding <= 0 {
		padding = 4
	}
	return strings.ReplaceAll(path, "####", fmt.Sprintf("%0*d", padding, frame))
}

func writeImage(path string, width, height int, fill string) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	c, err := parseFill(fill)
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) == ".png" {
		return png.Encode(f, img)
	}
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

func parseFill(fill string) (color.RGBA, error) {
	if fill == "" {
		fill = "#4a6da8"
	}
	if len(fill) != 7 || fill[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid fill color %q", fill)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(fill[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid fill color %q", fill)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
