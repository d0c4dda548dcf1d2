package capture

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/host"
)

const (
	// FramePlaceholder is the token hosts use for the frame number in
	// returned image paths.
	FramePlaceholder = "####"

	// framePadding is the zero-padding width requested from the host and
	// used when substituting FramePlaceholder.
	framePadding = 4
)

// Request describes one viewport capture. A Request is consumed by exactly
// one capture call.
type Request struct {
	Panel   string
	Path    string
	Width   int
	Height  int
	Filter  display.Filter
	Mode    display.Mode
	Preview bool
}

// Result reports one finished capture attempt. Passed is true only when the
// rendered file was found on disk with content. Failure carries the reason
// for a soft failure (file missing or empty); Error carries hard failures
// (panel not found, display edit refused, render error).
type Result struct {
	Panel         string
	Camera        string
	RequestedPath string
	Path          string
	Frame         int
	Bytes         int64
	Kind          string
	Duration      time.Duration
	Passed        bool
	Failure       string
	Error         error
}

// Capturer runs the save/mutate/render/verify/restore sequence for a single
// panel. It is stateless between calls and strictly sequential.
type Capturer struct {
	log *slog.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Capturer) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Capturer.
func New(opts ...Option) *Capturer {
	c := &Capturer{log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture takes one snapshot of a panel. The panel's display state is saved
// before any mutation and restored on every exit path, including render
// errors. The returned Result always carries the outcome; the Error field
// is also set for hard failures so batch drivers can keep going.
func (c *Capturer) Capture(h host.Host, req Request) *Result {
	start := time.Now()
	result := &Result{
		Panel:         req.Panel,
		RequestedPath: req.Path,
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if !h.PanelExists(req.Panel) {
		result.Error = fmt.Errorf("panel %q: %w", req.Panel, host.ErrPanelNotFound)
		return result
	}
	if camera, err := h.CameraName(req.Panel); err == nil {
		result.Camera = camera
	}

	snap := display.Save(h, req.Panel, c.log)
	plan := display.NewPlan(req.Mode, req.Filter)

	isolated := false
	defer func() {
		snap.Restore(h, req.Panel, isolated, c.log)
	}()

	var err error
	isolated, err = display.Apply(h, req.Panel, plan, snap.IsolateSupported, c.log)
	if err != nil {
		result.Error = fmt.Errorf("preparing panel %q: %w", req.Panel, err)
		return result
	}

	frame := h.CurrentFrame()
	result.Frame = frame

	c.log.Debug("rendering frame", "panel", req.Panel, "path", req.Path,
		"width", req.Width, "height", req.Height, "frame", frame,
		"ornaments", plan.ShowOrnaments)

	raw, err := h.CaptureFrame(host.CaptureArgs{
		Panel:         req.Panel,
		Path:          req.Path,
		Width:         req.Width,
		Height:        req.Height,
		ShowOrnaments: plan.ShowOrnaments,
		StartFrame:    frame,
		EndFrame:      frame,
		FramePadding:  framePadding,
	})
	if err != nil {
		result.Error = fmt.Errorf("capturing panel %q: %w", req.Panel, err)
		return result
	}

	final := c.resolvePath(raw, req.Path, frame)
	c.verify(result, final, req)
	return result
}

// resolvePath interprets the host's raw capture return value and substitutes
// the frame placeholder. Unusable shapes fall back to the requested path.
func (c *Capturer) resolvePath(raw any, requested string, frame int) string {
	var path string
	switch v := raw.(type) {
	case string:
		path = v
	case []string:
		if len(v) > 0 {
			path = v[0]
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				path = s
			}
		}
	}

	if path == "" {
		c.log.Warn("unusable capture return value, checking requested path instead",
			"value", fmt.Sprintf("%v", raw), "requested", requested)
		path = requested
	}

	if strings.Contains(path, FramePlaceholder) {
		resolved := strings.ReplaceAll(path, FramePlaceholder, fmt.Sprintf("%0*d", framePadding, frame))
		c.log.Debug("frame placeholder substituted", "pattern", path, "path", resolved)
		path = resolved
	}
	return path
}

// verify checks the resolved file on disk and fills in the Result. A file
// that is missing or empty is a soft failure: reported, never raised.
func (c *Capturer) verify(result *Result, path string, req Request) {
	info, err := os.Stat(path)
	if err != nil {
		result.Failure = fmt.Sprintf("capture file not found: %s", path)
		c.log.Warn("capture file not found after render", "panel", req.Panel, "path", path)
		return
	}
	if info.Size() == 0 {
		result.Failure = fmt.Sprintf("capture file is empty: %s", path)
		c.log.Warn("capture file is empty", "panel", req.Panel, "path", path)
		return
	}

	result.Passed = true
	result.Path = path
	result.Bytes = info.Size()
	result.Kind = sniffKind(path)
	if result.Kind == "" {
		c.log.Warn("capture file is not recognizable image data", "panel", req.Panel, "path", path)
	}

	// A host that renames its output by frame number leaves the originally
	// requested file behind as a stale placeholder.
	if req.Preview && path != req.Path {
		if _, err := os.Stat(req.Path); err == nil {
			if err := os.Remove(req.Path); err != nil {
				c.log.Warn("stale preview placeholder not removed", "path", req.Path, "error", err)
			} else {
				c.log.Debug("stale preview placeholder removed", "path", req.Path)
			}
		}
	}

	c.log.Info("capture complete", "panel", req.Panel, "path", path,
		"bytes", result.Bytes, "kind", result.Kind)
}

// sniffKind identifies the produced file's image type from its magic bytes.
// Best-effort: an unreadable or unrecognized file yields "".
func sniffKind(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	// 261 bytes covers every signature the matcher knows.
	buf := make([]byte, 261)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return ""
	}

	t, err := filetype.Match(buf[:n])
	if err != nil || t == filetype.Unknown {
		return ""
	}
	return t.Extension
}
