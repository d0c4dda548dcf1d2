// Package runner sequences captures over a set of panels, one at a time.
package runner

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/host"
	"github.com/shaurasan/SnapShotTool/packages/naming"
)

// Batch describes one run over a set of panels.
type Batch struct {
	Panels []string
	Dir    string
	Base   string
	Ext    string
	Width  int
	Height int
	Filter display.Filter
	Mode   display.Mode
}

// BatchResult aggregates the per-panel outcomes of one run.
type BatchResult struct {
	Results  []*capture.Result
	Passed   int
	Failed   int
	Duration time.Duration
}

// Runner drives captures over panels strictly in order.
type Runner struct {
	capturer *capture.Capturer
	log      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.capturer = capture.New(capture.WithLogger(r.log))
	return r
}

var cameraSanitizer = strings.NewReplacer("|", "_", ":", "_")

// Filename builds the output name for one panel: base, underscore, the
// panel's camera with path and namespace separators flattened, then the
// extension. An unreadable camera falls back to the panel name.
func Filename(base, camera, panel, ext string) string {
	suffix := panel
	if camera != "" {
		suffix = cameraSanitizer.Replace(camera)
	}
	return base + "_" + suffix + ext
}

// OutputPath resolves the file a panel's capture is written to. A base name
// carrying {token} templates is expanded per panel; a plain base composes
// base, camera and extension via Filename.
func (b Batch) OutputPath(panel, camera string, frame int) string {
	if naming.HasTokens(b.Base) {
		name := naming.Expand(b.Base, naming.Context{
			Panel:  panel,
			Camera: camera,
			Frame:  frame,
			Width:  b.Width,
			Height: b.Height,
			Filter: string(b.Filter),
			Mode:   string(b.Mode),
		})
		return filepath.Join(b.Dir, name+b.Ext)
	}
	return filepath.Join(b.Dir, Filename(b.Base, camera, panel, b.Ext))
}

// Run captures every panel in the batch in order. A failing panel is
// recorded in the result and the run moves on to the next; the error return
// covers batch-level misconfiguration only.
func (r *Runner) Run(h host.Host, batch Batch) (*BatchResult, error) {
	if len(batch.Panels) == 0 {
		return nil, fmt.Errorf("no panels to capture")
	}

	start := time.Now()
	result := &BatchResult{}

	for _, panel := range batch.Panels {
		camera, err := h.CameraName(panel)
		if err != nil {
			r.log.Warn("camera not readable, panel name used for the file name",
				"panel", panel, "error", err)
		}
		path := batch.OutputPath(panel, camera, h.CurrentFrame())

		res := r.capturer.Capture(h, capture.Request{
			Panel:  panel,
			Path:   path,
			Width:  batch.Width,
			Height: batch.Height,
			Filter: batch.Filter,
			Mode:   batch.Mode,
		})

		result.Results = append(result.Results, res)
		switch {
		case res.Passed:
			result.Passed++
		case res.Error != nil:
			result.Failed++
			r.log.Warn("panel capture failed", "panel", panel, "error", res.Error)
		default:
			result.Failed++
			r.log.Warn("panel capture failed", "panel", panel, "reason", res.Failure)
		}
	}

	result.Duration = time.Since(start)
	r.log.Info("batch finished", "panels", len(batch.Panels),
		"passed", result.Passed, "failed", result.Failed,
		"duration", result.Duration)
	return result, nil
}
