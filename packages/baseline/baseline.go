// Package baseline keeps golden captures on disk and compares fresh
// captures against them pixel by pixel.
package baseline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaurasan/SnapShotTool/packages/imagediff"
)

// Dir is the directory name baselines are stored in, under the manager's
// root.
const Dir = "__baselines__"

// Manager stores and compares baseline images. Comparing a capture whose
// baseline is missing fails unless update mode is on, in which case the
// capture is recorded as the new baseline.
type Manager struct {
	root       string
	update     bool
	maxPercent float64
	tolerance  int
	diffDir    string
	differ     *imagediff.Comparer
	log        *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithUpdate turns update mode on or off.
func WithUpdate(update bool) Option {
	return func(m *Manager) {
		m.update = update
	}
}

// WithMaxPercent sets the share of differing pixels, in percent, a
// comparison may reach and still pass. Negative values are ignored.
func WithMaxPercent(p float64) Option {
	return func(m *Manager) {
		if p >= 0 {
			m.maxPercent = p
		}
	}
}

// WithTolerance sets the per-channel tolerance below which two pixels count
// as equal. Negative values are ignored.
func WithTolerance(tol int) Option {
	return func(m *Manager) {
		if tol >= 0 {
			m.tolerance = tol
		}
	}
}

// WithDiffDir sets a directory difference images are written to on
// mismatches. Empty disables them.
func WithDiffDir(dir string) Option {
	return func(m *Manager) {
		m.diffDir = dir
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates a manager storing baselines under root.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:      root,
		tolerance: imagediff.DefaultTolerance,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.differ = imagediff.New(
		imagediff.WithTolerance(m.tolerance),
		imagediff.WithLogger(m.log),
	)
	return m
}

// Result reports one baseline comparison.
type Result struct {
	Name         string
	BaselinePath string
	Passed       bool
	IsNew        bool
	WasUpdated   bool
	Message      string
	DiffPixels   int
	Percent      float64
	DiffPath     string
}

// Compare checks a captured image against the stored baseline of the same
// name. In update mode a missing baseline is recorded and a mismatched one
// replaced; otherwise both fail.
func (m *Manager) Compare(name, capturedPath string) *Result {
	result := &Result{
		Name:         name,
		BaselinePath: filepath.Join(m.root, Dir, name),
	}

	if _, err := os.Stat(result.BaselinePath); err != nil {
		if !os.IsNotExist(err) {
			result.Message = fmt.Sprintf("failed to read baseline: %v", err)
			return result
		}

		if !m.update {
			result.Message = "baseline does not exist (run with --update to create)"
			return result
		}

		if err := copyFile(capturedPath, result.BaselinePath); err != nil {
			result.Message = fmt.Sprintf("failed to record baseline: %v", err)
			return result
		}
		result.Passed = true
		result.IsNew = true
		result.Message = "new baseline recorded"
		return result
	}

	diff, err := m.differ.Compare(result.BaselinePath, capturedPath)
	if err != nil {
		result.Message = fmt.Sprintf("failed to compare: %v", err)
		return result
	}

	result.DiffPixels = diff.DiffPixels
	result.Percent = diff.Percent

	if diff.Percent <= m.maxPercent {
		result.Passed = true
		return result
	}

	if m.update {
		if err := copyFile(capturedPath, result.BaselinePath); err != nil {
			result.Message = fmt.Sprintf("failed to update baseline: %v", err)
			return result
		}
		result.Passed = true
		result.WasUpdated = true
		result.Message = "baseline updated"
		return result
	}

	result.Message = fmt.Sprintf("baseline mismatch: %d of %d pixels differ (%.2f%%)",
		diff.DiffPixels, diff.Pixels, diff.Percent)
	m.writeDiff(name, diff, result)
	return result
}

// writeDiff saves the difference image for a failed comparison when a diff
// directory is configured.
func (m *Manager) writeDiff(name string, diff *imagediff.Result, result *Result) {
	if m.diffDir == "" {
		return
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	path := filepath.Join(m.diffDir, base+".diff.png")

	if err := os.MkdirAll(m.diffDir, 0755); err != nil {
		m.log.Warn("diff image not written", "path", path, "error", err)
		return
	}
	if err := diff.SaveDiff(path); err != nil {
		m.log.Warn("diff image not written", "path", path, "error", err)
		return
	}
	result.DiffPath = path
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
