package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/host"
)

// ErrNoSelection is returned when a selected-only preview is requested with
// nothing selected in the host.
var ErrNoSelection = errors.New("nothing is selected")

// Default preview dimensions.
const (
	DefaultPreviewWidth  = 320
	DefaultPreviewHeight = 180
)

// PreviewSession manages low-resolution throwaway captures. At most one
// preview file exists at a time: each refresh deletes the previous one, and
// Close removes whatever is left.
type PreviewSession struct {
	capturer *Capturer
	log      *slog.Logger
	dir      string
	width    int
	height   int
	temp     string
}

// PreviewOption configures a PreviewSession.
type PreviewOption func(*PreviewSession)

// PreviewWithSize overrides the preview resolution.
func PreviewWithSize(width, height int) PreviewOption {
	return func(s *PreviewSession) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// PreviewWithDir places preview files in dir instead of the system temp
// directory.
func PreviewWithDir(dir string) PreviewOption {
	return func(s *PreviewSession) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// PreviewWithLogger sets the logger. Defaults to slog.Default().
func PreviewWithLogger(l *slog.Logger) PreviewOption {
	return func(s *PreviewSession) {
		if l != nil {
			s.log = l
		}
	}
}

// NewPreviewSession creates a session writing to the system temp directory
// at the default preview resolution.
func NewPreviewSession(opts ...PreviewOption) *PreviewSession {
	s := &PreviewSession{
		log:    slog.Default(),
		dir:    os.TempDir(),
		width:  DefaultPreviewWidth,
		height: DefaultPreviewHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.capturer = New(WithLogger(s.log))
	return s
}

// Path returns the current preview file, or "" when none exists.
func (s *PreviewSession) Path() string {
	return s.temp
}

// Refresh replaces the previous preview with a fresh capture of panel. A
// selected-only refresh with an empty selection is skipped and returns
// ErrNoSelection before anything is mutated or deleted. Soft capture
// failures are reported through the Result with a nil error.
func (s *PreviewSession) Refresh(h host.Host, panel string, filter display.Filter, mode display.Mode) (*Result, error) {
	if mode == display.ModeSelectedOnly && len(h.Selection()) == 0 {
		s.log.Warn("selection is empty, preview not refreshed", "panel", panel)
		return nil, ErrNoSelection
	}

	s.cleanup()
	name := fmt.Sprintf("takesnap_preview_%s.jpg", uuid.NewString())
	s.temp = filepath.Join(s.dir, name)

	result := s.capturer.Capture(h, Request{
		Panel:   panel,
		Path:    s.temp,
		Width:   s.width,
		Height:  s.height,
		Filter:  filter,
		Mode:    mode,
		Preview: true,
	})
	if result.Error != nil {
		s.cleanup()
		return result, result.Error
	}
	if !result.Passed {
		s.cleanup()
		return result, nil
	}

	s.temp = result.Path
	return result, nil
}

// Close removes the outstanding preview file, if any.
func (s *PreviewSession) Close() {
	s.cleanup()
}

func (s *PreviewSession) cleanup() {
	if s.temp == "" {
		return
	}
	if _, err := os.Stat(s.temp); err == nil {
		if err := os.Remove(s.temp); err != nil {
			s.log.Warn("preview file not removed", "path", s.temp, "error", err)
		} else {
			s.log.Debug("preview file removed", "path", s.temp)
		}
	}
	s.temp = ""
}
