package display

import (
	"fmt"
	"log/slog"

	"github.com/shaurasan/SnapShotTool/packages/host"
)

// Plan is the resolved display mutation for one capture: whether viewport
// ornaments are rendered, whether isolate-select should be attempted, and
// which toggles to enable after the category disable pass.
type Plan struct {
	ShowOrnaments bool
	WantIsolate   bool
	Enable        map[string]bool
}

// NewPlan resolves a mode and filter into a Plan.
func NewPlan(mode Mode, filter Filter) Plan {
	p := Plan{
		ShowOrnaments: true,
		Enable:        filter.EnableFlags(),
	}

	switch mode {
	case ModeViewportAll:
		p.ShowOrnaments = true
	case ModeSelectedOnly:
		p.ShowOrnaments = false
		p.WantIsolate = true
	default: // ModeSceneObjects
		p.ShowOrnaments = false
	}

	return p
}

// Apply mutates a panel's display state for a capture and reports whether it
// activated isolate-select. Isolation that cannot be activated (empty
// selection, unsupported panel, host refusal) is skipped with a log line;
// failures editing the display toggles are real errors.
func Apply(h host.Host, panel string, plan Plan, isolateSupported bool, log *slog.Logger) (bool, error) {
	if log == nil {
		log = slog.Default()
	}

	isolated := false
	if plan.WantIsolate {
		selection := h.Selection()
		switch {
		case len(selection) == 0:
			log.Warn("selected-only mode with empty selection, capturing without isolation", "panel", panel)
		case !isolateSupported:
			log.Warn("selected-only mode but isolate select is not available", "panel", panel)
		default:
			if err := h.SetIsolateState(panel, true); err != nil {
				log.Warn("isolate select not activated", "panel", panel, "error", err)
			} else {
				isolated = true
				log.Debug("isolate select activated", "panel", panel, "selection", len(selection))
			}
		}
	}

	if err := h.SetDisplayFlags(panel, categoryOff); err != nil {
		return isolated, fmt.Errorf("disabling object categories: %w", err)
	}
	if len(plan.Enable) > 0 {
		if err := h.SetDisplayFlags(panel, plan.Enable); err != nil {
			return isolated, fmt.Errorf("enabling filter categories: %w", err)
		}
	}

	return isolated, nil
}
