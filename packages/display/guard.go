package display

import (
	"errors"
	"log/slog"

	"github.com/shaurasan/SnapShotTool/packages/host"
)

// Snapshot remembers a panel's display state so it can be put back after a
// capture mutates it. Toggles the panel could not answer for are absent
// from Flags and are left alone on restore.
type Snapshot struct {
	Flags            map[string]bool
	Isolate          bool
	IsolateSupported bool
}

// Save reads every display toggle and the isolate-select state of a panel.
// Unreadable toggles are skipped; saving is best-effort and never fails.
func Save(h host.Host, panel string, log *slog.Logger) *Snapshot {
	if log == nil {
		log = slog.Default()
	}

	snap := &Snapshot{
		Flags: make(map[string]bool, len(QueryFlags)),
	}

	for _, flag := range QueryFlags {
		v, err := h.DisplayFlag(panel, flag)
		if err != nil {
			log.Debug("display flag not readable", "panel", panel, "flag", flag, "error", err)
			continue
		}
		snap.Flags[flag] = v
	}
	log.Debug("display state saved", "panel", panel, "flags", len(snap.Flags))

	state, err := h.IsolateState(panel)
	switch {
	case err == nil:
		snap.Isolate = state
		snap.IsolateSupported = true
	case errors.Is(err, host.ErrUnsupported):
		log.Debug("isolate select not available", "panel", panel)
	default:
		// The panel supports isolation but the read failed; assume off so
		// restore has a sane target.
		snap.IsolateSupported = true
		log.Warn("isolate state not readable", "panel", panel, "error", err)
	}

	return snap
}

// Restore puts the saved display state back. Isolation is re-applied first,
// and only when this capture activated it and the panel's current state
// differs from the saved one. Restore failures are logged, never raised, so
// a restore problem cannot mask the error that triggered it.
func (s *Snapshot) Restore(h host.Host, panel string, isolateActivated bool, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	if isolateActivated && s.IsolateSupported {
		current, err := h.IsolateState(panel)
		if err != nil {
			log.Warn("isolate state not readable during restore", "panel", panel, "error", err)
		} else if current != s.Isolate {
			if err := h.SetIsolateState(panel, s.Isolate); err != nil {
				log.Warn("isolate restore failed", "panel", panel, "error", err)
			} else {
				log.Debug("isolate state restored", "panel", panel, "state", s.Isolate)
			}
		}
	}

	if len(s.Flags) == 0 {
		log.Warn("no display state to restore", "panel", panel)
		return
	}
	if err := h.SetDisplayFlags(panel, s.Flags); err != nil {
		log.Warn("display restore failed", "panel", panel, "error", err)
		return
	}
	log.Debug("display state restored", "panel", panel, "flags", len(s.Flags))
}
