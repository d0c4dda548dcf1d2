package display

import (
	"log/slog"
	"testing"

	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func guardFixture() *scripthost.Fixture {
	return &scripthost.Fixture{
		Frame:     5,
		Selection: []string{"|pCube1"},
		Panels: []scripthost.PanelFixture{
			{
				Name:   "modelPanel4",
				Camera: "persp",
				Flags: map[string]bool{
					"allObjects": true,
					"polymeshes": true,
					"joints":     false,
					"nurbsCurves": true,
					"grid":       true,
					"hud":        true,
					"manipulators": true,
				},
				UnsupportedFlags: []string{"wireframeOnShaded"},
				Isolate:          &scripthost.IsolateFixture{State: false},
			},
			{
				Name:   "modelPanel5",
				Camera: "side",
				Flags:  map[string]bool{"allObjects": true, "grid": false},
			},
		},
	}
}

func TestSaveSkipsUnsupportedFlags(t *testing.T) {
	h := scripthost.New(guardFixture())

	snap := Save(h, "modelPanel4", discard())

	assert.NotContains(t, snap.Flags, "wireframeOnShaded")
	assert.Equal(t, true, snap.Flags["allObjects"])
	assert.Equal(t, false, snap.Flags["joints"])
	assert.True(t, snap.IsolateSupported)
	assert.False(t, snap.Isolate)
}

func TestSaveWithoutIsolateSupport(t *testing.T) {
	h := scripthost.New(guardFixture())

	snap := Save(h, "modelPanel5", discard())

	assert.False(t, snap.IsolateSupported)
	assert.Equal(t, map[string]bool{"allObjects": true, "grid": false}, snap.Flags)
}

func TestRestoreRoundTrip(t *testing.T) {
	h := scripthost.New(guardFixture())
	before := h.PanelFlags("modelPanel4")

	snap := Save(h, "modelPanel4", discard())

	// Scramble the panel the way a capture mutation would.
	require.NoError(t, h.SetDisplayFlags("modelPanel4", map[string]bool{
		"allObjects": false, "polymeshes": false, "joints": true, "manipulators": false,
	}))

	snap.Restore(h, "modelPanel4", false, discard())

	after := h.PanelFlags("modelPanel4")
	for flag, want := range before {
		assert.Equal(t, want, after[flag], "flag %s", flag)
	}
}

func TestRestoreIsolateOnlyWhenActivated(t *testing.T) {
	h := scripthost.New(guardFixture())
	snap := Save(h, "modelPanel4", discard())

	// Isolation flipped by the capture.
	require.NoError(t, h.SetIsolateState("modelPanel4", true))

	// Not activated by the guard's caller: isolation is left alone.
	snap.Restore(h, "modelPanel4", false, discard())
	state, _ := h.PanelIsolate("modelPanel4")
	assert.True(t, state)

	// Activated by the caller: put back to the saved value.
	snap.Restore(h, "modelPanel4", true, discard())
	state, _ = h.PanelIsolate("modelPanel4")
	assert.False(t, state)
}

func TestRestoreIsolateSkipsWhenUnchanged(t *testing.T) {
	h := scripthost.New(guardFixture())
	snap := Save(h, "modelPanel4", discard())

	snap.Restore(h, "modelPanel4", true, discard())

	for _, call := range h.Calls() {
		assert.NotEqual(t, scripthost.OpSetIsolateState, call.Op)
	}
}

func TestRestoreSurvivesUnsupportedIsolate(t *testing.T) {
	h := scripthost.New(guardFixture())
	snap := Save(h, "modelPanel5", discard())

	require.NoError(t, h.SetDisplayFlags("modelPanel5", map[string]bool{"allObjects": false}))

	// Must not panic or error even though the panel has no isolation.
	snap.Restore(h, "modelPanel5", true, discard())
	assert.True(t, h.PanelFlags("modelPanel5")["allObjects"])
}
