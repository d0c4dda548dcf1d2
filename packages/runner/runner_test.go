package runner

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/host"
	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func batchHost() *scripthost.Host {
	flags := map[string]bool{
		"allObjects":   true,
		"polymeshes":   true,
		"joints":       true,
		"grid":         true,
		"hud":          true,
		"manipulators": true,
	}
	fix := &scripthost.Fixture{
		Frame: 1,
		Panels: []scripthost.PanelFixture{
			{Name: "modelPanel1", Camera: "persp", Flags: flags},
			{Name: "modelPanel2", Camera: "rig:shot|cam", Flags: flags},
			{Name: "modelPanel3", Flags: flags},
		},
	}
	return scripthost.New(fix, scripthost.WithLogger(discard()))
}

func testBatch(dir string, panels ...string) Batch {
	return Batch{
		Panels: panels,
		Dir:    dir,
		Base:   "snapshot",
		Ext:    ".jpg",
		Width:  320,
		Height: 180,
		Filter: display.FilterAll,
		Mode:   display.ModeSceneObjects,
	}
}

func TestRunCapturesEveryPanel(t *testing.T) {
	h := batchHost()
	dir := t.TempDir()

	result, err := New(WithLogger(discard())).Run(h, testBatch(dir,
		"modelPanel1", "modelPanel2", "modelPanel3"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Results, 3)

	assert.FileExists(t, filepath.Join(dir, "snapshot_persp.jpg"))
	assert.FileExists(t, filepath.Join(dir, "snapshot_rig_shot_cam.jpg"))
	assert.FileExists(t, filepath.Join(dir, "snapshot_modelPanel3.jpg"))
}

func TestRunContinuesAfterFailure(t *testing.T) {
	flags := map[string]bool{"allObjects": true, "grid": true, "manipulators": true}
	fix := &scripthost.Fixture{
		Frame: 1,
		Panels: []scripthost.PanelFixture{
			{Name: "modelPanel1", Camera: "persp", Flags: flags},
			{Name: "modelPanel2", Camera: "side", Flags: flags,
				Capture: &scripthost.CaptureFixture{Fail: scripthost.FailError}},
			{Name: "modelPanel3", Camera: "top", Flags: flags},
		},
	}
	h := scripthost.New(fix, scripthost.WithLogger(discard()))
	before := h.PanelFlags("modelPanel2")
	dir := t.TempDir()

	result, err := New(WithLogger(discard())).Run(h, testBatch(dir,
		"modelPanel1", "modelPanel2", "modelPanel3"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Passed)
	require.Error(t, result.Results[1].Error)
	assert.True(t, result.Results[2].Passed, "a failing panel must not stop the run")

	assert.FileExists(t, filepath.Join(dir, "snapshot_persp.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "snapshot_side.jpg"))
	assert.FileExists(t, filepath.Join(dir, "snapshot_top.jpg"))

	after := h.PanelFlags("modelPanel2")
	for flag, want := range before {
		assert.Equal(t, want, after[flag], flag)
	}
}

func TestRunReportsMissingPanel(t *testing.T) {
	h := batchHost()
	dir := t.TempDir()

	result, err := New(WithLogger(discard())).Run(h, testBatch(dir,
		"modelPanel1", "modelPanel9"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.ErrorIs(t, result.Results[1].Error, host.ErrPanelNotFound)
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	h := batchHost()

	result, err := New(WithLogger(discard())).Run(h, testBatch(t.TempDir()))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "no panels")
}

func TestRunExpandsTemplateBase(t *testing.T) {
	h := batchHost()
	dir := t.TempDir()

	batch := testBatch(dir, "modelPanel1", "modelPanel2")
	batch.Base = "{panel}_f{frame}"

	result, err := New(WithLogger(discard())).Run(h, batch)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Passed)
	assert.FileExists(t, filepath.Join(dir, "modelPanel1_f0001.jpg"))
	assert.FileExists(t, filepath.Join(dir, "modelPanel2_f0001.jpg"))
}

func TestOutputPath(t *testing.T) {
	batch := testBatch("renders", "modelPanel1")

	t.Run("plain base composes with the camera", func(t *testing.T) {
		got := batch.OutputPath("modelPanel1", "persp", 12)
		assert.Equal(t, filepath.Join("renders", "snapshot_persp.jpg"), got)
	})

	t.Run("template base expands per panel", func(t *testing.T) {
		b := batch
		b.Base = "{camera}_{res}_f{frame}"
		got := b.OutputPath("modelPanel1", "rig:cam", 12)
		assert.Equal(t, filepath.Join("renders", "rig_cam_320x180_f0012.jpg"), got)
	})
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		camera string
		panel  string
		want   string
	}{
		{"plain camera", "persp", "modelPanel1", "snapshot_persp.jpg"},
		{"camera path", "rig:shot|cam", "modelPanel2", "snapshot_rig_shot_cam.jpg"},
		{"no camera", "", "modelPanel4", "snapshot_modelPanel4.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename("snapshot", tt.camera, tt.panel, ".jpg"))
		})
	}
}
