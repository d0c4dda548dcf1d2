package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/runner"
)

func testBatch() (runner.Batch, *runner.BatchResult) {
	batch := runner.Batch{
		Panels: []string{"modelPanel1", "modelPanel4"},
		Dir:    "./snapshots",
		Base:   "snapshot",
		Ext:    ".jpg",
		Width:  1280,
		Height: 720,
		Filter: display.FilterMesh,
		Mode:   display.ModeSceneObjects,
	}
	result := &runner.BatchResult{
		Results: []*capture.Result{
			{
				Panel:    "modelPanel1",
				Camera:   "persp",
				Path:     "./snapshots/snapshot_persp.jpg",
				Frame:    12,
				Bytes:    2048,
				Passed:   true,
				Duration: 40 * time.Millisecond,
			},
			{
				Panel:    "modelPanel4",
				Camera:   "top",
				Path:     "./snapshots/snapshot_top.jpg",
				Failure:  "rendered file is empty",
				Duration: 15 * time.Millisecond,
			},
		},
		Passed:   1,
		Failed:   1,
		Duration: 55 * time.Millisecond,
	}
	return batch, result
}

func TestOpenCreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())

	_, err = os.Stat(path)
	assert.NoError(t, err)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordBatch(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	batch, result := testBatch()
	runID, err := store.RecordBatch(batch, result)
	require.NoError(t, err)
	assert.Positive(t, runID)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, 2, run.Panels)
	assert.Equal(t, 1, run.Passed)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1280, run.Width)
	assert.Equal(t, 720, run.Height)
	assert.Equal(t, "mesh", run.Filter)
	assert.Equal(t, "scene_objects", run.Mode)
	assert.Equal(t, "./snapshots", run.Dir)
	assert.Equal(t, 55*time.Millisecond, run.Duration)
	assert.WithinDuration(t, time.Now().UTC(), run.RecordedAt, time.Minute)
}

func TestCaptures(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	batch, result := testBatch()
	runID, err := store.RecordBatch(batch, result)
	require.NoError(t, err)

	captures, err := store.Captures(runID)
	require.NoError(t, err)
	require.Len(t, captures, 2)

	assert.Equal(t, "modelPanel1", captures[0].Panel)
	assert.Equal(t, "persp", captures[0].Camera)
	assert.Equal(t, "./snapshots/snapshot_persp.jpg", captures[0].Path)
	assert.Equal(t, 12, captures[0].Frame)
	assert.Equal(t, int64(2048), captures[0].Bytes)
	assert.True(t, captures[0].Passed)
	assert.Empty(t, captures[0].Failure)
	assert.Equal(t, 40*time.Millisecond, captures[0].Duration)

	assert.Equal(t, "modelPanel4", captures[1].Panel)
	assert.False(t, captures[1].Passed)
	assert.Equal(t, "rendered file is empty", captures[1].Failure)
}

func TestRecordBatchStoresHardFailureText(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	batch, result := testBatch()
	result.Results[1].Failure = ""
	result.Results[1].Error = fmt.Errorf("panel %q: not found", "modelPanel4")

	runID, err := store.RecordBatch(batch, result)
	require.NoError(t, err)

	captures, err := store.Captures(runID)
	require.NoError(t, err)
	require.Len(t, captures, 2)
	assert.Contains(t, captures[1].Failure, "not found")
}

func TestRunsNewestFirst(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	batch, result := testBatch()
	first, err := store.RecordBatch(batch, result)
	require.NoError(t, err)
	second, err := store.RecordBatch(batch, result)
	require.NoError(t, err)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	runs, err = store.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second, runs[0].ID)
}

func TestPrune(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	batch, result := testBatch()
	for i := 0; i < 5; i++ {
		_, err := store.RecordBatch(batch, result)
		require.NoError(t, err)
	}

	removed, err := store.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Captures of pruned runs are gone too.
	captures, err := store.Captures(runs[1].ID - 1)
	require.NoError(t, err)
	assert.Empty(t, captures)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)

	batch, result := testBatch()
	_, err = store.RecordBatch(batch, result)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
