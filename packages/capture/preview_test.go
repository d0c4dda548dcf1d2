package capture

import (
	"os"
	"strings"
	"testing"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *PreviewSession {
	t.Helper()
	return NewPreviewSession(
		PreviewWithDir(t.TempDir()),
		PreviewWithLogger(discard()),
	)
}

func TestPreviewRefreshWritesTemp(t *testing.T) {
	h := captureHost(nil)
	s := newTestSession(t)
	defer s.Close()

	result, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	require.True(t, result.Passed)

	path := s.Path()
	require.NotEmpty(t, path)
	assert.Contains(t, path, "takesnap_preview_")
	assert.True(t, strings.HasSuffix(path, ".jpg"))
	assert.FileExists(t, path)
}

func TestPreviewRefreshReplacesPrevious(t *testing.T) {
	h := captureHost(nil)
	s := newTestSession(t)
	defer s.Close()

	_, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	first := s.Path()

	_, err = s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	second := s.Path()

	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)
	assert.FileExists(t, second)
}

func TestPreviewSelectedOnlyWithoutSelection(t *testing.T) {
	h := captureHost(nil)
	s := newTestSession(t)
	defer s.Close()

	_, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	previous := s.Path()
	callsBefore := len(h.Calls())

	result, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSelectedOnly)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Nil(t, result)
	assert.Equal(t, previous, s.Path(), "a skipped refresh must not disturb the previous preview")
	assert.FileExists(t, previous)
	assert.Len(t, h.Calls(), callsBefore, "a skipped refresh must not touch the host")
}

func TestPreviewSelectedOnlyWithSelection(t *testing.T) {
	h := captureHost(nil)
	h.SetSelection("pSphere1")
	s := newTestSession(t)
	defer s.Close()

	result, err := s.Refresh(h, "modelPanel1", display.FilterMesh, display.ModeSelectedOnly)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	state, _ := h.PanelIsolate("modelPanel1")
	assert.False(t, state, "isolation must be restored after the preview")
}

func TestPreviewCloseRemovesTemp(t *testing.T) {
	h := captureHost(nil)
	s := newTestSession(t)

	_, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	path := s.Path()
	require.FileExists(t, path)

	s.Close()
	assert.NoFileExists(t, path)
	assert.Empty(t, s.Path())
}

func TestPreviewFailureLeavesNothingBehind(t *testing.T) {
	h := captureHost(&scripthost.CaptureFixture{Fail: scripthost.FailError})
	dir := t.TempDir()
	s := NewPreviewSession(PreviewWithDir(dir), PreviewWithLogger(discard()))
	defer s.Close()

	result, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.Empty(t, s.Path())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPreviewSoftFailureCleansUp(t *testing.T) {
	h := captureHost(&scripthost.CaptureFixture{Fail: scripthost.FailEmpty})
	dir := t.TempDir()
	s := NewPreviewSession(PreviewWithDir(dir), PreviewWithLogger(discard()))
	defer s.Close()

	result, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.Empty(t, s.Path())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPreviewSizeOption(t *testing.T) {
	h := captureHost(nil)
	s := NewPreviewSession(
		PreviewWithDir(t.TempDir()),
		PreviewWithSize(160, 90),
		PreviewWithLogger(discard()),
	)
	defer s.Close()

	_, err := s.Refresh(h, "modelPanel1", display.FilterAll, display.ModeSceneObjects)
	require.NoError(t, err)

	var args []int
	for _, c := range h.Calls() {
		if c.Op == scripthost.OpCaptureFrame {
			args = []int{c.Args.Width, c.Args.Height}
		}
	}
	assert.Equal(t, []int{160, 90}, args)
}
