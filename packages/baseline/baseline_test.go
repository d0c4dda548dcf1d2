package baseline

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return img
}

func savePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var (
	red  = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	blue = color.RGBA{R: 40, G: 40, B: 220, A: 255}
)

func TestCompareNewBaseline(t *testing.T) {
	dir := t.TempDir()
	captured := savePNG(t, dir, "persp.png", solidImage(64, 48, red))

	m := NewManager(dir, WithUpdate(true))
	result := m.Compare("persp.png", captured)

	require.True(t, result.Passed, result.Message)
	assert.True(t, result.IsNew)
	assert.Equal(t, "new baseline recorded", result.Message)
	assert.FileExists(t, filepath.Join(dir, Dir, "persp.png"))
}

func TestCompareMissingNoUpdate(t *testing.T) {
	dir := t.TempDir()
	captured := savePNG(t, dir, "persp.png", solidImage(64, 48, red))

	m := NewManager(dir)
	result := m.Compare("persp.png", captured)

	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "--update")
}

func TestCompareMatch(t *testing.T) {
	dir := t.TempDir()
	captured := savePNG(t, dir, "persp.png", solidImage(64, 48, red))

	recorder := NewManager(dir, WithUpdate(true))
	require.True(t, recorder.Compare("persp.png", captured).Passed)

	m := NewManager(dir)
	result := m.Compare("persp.png", captured)

	assert.True(t, result.Passed, result.Message)
	assert.False(t, result.IsNew)
	assert.False(t, result.WasUpdated)
	assert.Zero(t, result.DiffPixels)
}

func TestCompareMismatch(t *testing.T) {
	dir := t.TempDir()
	first := savePNG(t, dir, "persp.png", solidImage(64, 48, red))

	recorder := NewManager(dir, WithUpdate(true))
	require.True(t, recorder.Compare("persp.png", first).Passed)

	changed := savePNG(t, dir, "persp2.png", solidImage(64, 48, blue))

	m := NewManager(dir)
	result := m.Compare("persp.png", changed)

	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "baseline mismatch")
	assert.Equal(t, 64*48, result.DiffPixels)
	assert.InDelta(t, 100.0, result.Percent, 0.01)
}

func TestCompareUpdateExisting(t *testing.T) {
	dir := t.TempDir()
	first := savePNG(t, dir, "persp.png", solidImage(64, 48, red))

	m := NewManager(dir, WithUpdate(true))
	require.True(t, m.Compare("persp.png", first).Passed)

	changed := savePNG(t, dir, "persp2.png", solidImage(64, 48, blue))
	result := m.Compare("persp.png", changed)

	require.True(t, result.Passed, result.Message)
	assert.True(t, result.WasUpdated)
	assert.Equal(t, "baseline updated", result.Message)

	// The stored baseline now matches the changed capture.
	checker := NewManager(dir)
	assert.True(t, checker.Compare("persp.png", changed).Passed)
}

func TestCompareWithinMaxPercent(t *testing.T) {
	dir := t.TempDir()
	base := solidImage(100, 100, red)
	first := savePNG(t, dir, "persp.png", base)

	recorder := NewManager(dir, WithUpdate(true))
	require.True(t, recorder.Compare("persp.png", first).Passed)

	// A 10x10 patch is 1% of the image.
	patched := solidImage(100, 100, red)
	draw.Draw(patched, image.Rect(0, 0, 10, 10), &image.Uniform{C: blue}, image.Point{}, draw.Src)
	changed := savePNG(t, dir, "persp2.png", patched)

	strict := NewManager(dir)
	assert.False(t, strict.Compare("persp.png", changed).Passed)

	loose := NewManager(dir, WithMaxPercent(5))
	result := loose.Compare("persp.png", changed)
	assert.True(t, result.Passed, result.Message)
	assert.Equal(t, 100, result.DiffPixels)
}

func TestCompareWritesDiffImage(t *testing.T) {
	dir := t.TempDir()
	diffDir := filepath.Join(dir, "diffs")
	first := savePNG(t, dir, "persp.png", solidImage(32, 32, red))

	recorder := NewManager(dir, WithUpdate(true))
	require.True(t, recorder.Compare("persp.png", first).Passed)

	changed := savePNG(t, dir, "persp2.png", solidImage(32, 32, blue))

	m := NewManager(dir, WithDiffDir(diffDir))
	result := m.Compare("persp.png", changed)

	require.False(t, result.Passed)
	require.NotEmpty(t, result.DiffPath)
	assert.Equal(t, filepath.Join(diffDir, "persp.diff.png"), result.DiffPath)

	f, err := os.Open(result.DiffPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestCompareUnreadableCapture(t *testing.T) {
	dir := t.TempDir()
	first := savePNG(t, dir, "persp.png", solidImage(32, 32, red))

	recorder := NewManager(dir, WithUpdate(true))
	require.True(t, recorder.Compare("persp.png", first).Passed)

	m := NewManager(dir)
	result := m.Compare("persp.png", filepath.Join(dir, "missing.png"))

	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "failed to compare")
}
