package imagediff

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func solidImage(width, height int, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return img
}

func savePNG(t *testing.T, dir, name string, img *image.RGBA) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

func TestCompareIdentical(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(64, 48, gray))
	b := savePNG(t, dir, "b.png", solidImage(64, 48, gray))

	result, err := New(WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)

	assert.Equal(t, 64, result.Width)
	assert.Equal(t, 48, result.Height)
	assert.Equal(t, 64*48, result.Pixels)
	assert.Equal(t, 0, result.DiffPixels)
	assert.Zero(t, result.Percent)
}

func TestCompareFindsPatch(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(100, 100, gray))

	patched := solidImage(100, 100, gray)
	red := color.RGBA{R: 255, A: 255}
	draw.Draw(patched, image.Rect(0, 0, 10, 10), &image.Uniform{C: red}, image.Point{}, draw.Src)
	b := savePNG(t, dir, "b.png", patched)

	result, err := New(WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)

	assert.Equal(t, 100, result.DiffPixels)
	assert.InDelta(t, 1.0, result.Percent, 0.001)
}

func TestCompareTolerance(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(32, 32, gray))
	noisy := color.RGBA{R: 132, G: 132, B: 132, A: 255}
	b := savePNG(t, dir, "b.png", solidImage(32, 32, noisy))

	result, err := New(WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)
	assert.Zero(t, result.DiffPixels, "a 4-step shift sits inside the default tolerance")

	result, err = New(WithTolerance(0), WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, 32*32, result.DiffPixels)
}

func TestCompareSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(64, 64, gray))
	b := savePNG(t, dir, "b.png", solidImage(32, 32, gray))

	_, err := New(WithLogger(discard())).Compare(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sizes differ")
}

func TestCompareDownscale(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(64, 64, gray))
	b := savePNG(t, dir, "b.png", solidImage(64, 64, gray))

	result, err := New(WithDownscale(2), WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)

	assert.Equal(t, 32, result.Width)
	assert.Equal(t, 32, result.Height)
	assert.Equal(t, 32*32, result.Pixels)
	assert.Zero(t, result.DiffPixels)
}

func TestCompareMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(16, 16, gray))

	_, err := New(WithLogger(discard())).Compare(a, filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestSaveDiff(t *testing.T) {
	dir := t.TempDir()
	a := savePNG(t, dir, "a.png", solidImage(32, 32, gray))
	b := savePNG(t, dir, "b.png", solidImage(32, 32, color.RGBA{R: 200, G: 50, B: 50, A: 255}))

	result, err := New(WithLogger(discard())).Compare(a, b)
	require.NoError(t, err)

	out := filepath.Join(dir, "diff.png")
	require.NoError(t, result.SaveDiff(out))
	assert.FileExists(t, out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}
