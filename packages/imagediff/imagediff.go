// Package imagediff compares two rendered frames pixel by pixel. It backs
// golden-image checks: capture a panel, compare against a blessed frame and
// fail the check when too many pixels moved.
package imagediff

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultTolerance is the per-channel delta below which two pixels count as
// equal. JPEG recompression shifts neighboring pixels slightly; the
// tolerance keeps that noise out of the count.
const DefaultTolerance = 8

// Result summarizes a pixel comparison.
type Result struct {
	Width      int
	Height     int
	DiffPixels int
	Pixels     int
	Percent    float64

	// Image holds the per-pixel difference, black where the inputs agree.
	Image *image.RGBA
}

// Comparer compares image files.
type Comparer struct {
	tolerance int
	downscale int
	log       *slog.Logger
}

// Option configures a Comparer.
type Option func(*Comparer)

// WithTolerance sets the per-channel delta treated as equal. Defaults to
// DefaultTolerance.
func WithTolerance(tolerance int) Option {
	return func(c *Comparer) {
		if tolerance >= 0 {
			c.tolerance = tolerance
		}
	}
}

// WithDownscale shrinks both images by the given factor before comparing.
// Antialiasing jitter along edges averages out at lower resolution.
func WithDownscale(factor int) Option {
	return func(c *Comparer) {
		if factor > 1 {
			c.downscale = factor
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparer) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Comparer.
func New(opts ...Option) *Comparer {
	c := &Comparer{
		tolerance: DefaultTolerance,
		downscale: 1,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare reads two image files and counts the pixels that differ by more
// than the tolerance on any channel. The images must have the same size.
func (c *Comparer) Compare(pathA, pathB string) (*Result, error) {
	a, err := imgio.Open(pathA)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pathA, err)
	}
	b, err := imgio.Open(pathB)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pathB, err)
	}

	if c.downscale > 1 {
		bounds := a.Bounds()
		w := bounds.Dx() / c.downscale
		h := bounds.Dy() / c.downscale
		a = transform.Resize(a, w, h, transform.Linear)
		b = transform.Resize(b, w, h, transform.Linear)
		c.log.Debug("comparing downscaled", "width", w, "height", h, "factor", c.downscale)
	}

	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, fmt.Errorf("image sizes differ: %v vs %v", a.Bounds().Size(), b.Bounds().Size())
	}

	diff := blend.Difference(a, b)
	result := &Result{
		Width:  diff.Bounds().Dx(),
		Height: diff.Bounds().Dy(),
		Pixels: diff.Bounds().Dx() * diff.Bounds().Dy(),
		Image:  diff,
	}

	for i := 0; i+3 < len(diff.Pix); i += 4 {
		if int(diff.Pix[i]) > c.tolerance ||
			int(diff.Pix[i+1]) > c.tolerance ||
			int(diff.Pix[i+2]) > c.tolerance {
			result.DiffPixels++
		}
	}

	if result.Pixels > 0 {
		result.Percent = 100 * float64(result.DiffPixels) / float64(result.Pixels)
	}
	return result, nil
}

// SaveDiff writes the difference image, format chosen by extension.
func (r *Result) SaveDiff(path string) error {
	encoder := imgio.JPEGEncoder(90)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		encoder = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, r.Image, encoder); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
