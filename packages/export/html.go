package export

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultThumbWidth is the width thumbnails are resized to in the contact
// sheet.
const DefaultThumbWidth = 320

// HTMLExporter writes a self-contained contact sheet next to the captured
// images, with downscaled thumbnails linking to the full frames.
type HTMLExporter struct {
	path       string
	thumbWidth int
	log        *slog.Logger
}

// HTMLOption is a functional option for HTMLExporter.
type HTMLOption func(*HTMLExporter)

// WithThumbWidth sets the thumbnail width. Zero disables thumbnail
// generation and links the full images instead.
func WithThumbWidth(w int) HTMLOption {
	return func(e *HTMLExporter) {
		if w >= 0 {
			e.thumbWidth = w
		}
	}
}

// WithHTMLLogger sets the logger. Defaults to slog.Default().
func WithHTMLLogger(l *slog.Logger) HTMLOption {
	return func(e *HTMLExporter) {
		if l != nil {
			e.log = l
		}
	}
}

// NewHTMLExporter creates an exporter writing the contact sheet to path.
func NewHTMLExporter(path string, opts ...HTMLOption) *HTMLExporter {
	e := &HTMLExporter{
		path:       path,
		thumbWidth: DefaultThumbWidth,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>takesnap report</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #1e1e1e; color: #ddd; }
h1 { font-size: 1.4em; }
.meta { color: #999; margin-bottom: 1.5em; }
.grid { display: flex; flex-wrap: wrap; gap: 1em; }
.card { background: #2a2a2a; border-radius: 6px; padding: 0.8em; width: 340px; }
.card img { max-width: 100%; border-radius: 4px; }
.card h2 { font-size: 1em; margin: 0.5em 0 0.2em; }
.detail { color: #999; font-size: 0.85em; }
.pass { color: #6c6; }
.fail { color: #e66; }
</style>
</head>
<body>
<h1>takesnap report</h1>
<div class="meta">
{{.GeneratedAt}} &middot; takesnap {{.Version}} &middot; {{.Resolution}} &middot; filter {{.Filter}} &middot; mode {{.Mode}}<br>
<span class="pass">{{.Passed}} passed</span>, <span class="fail">{{.Failed}} failed</span> in {{.Duration}}
</div>
<div class="grid">
{{range .Cards}}<div class="card">
{{if .Img}}<a href="{{.Link}}"><img src="{{.Img}}" alt="{{.Panel}}"></a>{{end}}
<h2>{{.Panel}}{{if .Camera}} &mdash; {{.Camera}}{{end}}</h2>
{{if .Passed}}<div class="detail">frame {{.Frame}} &middot; {{.Size}} &middot; {{.Duration}}</div>
{{else}}<div class="detail fail">{{.Failure}}</div>{{end}}
</div>
{{end}}</div>
</body>
</html>
`))

type htmlReport struct {
	GeneratedAt string
	Version     string
	Resolution  string
	Filter      string
	Mode        string
	Passed      int
	Failed      int
	Duration    string
	Cards       []htmlCard
}

type htmlCard struct {
	Panel    string
	Camera   string
	Img      string
	Link     string
	Frame    int
	Size     string
	Duration string
	Passed   bool
	Failure  string
}

// Export renders the contact sheet. Thumbnails that cannot be generated
// fall back to linking the full image.
func (e *HTMLExporter) Export(r *Report) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	generatedAt := r.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	data := htmlReport{
		GeneratedAt: generatedAt.Format(time.RFC1123),
		Version:     r.Version,
		Resolution:  fmt.Sprintf("%dx%d", r.Width, r.Height),
		Filter:      r.Filter,
		Mode:        r.Mode,
		Passed:      r.Batch.Passed,
		Failed:      r.Batch.Failed,
		Duration:    r.Batch.Duration.Round(time.Millisecond).String(),
	}

	for _, res := range r.Batch.Results {
		card := htmlCard{
			Panel:    res.Panel,
			Camera:   res.Camera,
			Frame:    res.Frame,
			Size:     humanSize(res.Bytes),
			Duration: res.Duration.Round(time.Millisecond).String(),
			Passed:   res.Passed,
			Failure:  failureText(res),
		}
		if res.Passed && res.Path != "" {
			card.Link = relativeTo(dir, res.Path)
			card.Img = e.thumbnail(dir, res.Path)
		}
		data.Cards = append(data.Cards, card)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := os.WriteFile(e.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// thumbnail writes a downscaled copy of the image under thumbs/ and returns
// its path relative to the report. The full image's relative path comes
// back when thumbnails are off or generation fails.
func (e *HTMLExporter) thumbnail(reportDir, imagePath string) string {
	if e.thumbWidth < 1 {
		return relativeTo(reportDir, imagePath)
	}

	img, err := imgio.Open(imagePath)
	if err != nil {
		e.log.Warn("thumbnail skipped", "image", imagePath, "error", err)
		return relativeTo(reportDir, imagePath)
	}

	bounds := img.Bounds()
	if bounds.Dx() < 1 {
		return relativeTo(reportDir, imagePath)
	}
	height := e.thumbWidth * bounds.Dy() / bounds.Dx()
	if height < 1 {
		height = 1
	}
	resized := transform.Resize(img, e.thumbWidth, height, transform.Linear)

	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	thumbPath := filepath.Join(reportDir, "thumbs", name)

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		e.log.Warn("thumbnail skipped", "image", imagePath, "error", err)
		return relativeTo(reportDir, imagePath)
	}
	if err := imgio.Save(thumbPath, resized, imgio.JPEGEncoder(85)); err != nil {
		e.log.Warn("thumbnail skipped", "image", imagePath, "error", err)
		return relativeTo(reportDir, imagePath)
	}

	return "thumbs/" + name
}
