// Package export writes capture batch reports in shareable formats: an
// HTML contact sheet, CSV, and Markdown.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/runner"
)

// Report carries one finished batch plus the run parameters a reader needs
// to make sense of it.
type Report struct {
	GeneratedAt time.Time
	Version     string
	Width       int
	Height      int
	Filter      string
	Mode        string
	Batch       *runner.BatchResult
}

// Exporter writes a report to its destination.
type Exporter interface {
	Export(r *Report) error
}

// ForPath returns the exporter matching the path's extension: .html for a
// contact sheet, .csv for a spreadsheet, .md for Markdown. A nil logger
// means slog.Default().
func ForPath(path string, log *slog.Logger) (Exporter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return NewHTMLExporter(path, WithHTMLLogger(log)), nil
	case ".csv":
		return NewCSVExporter(path), nil
	case ".md", ".markdown":
		return NewMarkdownExporter(path), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s (expected .html, .csv or .md)", path)
	}
}

// failureText flattens a result's failure into one line. Hard errors win
// over soft failure reasons.
func failureText(res *capture.Result) string {
	if res.Error != nil {
		return res.Error.Error()
	}
	return res.Failure
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// relativeTo rewrites an image path relative to the report's directory so
// links survive moving the output tree.
func relativeTo(reportDir, target string) string {
	rel, err := filepath.Rel(reportDir, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
