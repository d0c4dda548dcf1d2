package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MarkdownExporter writes a summary table suitable for pull requests and
// review notes.
type MarkdownExporter struct {
	path string
}

// NewMarkdownExporter creates an exporter writing to path.
func NewMarkdownExporter(path string) *MarkdownExporter {
	return &MarkdownExporter{path: path}
}

// Export writes the batch as a Markdown document.
func (e *MarkdownExporter) Export(r *Report) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	generatedAt := r.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Capture Report\n\n")
	fmt.Fprintf(&buf, "Generated %s by takesnap %s.\n\n", generatedAt.Format(time.RFC1123), r.Version)
	fmt.Fprintf(&buf, "- Resolution: %dx%d\n", r.Width, r.Height)
	fmt.Fprintf(&buf, "- Filter: %s\n", r.Filter)
	fmt.Fprintf(&buf, "- Mode: %s\n", r.Mode)
	fmt.Fprintf(&buf, "- Result: %d passed, %d failed in %s\n\n",
		r.Batch.Passed, r.Batch.Failed, r.Batch.Duration.Round(time.Millisecond))

	fmt.Fprintf(&buf, "| Panel | Camera | File | Frame | Size | Result |\n")
	fmt.Fprintf(&buf, "|-------|--------|------|-------|------|--------|\n")
	for _, res := range r.Batch.Results {
		file := ""
		if res.Path != "" {
			file = fmt.Sprintf("[%s](%s)", filepath.Base(res.Path), relativeTo(dir, res.Path))
		}
		result := "pass"
		if !res.Passed {
			result = "FAIL: " + failureText(res)
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %d | %s | %s |\n",
			res.Panel, res.Camera, file, res.Frame, humanSize(res.Bytes), result)
	}

	if err := os.WriteFile(e.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
