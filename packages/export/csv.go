package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CSVExporter writes one row per capture, ready for spreadsheets or
// pipeline ingestion.
type CSVExporter struct {
	path string
}

// NewCSVExporter creates an exporter writing to path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

// Export writes the batch as CSV with a header row.
func (e *CSVExporter) Export(r *Report) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"panel", "camera", "path", "frame", "bytes", "passed", "failure", "duration_ms"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	for _, res := range r.Batch.Results {
		row := []string{
			res.Panel,
			res.Camera,
			res.Path,
			strconv.Itoa(res.Frame),
			strconv.FormatInt(res.Bytes, 10),
			strconv.FormatBool(res.Passed),
			failureText(res),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
