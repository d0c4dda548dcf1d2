package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Panels   []JSONPanel `json:"panels"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the batch summary
type JSONSummary struct {
	Total    int `json:"total"`
	Captured int `json:"captured"`
	Failed   int `json:"failed"`
}

// JSONPanel represents a single panel's capture result
type JSONPanel struct {
	Panel         string  `json:"panel"`
	Camera        string  `json:"camera,omitempty"`
	Path          string  `json:"path,omitempty"`
	RequestedPath string  `json:"requestedPath"`
	Frame         int     `json:"frame"`
	Bytes         int64   `json:"bytes,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Duration      float64 `json:"duration"`
	Passed        bool    `json:"passed"`
	Failure       string  `json:"failure,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// JSONFormatter formats batch results as JSON
type JSONFormatter struct {
	writer io.Writer
	panels []JSONPanel
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		panels: make([]JSONPanel, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatBatch(result *runner.BatchResult) {
	for _, r := range result.Results {
		panel := JSONPanel{
			Panel:         r.Panel,
			Camera:        r.Camera,
			Path:          r.Path,
			RequestedPath: r.RequestedPath,
			Frame:         r.Frame,
			Bytes:         r.Bytes,
			Kind:          r.Kind,
			Duration:      float64(r.Duration.Milliseconds()),
			Passed:        r.Passed,
			Failure:       r.Failure,
		}

		if r.Error != nil {
			panel.Error = r.Error.Error()
		}

		f.panels = append(f.panels, panel)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual panel results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var captured, failed int
	for _, p := range f.panels {
		if p.Passed {
			captured++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:    len(f.panels),
			Captured: captured,
			Failed:   failed,
		},
		Panels:   f.panels,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
