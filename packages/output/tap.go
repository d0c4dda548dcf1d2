package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/runner"
)

// TAPFormatter formats batch results in TAP (Test Anything Protocol) format
type TAPFormatter struct {
	writer    io.Writer
	testCount int
	results   []tapResult
}

type tapResult struct {
	number  int
	panel   string
	path    string
	passed  bool
	failure string
	error   string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatBatch(result *runner.BatchResult) {
	for _, r := range result.Results {
		f.testCount++
		tr := tapResult{
			number:  f.testCount,
			panel:   r.Panel,
			path:    r.Path,
			passed:  r.Passed,
			failure: r.Failure,
		}

		if r.Error != nil {
			tr.error = r.Error.Error()
		}

		f.results = append(f.results, tr)
	}
}

func (f *TAPFormatter) FormatError(err error) {
	// Errors are included in individual panel results
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	// TAP version header
	fmt.Fprintf(f.writer, "TAP version 13\n")

	// Test plan
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)

	// Individual panel results
	for _, r := range f.results {
		if r.error != "" {
			fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.panel)
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.error))
			fmt.Fprintf(f.writer, "  severity: error\n")
			fmt.Fprintf(f.writer, "  ...\n")
			continue
		}

		if r.passed {
			fmt.Fprintf(f.writer, "ok %d - %s\n", r.number, r.panel)
			continue
		}

		fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.panel)
		if r.failure != "" {
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.failure))
			fmt.Fprintf(f.writer, "  severity: fail\n")
			fmt.Fprintf(f.writer, "  ...\n")
		}
	}

	// Add final newline for proper TAP output
	fmt.Fprintln(f.writer)

	return nil
}

func escapeYAML(s string) string {
	// Simple YAML escaping - wrap in quotes if contains special chars
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
