package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/shaurasan/SnapShotTool/packages/runner"
)

// ConsoleFormatter prints batch results for humans.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatBatch(result *runner.BatchResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		if r.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), r.Panel, red(fmt.Sprintf("(%v)", r.Error)))
			continue
		}

		if !r.Passed {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), r.Panel, red("("+r.Failure+")"))
			continue
		}

		fmt.Fprintf(f.writer, "  %s %s → %s %s\n", green("✓"), r.Panel, r.Path,
			cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose {
			if r.Camera != "" {
				fmt.Fprintf(f.writer, "    Camera: %s\n", r.Camera)
			}
			fmt.Fprintf(f.writer, "    Frame:  %d\n", r.Frame)
			fmt.Fprintf(f.writer, "    Size:   %d bytes", r.Bytes)
			if r.Kind != "" {
				fmt.Fprintf(f.writer, " (%s)", r.Kind)
			}
			fmt.Fprintf(f.writer, "\n")
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Panels: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d captured", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	total := result.Passed + result.Failed
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:   %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("takesnap"), version)
}
