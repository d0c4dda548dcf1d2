package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaurasan/SnapShotTool/packages/bench"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var (
	benchPanelFlag     string
	benchCountFlag     int
	benchWarmupFlag    int
	benchRateFlag      float64
	benchWidthFlag     int
	benchHeightFlag    int
	benchThresholdFlag string
	benchJSONFlag      bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure capture latency for one panel",
	Long: `Capture one panel repeatedly and report latency percentiles.

Captures run strictly one at a time; rendered files land in a throwaway
directory. Warmup captures prime the host before measurement starts.

Examples:
  takesnap bench --panel modelPanel1
  takesnap bench --panel modelPanel1 --count 100 --warmup 5
  takesnap bench --panel modelPanel1 --rate 2
  takesnap bench --panel modelPanel1 --threshold "p95<250ms,errors<1%"
  takesnap bench --panel modelPanel1 --json`,
	Args: cobra.NoArgs,
	RunE: benchCommand,
}

func init() {
	benchCmd.Flags().StringVarP(&benchPanelFlag, "panel", "p", "", "Panel to bench (required)")
	benchCmd.Flags().IntVarP(&benchCountFlag, "count", "c", getEnvInt("TAKESNAP_BENCH_COUNT", 50), "Number of measured captures (env: TAKESNAP_BENCH_COUNT)")
	benchCmd.Flags().IntVar(&benchWarmupFlag, "warmup", 3, "Warmup captures excluded from the summary")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target captures per second (0 = unpaced)")
	benchCmd.Flags().IntVar(&benchWidthFlag, "width", 0, "Capture width in pixels (default: settings)")
	benchCmd.Flags().IntVar(&benchHeightFlag, "height", 0, "Capture height in pixels (default: settings)")
	benchCmd.Flags().StringVar(&benchThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g. \"p95<250ms,errors<1%\")")
	benchCmd.Flags().BoolVar(&benchJSONFlag, "json", false, "Output the summary as JSON")

	_ = benchCmd.MarkFlagRequired("panel")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	s, err := settings.Load(settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	h, err := connectHost(s, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitHostfileError)
	}

	thresholds, err := bench.ParseThresholds(benchThresholdFlag)
	if err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}

	filter, mode := parseDisplay(s.Filter, s.Mode, log)

	width, height := s.Resolution.Width, s.Resolution.Height
	if benchWidthFlag > 0 {
		width = benchWidthFlag
	}
	if benchHeightFlag > 0 {
		height = benchHeightFlag
	}

	cfg := bench.Config{
		Panel:  benchPanelFlag,
		Count:  benchCountFlag,
		Warmup: benchWarmupFlag,
		Rate:   benchRateFlag,
		Width:  width,
		Height: height,
		Filter: filter,
		Mode:   mode,
	}

	reporter := bench.NewReporter(bench.WithNoColor(noColorFlag || quietFlag))
	if !benchJSONFlag {
		reporter.Header(version, cfg)
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping...")
		cancel()
	}()

	summary, err := bench.New(bench.WithLogger(log)).Run(ctx, h, cfg)
	if err != nil {
		reporter.Error("bench failed: %v", err)
		os.Exit(ExitCaptureFailure)
	}

	results := thresholds.Evaluate(summary)

	if benchJSONFlag {
		if err := reporter.JSONSummary(summary, results); err != nil {
			return err
		}
	} else {
		reporter.Summary(summary, results)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(ExitCaptureFailure)
		}
	}
	return nil
}
