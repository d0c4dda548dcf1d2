package cmd

import (
	"fmt"
	"os"

	"github.com/shaurasan/SnapShotTool/packages/imagediff"
	"github.com/spf13/cobra"
)

var (
	diffOutFlag       string
	diffToleranceFlag int
	diffMaxFlag       float64
	diffDownscaleFlag int
)

var diffCmd = &cobra.Command{
	Use:   "diff <image> <image>",
	Short: "Compare two snapshots pixel by pixel",
	Long: `Compare two snapshot files and report how many pixels differ.

This backs golden-image checks: capture a panel, compare it against a
blessed frame and fail when the render drifted past the allowance.

Examples:
  takesnap diff golden.jpg snapshots/snapshot_persp.jpg
  takesnap diff golden.jpg current.jpg --max-percent 0.5
  takesnap diff golden.jpg current.jpg -o diff.png
  takesnap diff golden.png current.png --downscale 2`,
	Args: cobra.ExactArgs(2),
	RunE: diffCommand,
}

func init() {
	diffCmd.Flags().StringVarP(&diffOutFlag, "out", "o", "", "Write the difference image to this path")
	diffCmd.Flags().IntVar(&diffToleranceFlag, "tolerance", imagediff.DefaultTolerance, "Per-channel delta treated as equal")
	diffCmd.Flags().Float64Var(&diffMaxFlag, "max-percent", 0, "Maximum percentage of differing pixels before failing")
	diffCmd.Flags().IntVar(&diffDownscaleFlag, "downscale", 1, "Downscale factor applied before comparing")
}

func diffCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	comparer := imagediff.New(
		imagediff.WithTolerance(diffToleranceFlag),
		imagediff.WithDownscale(diffDownscaleFlag),
		imagediff.WithLogger(log),
	)

	result, err := comparer.Compare(args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d pixels differ (%.2f%%)\n", result.DiffPixels, result.Pixels, result.Percent)

	if diffOutFlag != "" {
		if err := result.SaveDiff(diffOutFlag); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Difference image: %s\n", diffOutFlag)
	}

	if result.Percent > diffMaxFlag {
		os.Exit(ExitCaptureFailure)
	}
	return nil
}
