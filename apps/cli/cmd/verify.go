package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shaurasan/SnapShotTool/packages/baseline"
	"github.com/shaurasan/SnapShotTool/packages/imagediff"
	"github.com/shaurasan/SnapShotTool/packages/runner"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Capture panels and compare them against stored baselines",
	Long: `Capture every requested panel into a scratch directory and compare the
results pixel by pixel against the stored baselines. A panel whose capture
drifts past the allowed difference fails the run.

Baselines live under ` + baseline.Dir + ` in the baseline root. With
--update, missing baselines are recorded and mismatched ones replaced
instead of failing.

Examples:
  takesnap verify
  takesnap verify --update
  takesnap verify --panels modelPanel1 --max-percent 0.5
  takesnap verify --diff-dir out/diffs`,
	Args: cobra.NoArgs,
	RunE: verifyCommand,
}

var (
	verifyPanelsFlag     string
	verifyUpdateFlag     bool
	verifyBaselinesFlag  string
	verifyMaxPercentFlag float64
	verifyToleranceFlag  int
	verifyDiffDirFlag    string
	verifyWidthFlag      int
	verifyHeightFlag     int
	verifyFilterFlag     string
	verifyModeFlag       string
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyPanelsFlag, "panels", "p", "", "Panels to verify (comma-separated, default: settings or all visible)")
	verifyCmd.Flags().BoolVarP(&verifyUpdateFlag, "update", "u", getEnvBool("TAKESNAP_UPDATE", false), "Record missing baselines and replace mismatched ones (env: TAKESNAP_UPDATE)")
	verifyCmd.Flags().StringVar(&verifyBaselinesFlag, "baselines", "", "Baseline root directory (default: settings or the output directory)")
	verifyCmd.Flags().Float64Var(&verifyMaxPercentFlag, "max-percent", 0, "Differing pixels a panel may reach and still pass, in percent")
	verifyCmd.Flags().IntVar(&verifyToleranceFlag, "tolerance", imagediff.DefaultTolerance, "Per-channel difference below which pixels count as equal")
	verifyCmd.Flags().StringVar(&verifyDiffDirFlag, "diff-dir", "", "Write difference images for failed panels into this directory")
	verifyCmd.Flags().IntVar(&verifyWidthFlag, "width", 0, "Capture width in pixels (default: settings)")
	verifyCmd.Flags().IntVar(&verifyHeightFlag, "height", 0, "Capture height in pixels (default: settings)")
	verifyCmd.Flags().StringVar(&verifyFilterFlag, "filter", "", "Object filter: all, mesh, joint, mesh_joint, nurbs (default: settings)")
	verifyCmd.Flags().StringVar(&verifyModeFlag, "mode", "", "Display mode: viewport_all, scene_objects, selected_only (default: settings)")
}

func verifyCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()
	out := cmd.OutOrStdout()

	s, err := settings.Load(settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	if verifyWidthFlag > 0 {
		s.Resolution.Width = verifyWidthFlag
	}
	if verifyHeightFlag > 0 {
		s.Resolution.Height = verifyHeightFlag
	}
	if verifyFilterFlag != "" {
		s.Filter = verifyFilterFlag
	}
	if verifyModeFlag != "" {
		s.Mode = verifyModeFlag
	}
	s.Normalize()

	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	h, err := connectHost(s, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitHostfileError)
	}

	panels, err := resolvePanels(h, s, verifyPanelsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	filter, mode := parseDisplay(s.Filter, s.Mode, log)

	scratch, err := os.MkdirTemp("", "takesnap-verify-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer os.RemoveAll(scratch)

	batch := runner.Batch{
		Panels: panels,
		Dir:    scratch,
		Base:   s.Output.Name,
		Ext:    s.Output.Format,
		Width:  s.Resolution.Width,
		Height: s.Resolution.Height,
		Filter: filter,
		Mode:   mode,
	}

	result, err := runner.New(runner.WithLogger(log)).Run(h, batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	root := baselineRoot(s)
	mgr := baseline.NewManager(root,
		baseline.WithUpdate(verifyUpdateFlag),
		baseline.WithMaxPercent(verifyMaxPercentFlag),
		baseline.WithTolerance(verifyToleranceFlag),
		baseline.WithDiffDir(verifyDiffDirFlag),
		baseline.WithLogger(log),
	)

	fmt.Fprintf(out, "Comparing %d panels against %s\n\n", len(panels), filepath.Join(root, baseline.Dir))

	var passed, created, updated, failed int
	for _, res := range result.Results {
		if !res.Passed {
			reason := res.Failure
			if res.Error != nil {
				reason = res.Error.Error()
			}
			fmt.Fprintf(out, "FAIL %s: capture failed: %s\n", res.Panel, reason)
			failed++
			continue
		}

		name := filepath.Base(res.Path)
		b := mgr.Compare(name, res.Path)
		switch {
		case b.IsNew:
			fmt.Fprintf(out, "NEW  %s: baseline recorded\n", name)
			created++
		case b.WasUpdated:
			fmt.Fprintf(out, "UPD  %s: baseline updated\n", name)
			updated++
		case b.Passed:
			fmt.Fprintf(out, "OK   %s\n", name)
			passed++
		default:
			fmt.Fprintf(out, "FAIL %s: %s\n", name, b.Message)
			if b.DiffPath != "" {
				fmt.Fprintf(out, "     diff image: %s\n", b.DiffPath)
			}
			failed++
		}
	}

	fmt.Fprintf(out, "\n%d passed, %d new, %d updated, %d failed\n", passed, created, updated, failed)

	if failed > 0 {
		os.Exit(ExitCaptureFailure)
	}
	return nil
}

// baselineRoot picks where baselines live: the --baselines flag, then the
// settings, then the output directory.
func baselineRoot(s *settings.Settings) string {
	if verifyBaselinesFlag != "" {
		return verifyBaselinesFlag
	}
	if s.Baselines != "" {
		return s.Baselines
	}
	return s.Output.Dir
}
