package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/export"
	"github.com/shaurasan/SnapShotTool/packages/history"
	"github.com/shaurasan/SnapShotTool/packages/host"
	"github.com/shaurasan/SnapShotTool/packages/output"
	"github.com/shaurasan/SnapShotTool/packages/runner"
	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture snapshots of the host's model panels",
	Long: `Capture off-screen snapshots of model panels in the connected host
session.

Every panel goes through the same sequence: save its display state, apply
the configured display mode and object filter, render one frame, verify
the written file, restore the panel. One panel failing never stops the
batch.

Base names may carry {token} templates, expanded per panel: {panel},
{camera}, {frame}, {date}, {time}, {datetime}, {res}, {filter}, {mode},
{user}, {uuid}.

Examples:
  takesnap capture
  takesnap capture --panels modelPanel1,modelPanel4
  takesnap capture --mode selected_only --filter mesh
  takesnap capture --dir ./renders --width 2560 --height 1440
  takesnap capture --name "{camera}_{date}_f{frame}"
  takesnap capture --output junit --output-file results.xml
  takesnap capture --report out/report.html --history .takesnap/history.db
  takesnap capture --hostfile scene.json --dry-run`,
	Args: cobra.NoArgs,
	RunE: captureCommand,
}

var (
	panelsFlag     string
	dirFlag        string
	nameFlag       string
	formatFlag     string
	widthFlag      int
	heightFlag     int
	filterFlag     string
	modeFlag       string
	outputFlag     string
	outputFileFlag string
	reportFlag     string
	historyFlag    string
	dryRunFlag     bool
)

func init() {
	captureCmd.Flags().StringVarP(&panelsFlag, "panels", "p", "", "Panels to capture (comma-separated, default: settings or all visible)")
	captureCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Output directory (default: settings)")
	captureCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Base name for snapshot files (default: settings)")
	captureCmd.Flags().StringVar(&formatFlag, "format", "", "Image format, jpg or png (default: settings)")
	captureCmd.Flags().IntVar(&widthFlag, "width", 0, "Capture width in pixels (default: settings)")
	captureCmd.Flags().IntVar(&heightFlag, "height", 0, "Capture height in pixels (default: settings)")
	captureCmd.Flags().StringVar(&filterFlag, "filter", "", "Object filter: all, mesh, joint, mesh_joint, nurbs (default: settings)")
	captureCmd.Flags().StringVar(&modeFlag, "mode", "", "Display mode: viewport_all, scene_objects, selected_only (default: settings)")
	captureCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("TAKESNAP_OUTPUT", "console"), "Output format: console, json, junit, tap (env: TAKESNAP_OUTPUT)")
	captureCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("TAKESNAP_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: TAKESNAP_OUTPUT_FILE)")
	captureCmd.Flags().StringVar(&reportFlag, "report", "", "Write a batch report, format by extension: .html, .csv, .md")
	captureCmd.Flags().StringVar(&historyFlag, "history", "", "Record the batch into this history database (default: settings)")
	captureCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Resolve panels and paths without touching the host")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatBatch(result *runner.BatchResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// newLogger builds the CLI logger: text on stderr, warnings by default,
// -v raises to info, -vv to debug, --quiet drops to errors only.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quietFlag:
		level = slog.LevelError
	case verboseFlag >= 2:
		level = slog.LevelDebug
	case verboseFlag == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveHostfile picks the hostfile path: the --hostfile flag, then the
// settings file.
func resolveHostfile(s *settings.Settings) string {
	if hostfileFlag != "" {
		return hostfileFlag
	}
	return s.Hostfile
}

// connectHost opens the scripted host session for the run.
func connectHost(s *settings.Settings, log *slog.Logger) (host.Host, error) {
	path := resolveHostfile(s)
	if path == "" {
		return nil, fmt.Errorf("no hostfile configured (use --hostfile or set hostfile in takesnap.yaml)")
	}
	fix, err := scripthost.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	return scripthost.New(fix, scripthost.WithLogger(log)), nil
}

// resolvePanels picks the panels to capture: the --panels flag, then the
// settings, then every visible model panel.
func resolvePanels(h host.Host, s *settings.Settings, flagValue string) ([]string, error) {
	if flagValue != "" {
		var panels []string
		for _, p := range strings.Split(flagValue, ",") {
			if p = strings.TrimSpace(p); p != "" {
				panels = append(panels, p)
			}
		}
		return panels, nil
	}
	if len(s.Panels) > 0 {
		return s.Panels, nil
	}

	visible, err := h.Panels()
	if err != nil {
		return nil, fmt.Errorf("listing panels: %w", err)
	}
	var panels []string
	for _, p := range visible {
		panels = append(panels, p.Name)
	}
	if len(panels) == 0 {
		return nil, fmt.Errorf("no visible model panels in the host session")
	}
	return panels, nil
}

// parseDisplay maps the settings' filter and mode strings, warning before
// falling back on unknown values.
func parseDisplay(filterStr, modeStr string, log *slog.Logger) (display.Filter, display.Mode) {
	filter, known := display.ParseFilter(filterStr)
	if !known {
		log.Warn("unknown filter, using all", "filter", filterStr)
	}
	mode, known := display.ParseMode(modeStr)
	if !known {
		log.Warn("unknown mode, using scene_objects", "mode", modeStr)
	}
	return filter, mode
}

func captureCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	s, err := settings.Load(settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	// CLI flags override the settings file and environment
	if dirFlag != "" {
		s.Output.Dir = dirFlag
	}
	if nameFlag != "" {
		s.Output.Name = nameFlag
	}
	if formatFlag != "" {
		s.Output.Format = formatFlag
	}
	if widthFlag > 0 {
		s.Resolution.Width = widthFlag
	}
	if heightFlag > 0 {
		s.Resolution.Height = heightFlag
	}
	if filterFlag != "" {
		s.Filter = filterFlag
	}
	if modeFlag != "" {
		s.Mode = modeFlag
	}
	s.Normalize()

	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	// Setup output writer
	var outWriter *os.File
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	// Create formatter based on output flag
	var formatter Formatter
	switch strings.ToLower(outputFlag) {
	case "json":
		opts := []output.JSONOption{}
		if outWriter != nil {
			opts = append(opts, output.JSONWithWriter(outWriter))
		}
		formatter = output.NewJSONFormatter(opts...)
	case "junit":
		opts := []output.JUnitOption{}
		if outWriter != nil {
			opts = append(opts, output.JUnitWithWriter(outWriter))
		}
		formatter = output.NewJUnitFormatter(opts...)
	case "tap":
		opts := []output.TAPOption{}
		if outWriter != nil {
			opts = append(opts, output.TAPWithWriter(outWriter))
		}
		formatter = output.NewTAPFormatter(opts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(noColorFlag || quietFlag),
		}
		if outWriter != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(outWriter))
		}
		formatter = output.NewConsoleFormatter(consoleOpts...)
	}

	formatter.FormatHeader(version)

	h, err := connectHost(s, log)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitHostfileError)
	}

	panels, err := resolvePanels(h, s, panelsFlag)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitConfigError)
	}

	filter, mode := parseDisplay(s.Filter, s.Mode, log)

	batch := runner.Batch{
		Panels: panels,
		Dir:    s.Output.Dir,
		Base:   s.Output.Name,
		Ext:    s.Output.Format,
		Width:  s.Resolution.Width,
		Height: s.Resolution.Height,
		Filter: filter,
		Mode:   mode,
	}

	if dryRunFlag {
		for _, panel := range panels {
			camera, err := h.CameraName(panel)
			if err != nil {
				camera = ""
			}
			path := batch.OutputPath(panel, camera, h.CurrentFrame())
			fmt.Fprintf(cmd.OutOrStdout(), "Would capture: %s -> %s\n", panel, path)
		}
		return nil
	}

	if _, err := os.Stat(s.Output.Dir); os.IsNotExist(err) {
		log.Info("creating output directory", "dir", s.Output.Dir)
	}
	if err := os.MkdirAll(s.Output.Dir, 0755); err != nil {
		formatter.FormatError(fmt.Errorf("creating output directory: %w", err))
		os.Exit(ExitConfigError)
	}

	result, err := runner.New(runner.WithLogger(log)).Run(h, batch)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitConfigError)
	}

	formatter.FormatBatch(result)

	// Flush output for formatters that accumulate results
	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if path := historyPath(s); path != "" {
		recordHistory(path, batch, result, log)
	}

	if reportFlag != "" {
		exporter, err := export.ForPath(reportFlag, log)
		if err != nil {
			return err
		}
		report := &export.Report{
			GeneratedAt: time.Now(),
			Version:     version,
			Width:       s.Resolution.Width,
			Height:      s.Resolution.Height,
			Filter:      string(filter),
			Mode:        string(mode),
			Batch:       result,
		}
		if err := exporter.Export(report); err != nil {
			return fmt.Errorf("error writing report: %w", err)
		}
		log.Info("report written", "path", reportFlag)
	}

	if result.Failed > 0 {
		os.Exit(ExitCaptureFailure)
	}
	return nil
}

// historyPath picks the history database: the --history flag, then the
// settings file. Empty disables recording.
func historyPath(s *settings.Settings) string {
	if historyFlag != "" {
		return historyFlag
	}
	return s.History
}

// recordHistory stores the batch outcome. History problems never fail a
// capture run.
func recordHistory(path string, batch runner.Batch, result *runner.BatchResult, log *slog.Logger) {
	store, err := history.Open(path, history.WithLogger(log))
	if err != nil {
		log.Warn("history not recorded", "path", path, "error", err)
		return
	}
	defer store.Close()

	runID, err := store.RecordBatch(batch, result)
	if err != nil {
		log.Warn("history not recorded", "path", path, "error", err)
		return
	}
	log.Info("batch recorded", "run", runID, "path", path)
}
