package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	previewPanelFlag  string
	previewWatchFlag  bool
	previewWidthFlag  int
	previewHeightFlag int
	previewFilterFlag string
	previewModeFlag   string
	previewDirFlag    string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a low-resolution preview of one panel",
	Long: `Render a quick low-resolution preview of a single panel and print the
file it landed in. Exactly one preview file exists at a time; each
refresh replaces the last one.

With --watch the preview re-renders whenever the settings file or the
hostfile changes, until interrupted.

Examples:
  takesnap preview
  takesnap preview --panel modelPanel4
  takesnap preview --mode selected_only
  takesnap preview --watch`,
	Args: cobra.NoArgs,
	RunE: previewCommand,
}

func init() {
	previewCmd.Flags().StringVarP(&previewPanelFlag, "panel", "p", "", "Panel to preview (default: first configured or visible panel)")
	previewCmd.Flags().BoolVarP(&previewWatchFlag, "watch", "w", false, "Re-render when the settings file or hostfile changes")
	previewCmd.Flags().IntVar(&previewWidthFlag, "width", 0, "Preview width in pixels (default: settings)")
	previewCmd.Flags().IntVar(&previewHeightFlag, "height", 0, "Preview height in pixels (default: settings)")
	previewCmd.Flags().StringVar(&previewFilterFlag, "filter", "", "Object filter override")
	previewCmd.Flags().StringVar(&previewModeFlag, "mode", "", "Display mode override")
	previewCmd.Flags().StringVar(&previewDirFlag, "dir", "", "Directory for the preview file (default: system temp)")
}

func previewCommand(cmd *cobra.Command, args []string) error {
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

	panel := previewPanelFlag
	if panel == "" {
		panels, err := resolvePanels(h, s, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
		panel = panels[0]
	}

	filterStr, modeStr := s.Filter, s.Mode
	if previewFilterFlag != "" {
		filterStr = previewFilterFlag
	}
	if previewModeFlag != "" {
		modeStr = previewModeFlag
	}
	filter, mode := parseDisplay(filterStr, modeStr, log)

	width, height := s.Preview.Width, s.Preview.Height
	if previewWidthFlag > 0 {
		width = previewWidthFlag
	}
	if previewHeightFlag > 0 {
		height = previewHeightFlag
	}

	session := capture.NewPreviewSession(
		capture.PreviewWithSize(width, height),
		capture.PreviewWithDir(previewDirFlag),
		capture.PreviewWithLogger(log),
	)

	result, err := session.Refresh(h, panel, filter, mode)
	switch {
	case errors.Is(err, capture.ErrNoSelection):
		// logged by the session; the previous preview, if any, survives
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !previewWatchFlag {
			os.Exit(ExitCaptureFailure)
		}
	case !result.Passed:
		fmt.Fprintf(os.Stderr, "Preview failed: %s\n", result.Failure)
		if !previewWatchFlag {
			os.Exit(ExitCaptureFailure)
		}
	default:
		fmt.Fprintln(cmd.OutOrStdout(), session.Path())
	}

	if !previewWatchFlag {
		return nil
	}

	// Watch mode: set up file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	defer session.Close()

	targets := watchTargets(s)
	watchedDirs := make(map[string]bool)
	for _, file := range targets {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				log.Warn("cannot watch directory", "dir", dir, "error", err)
			}
			watchedDirs[dir] = true
		}
	}

	refresh := func() {
		s, err := settings.Load(settingsFlag)
		if err != nil {
			log.Error("settings reload failed", "error", err)
			return
		}
		h, err := connectHost(s, log)
		if err != nil {
			log.Error("host reload failed", "error", err)
			return
		}

		panel := previewPanelFlag
		if panel == "" {
			panels, err := resolvePanels(h, s, "")
			if err != nil {
				log.Error("no panel to preview", "error", err)
				return
			}
			panel = panels[0]
		}

		filterStr, modeStr := s.Filter, s.Mode
		if previewFilterFlag != "" {
			filterStr = previewFilterFlag
		}
		if previewModeFlag != "" {
			modeStr = previewModeFlag
		}
		filter, mode := parseDisplay(filterStr, modeStr, log)

		result, err := session.Refresh(h, panel, filter, mode)
		switch {
		case errors.Is(err, capture.ErrNoSelection):
		case err != nil:
			log.Error("preview refresh failed", "error", err)
		case !result.Passed:
			log.Warn("preview not usable", "reason", result.Failure)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), session.Path())
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nStopping preview...")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) && isWatchTarget(event.Name, targets) {
				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\n", event.Name)
					refresh()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// watchTargets lists the files whose changes trigger a re-render: the
// settings file (explicit or discovered) and the hostfile.
func watchTargets(s *settings.Settings) []string {
	var files []string
	if settingsFlag != "" {
		files = append(files, settingsFlag)
	} else {
		for _, name := range settings.Filenames {
			if _, err := os.Stat(name); err == nil {
				files = append(files, name)
				break
			}
		}
	}
	if path := resolveHostfile(s); path != "" {
		files = append(files, path)
	}
	return files
}

func isWatchTarget(name string, targets []string) bool {
	for _, t := range targets {
		if filepath.Base(name) == filepath.Base(t) {
			return true
		}
	}
	return false
}
