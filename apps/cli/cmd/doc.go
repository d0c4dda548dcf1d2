// Package cmd implements the takesnap CLI commands using Cobra.
//
// Available commands:
//   - capture: Snapshot visible model panels from a host session
//   - panels: List panels and display state of a host session
//   - preview: Render a single draft-quality frame, with optional watch mode
//   - verify: Capture panels and compare them against stored baselines
//   - bench: Measure capture throughput and latency against thresholds
//   - diff: Compare two captured images pixel by pixel
//   - history: List capture runs recorded in the history database
//   - validate: Check hostfile and settings syntax without capturing
//   - record: Save the current host session as a hostfile
//   - init: Create a new takesnap project with example files
//   - version: Show takesnap version information
//
// The CLI supports various flags for panel selection, display filtering,
// output formatting, and watch mode for look-development workflows.
package cmd
