// Package capture takes a single viewport snapshot through a host.
//
// A capture runs as a fixed sequence:
//   - Save the panel's display state
//   - Apply the requested display mode and object filter
//   - Render the current frame to disk
//   - Verify the produced file and identify its image type
//   - Restore the saved display state
//
// Restoration happens on every exit path. Render errors are hard failures;
// a missing or empty output file is a soft failure carried on the Result.
//
// PreviewSession layers throwaway low-resolution captures on top, keeping
// at most one preview file on disk at a time.
package capture
