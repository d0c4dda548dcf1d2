package host

import "errors"

var (
	// ErrPanelNotFound indicates the named panel does not exist in the host session.
	ErrPanelNotFound = errors.New("panel not found")

	// ErrUnsupported indicates the panel cannot answer for the requested capability.
	ErrUnsupported = errors.New("capability not supported")
)

// Panel identifies a model viewport and the camera it looks through.
type Panel struct {
	Name   string
	Camera string
}

// CaptureArgs holds the arguments for a single off-screen frame render.
type CaptureArgs struct {
	Panel         string
	Path          string
	Width         int
	Height        int
	ShowOrnaments bool
	StartFrame    int
	EndFrame      int
	FramePadding  int
}

// Host is the surface of the DCC application the capture pipeline drives.
// Implementations bridge to a live session; scripthost ships a scripted one
// for tests and dry runs.
type Host interface {
	// PanelExists reports whether the named panel exists in the current layout.
	PanelExists(name string) bool

	// Panels returns the visible model panels in the current layout.
	Panels() ([]Panel, error)

	// DisplayFlag returns the value of a named display toggle on a panel.
	// Returns ErrUnsupported when the panel cannot answer for this flag.
	DisplayFlag(panel, flag string) (bool, error)

	// SetDisplayFlags applies a set of display toggles to a panel in one call.
	SetDisplayFlags(panel string, flags map[string]bool) error

	// IsolateState reports whether isolate-select is active on a panel.
	// Returns ErrUnsupported when the panel has no isolation capability.
	IsolateState(panel string) (bool, error)

	// SetIsolateState turns isolate-select on or off for a panel. Turning it
	// on isolates the current selection.
	SetIsolateState(panel string, on bool) error

	// Selection returns the current scene selection.
	Selection() []string

	// CurrentFrame returns the current time slider frame.
	CurrentFrame() int

	// CameraName returns the name of the camera the panel looks through.
	CameraName(panel string) (string, error)

	// CaptureFrame renders a single frame off-screen and returns the
	// host-shaped result: a path string, a list of paths, or nil. Hosts
	// differ here, so interpretation is left to the caller.
	CaptureFrame(args CaptureArgs) (any, error)
}
