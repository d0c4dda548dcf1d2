package settings

// Default returns settings with default values.
func Default() *Settings {
	return &Settings{
		Output: Output{
			Dir:    "./snapshots",
			Name:   "snapshot",
			Format: ".jpg",
		},
		Resolution: Resolution{Width: 1920, Height: 1080},
		Filter:     "all",
		Mode:       "scene_objects",
		Preview:    Resolution{Width: 320, Height: 180},
	}
}
