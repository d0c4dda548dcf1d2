package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output names the directory, base file name and image format of a run.
type Output struct {
	Dir    string `yaml:"dir,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Resolution is a width and height in pixels.
type Resolution struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Settings represents the takesnap configuration.
type Settings struct {
	Output     Output     `yaml:"output,omitempty"`
	Resolution Resolution `yaml:"resolution,omitempty"`
	Filter     string     `yaml:"filter,omitempty"`
	Mode       string     `yaml:"mode,omitempty"`
	Panels     []string   `yaml:"panels,omitempty"`
	Preview    Resolution `yaml:"preview,omitempty"`
	Hostfile   string     `yaml:"hostfile,omitempty"`

	// History is the capture history database path. Empty disables
	// recording.
	History string `yaml:"history,omitempty"`

	// Baselines is the directory verify compares captures against.
	// Empty means __baselines__ under the output directory.
	Baselines string `yaml:"baselines,omitempty"`
}

// Filenames contains the settings file names searched in order.
var Filenames = []string{
	"takesnap.yaml",
	"takesnap.yml",
	".takesnaprc.yaml",
}

// Load reads settings from the given path, or searches the current
// directory when path is empty. Values layer as defaults, then file, then
// TAKESNAP_* environment variables.
func Load(path string) (*Settings, error) {
	if path != "" {
		return loadFromFile(path)
	}
	return FindAndLoad(".")
}

// FindAndLoad searches dir for a settings file. Defaults are returned when
// none exists.
func FindAndLoad(dir string) (*Settings, error) {
	for _, filename := range Filenames {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return loadFromFile(path)
		}
	}

	s := Default()
	s.ApplyEnv()
	s.Normalize()
	return s, nil
}

func loadFromFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s.ApplyEnv()
	s.Normalize()
	return s, nil
}

// ApplyEnv overlays TAKESNAP_* environment variables. Unparsable numeric
// values are ignored.
func (s *Settings) ApplyEnv() {
	s.Output.Dir = envString("TAKESNAP_OUTPUT_DIR", s.Output.Dir)
	s.Output.Name = envString("TAKESNAP_OUTPUT_NAME", s.Output.Name)
	s.Output.Format = envString("TAKESNAP_FORMAT", s.Output.Format)
	s.Resolution.Width = envInt("TAKESNAP_WIDTH", s.Resolution.Width)
	s.Resolution.Height = envInt("TAKESNAP_HEIGHT", s.Resolution.Height)
	s.Filter = envString("TAKESNAP_FILTER", s.Filter)
	s.Mode = envString("TAKESNAP_MODE", s.Mode)
	s.Preview.Width = envInt("TAKESNAP_PREVIEW_WIDTH", s.Preview.Width)
	s.Preview.Height = envInt("TAKESNAP_PREVIEW_HEIGHT", s.Preview.Height)
	s.Hostfile = envString("TAKESNAP_HOSTFILE", s.Hostfile)
	s.History = envString("TAKESNAP_HISTORY", s.History)
	s.Baselines = envString("TAKESNAP_BASELINES", s.Baselines)

	if v := os.Getenv("TAKESNAP_PANELS"); v != "" {
		s.Panels = splitList(v)
	}
}

// Normalize cleans derived fields: the image format keeps a leading dot and
// panel names are trimmed.
func (s *Settings) Normalize() {
	if s.Output.Format == "" {
		s.Output.Format = Default().Output.Format
	}
	if !strings.HasPrefix(s.Output.Format, ".") {
		s.Output.Format = "." + s.Output.Format
	}

	if len(s.Panels) > 0 {
		panels := make([]string, 0, len(s.Panels))
		for _, p := range s.Panels {
			if p = strings.TrimSpace(p); p != "" {
				panels = append(panels, p)
			}
		}
		s.Panels = panels
	}
}

// Validate reports the first structural problem with the settings.
func (s *Settings) Validate() error {
	if s.Output.Dir == "" {
		return fmt.Errorf("output dir is empty")
	}
	if s.Output.Name == "" {
		return fmt.Errorf("output name is empty")
	}
	if s.Resolution.Width < 1 || s.Resolution.Height < 1 {
		return fmt.Errorf("resolution %dx%d is not positive", s.Resolution.Width, s.Resolution.Height)
	}
	if s.Preview.Width < 1 || s.Preview.Height < 1 {
		return fmt.Errorf("preview resolution %dx%d is not positive", s.Preview.Width, s.Preview.Height)
	}
	return nil
}

// Save writes the settings to a YAML file.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
