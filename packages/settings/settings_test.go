package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	s := Default()

	assert.Equal(t, "./snapshots", s.Output.Dir)
	assert.Equal(t, "snapshot", s.Output.Name)
	assert.Equal(t, ".jpg", s.Output.Format)
	assert.Equal(t, 1920, s.Resolution.Width)
	assert.Equal(t, 1080, s.Resolution.Height)
	assert.Equal(t, "all", s.Filter)
	assert.Equal(t, "scene_objects", s.Mode)
	assert.Equal(t, 320, s.Preview.Width)
	assert.Equal(t, 180, s.Preview.Height)
	assert.Empty(t, s.Panels)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Baselines)
	assert.NoError(t, s.Validate())
}

func TestFindAndLoadWithoutFile(t *testing.T) {
	s, err := FindAndLoad(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestFindAndLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
output:
  dir: ./renders
  name: turntable
resolution:
  width: 1280
  height: 720
filter: mesh
panels:
  - modelPanel1
  - modelPanel4
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "takesnap.yaml"), content, 0644))

	s, err := FindAndLoad(dir)
	require.NoError(t, err)

	assert.Equal(t, "./renders", s.Output.Dir)
	assert.Equal(t, "turntable", s.Output.Name)
	assert.Equal(t, ".jpg", s.Output.Format, "unset fields keep their defaults")
	assert.Equal(t, 1280, s.Resolution.Width)
	assert.Equal(t, 720, s.Resolution.Height)
	assert.Equal(t, "mesh", s.Filter)
	assert.Equal(t, "scene_objects", s.Mode)
	assert.Equal(t, []string{"modelPanel1", "modelPanel4"}, s.Panels)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: viewport_all\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "viewport_all", s.Mode)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "takesnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "takesnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter: mesh\nmode: viewport_all\n"), 0644))

	t.Setenv("TAKESNAP_FILTER", "joint")
	t.Setenv("TAKESNAP_WIDTH", "640")
	t.Setenv("TAKESNAP_PANELS", "modelPanel2, modelPanel3,")
	t.Setenv("TAKESNAP_HISTORY", ".takesnap/history.db")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "joint", s.Filter)
	assert.Equal(t, "viewport_all", s.Mode, "untouched fields keep the file value")
	assert.Equal(t, 640, s.Resolution.Width)
	assert.Equal(t, []string{"modelPanel2", "modelPanel3"}, s.Panels)
	assert.Equal(t, ".takesnap/history.db", s.History)
}

func TestEnvIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("TAKESNAP_HEIGHT", "tall")

	s, err := FindAndLoad(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1080, s.Resolution.Height)
}

func TestNormalizeFormat(t *testing.T) {
	s := Default()
	s.Output.Format = "png"
	s.Normalize()
	assert.Equal(t, ".png", s.Output.Format)

	s.Output.Format = ""
	s.Normalize()
	assert.Equal(t, ".jpg", s.Output.Format)
}

func TestNormalizeTrimsPanels(t *testing.T) {
	s := Default()
	s.Panels = []string{" modelPanel1 ", "", "modelPanel4"}
	s.Normalize()
	assert.Equal(t, []string{"modelPanel1", "modelPanel4"}, s.Panels)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"defaults pass", func(s *Settings) {}, ""},
		{"empty dir", func(s *Settings) { s.Output.Dir = "" }, "output dir"},
		{"empty name", func(s *Settings) { s.Output.Name = "" }, "output name"},
		{"zero width", func(s *Settings) { s.Resolution.Width = 0 }, "resolution"},
		{"negative height", func(s *Settings) { s.Resolution.Height = -1 }, "resolution"},
		{"zero preview", func(s *Settings) { s.Preview.Width = 0 }, "preview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := Default()
	s.Output.Name = "review"
	s.Panels = []string{"modelPanel1"}

	path := filepath.Join(t.TempDir(), "takesnap.yaml")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
