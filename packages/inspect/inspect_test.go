package inspect

import (
	"log/slog"
	"testing"

	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func inspectHost() *scripthost.Host {
	fix := &scripthost.Fixture{
		Frame:     12,
		Selection: []string{"pCube1"},
		Panels: []scripthost.PanelFixture{
			{
				Name:   "modelPanel1",
				Camera: "persp",
				Flags: map[string]bool{
					"allObjects": true,
					"grid":       false,
					"joints":     true,
				},
				UnsupportedFlags: []string{"nParticles"},
				Isolate:          &scripthost.IsolateFixture{State: true},
			},
			{
				Name:   "modelPanel2",
				Camera: "side",
				Flags:  map[string]bool{"allObjects": true},
			},
			{Name: "hiddenPanel", Camera: "top", Hidden: true},
		},
	}
	return scripthost.New(fix, scripthost.WithLogger(discard()))
}

func TestCollect(t *testing.T) {
	h := inspectHost()
	flags := []string{"allObjects", "grid", "joints", "nParticles"}

	state, err := Collect(h, flags, discard())
	require.NoError(t, err)

	assert.Equal(t, 12, state.Frame)
	assert.Equal(t, []string{"pCube1"}, state.Selection)
	require.Len(t, state.Panels, 2, "hidden panels are not inspected")

	first := state.Panels[0]
	assert.Equal(t, "modelPanel1", first.Name)
	assert.Equal(t, "persp", first.Camera)
	assert.Equal(t, map[string]bool{"allObjects": true, "grid": false, "joints": true}, first.Flags)
	require.NotNil(t, first.Isolate)
	assert.True(t, *first.Isolate)

	second := state.Panels[1]
	assert.Nil(t, second.Isolate, "panels without isolation report no state")
	assert.NotContains(t, second.Flags, "grid", "unreadable flags are skipped")
}

func TestQuery(t *testing.T) {
	h := inspectHost()
	state, err := Collect(h, []string{"allObjects", "grid"}, discard())
	require.NoError(t, err)
	data, err := state.JSON()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"frame", "frame", "12"},
		{"panel name", "panels.0.name", "modelPanel1"},
		{"flag by panel", `panels.#(name=="modelPanel1").flags.grid`, "false"},
		{"selection", "selection", `["pCube1"]`},
		{"panel count", "panels.#", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(data, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryMissingPath(t *testing.T) {
	h := inspectHost()
	state, err := Collect(h, []string{"allObjects"}, discard())
	require.NoError(t, err)
	data, err := state.JSON()
	require.NoError(t, err)

	_, err = Query(data, "panels.9.name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
