package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() *runner.BatchResult {
	return &runner.BatchResult{
		Results: []*capture.Result{
			{
				Panel:         "modelPanel1",
				Camera:        "persp",
				RequestedPath: "/out/snapshot_persp.jpg",
				Path:          "/out/snapshot_persp.jpg",
				Frame:         7,
				Bytes:         2048,
				Kind:          "jpg",
				Duration:      12 * time.Millisecond,
				Passed:        true,
			},
			{
				Panel:         "modelPanel2",
				Camera:        "side",
				RequestedPath: "/out/snapshot_side.jpg",
				Frame:         7,
				Duration:      3 * time.Millisecond,
				Failure:       "capture file is empty: /out/snapshot_side.jpg",
			},
			{
				Panel:         "modelPanel3",
				RequestedPath: "/out/snapshot_modelPanel3.jpg",
				Error:         errors.New("render failed for modelPanel3"),
			},
		},
		Passed:   1,
		Failed:   2,
		Duration: 40 * time.Millisecond,
	}
}

func TestConsoleFormatBatch(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatBatch(sampleBatch())
	out := buf.String()

	assert.Contains(t, out, "✓ modelPanel1 → /out/snapshot_persp.jpg")
	assert.Contains(t, out, "✗ modelPanel2 (capture file is empty")
	assert.Contains(t, out, "x modelPanel3 (render failed for modelPanel3)")
	assert.Contains(t, out, "1 captured")
	assert.Contains(t, out, "2 failed")
	assert.Contains(t, out, "3 total")
	assert.Contains(t, out, "Time:   40ms")
}

func TestConsoleVerbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatBatch(sampleBatch())
	out := buf.String()

	assert.Contains(t, out, "Camera: persp")
	assert.Contains(t, out, "Frame:  7")
	assert.Contains(t, out, "2048 bytes (jpg)")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatBatch(sampleBatch())
	require.NoError(t, f.Flush(40*time.Millisecond))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Captured)
	assert.Equal(t, 2, out.Summary.Failed)
	assert.Equal(t, float64(40), out.Duration)

	require.Len(t, out.Panels, 3)
	assert.Equal(t, "/out/snapshot_persp.jpg", out.Panels[0].Path)
	assert.True(t, out.Panels[0].Passed)
	assert.Contains(t, out.Panels[1].Failure, "empty")
	assert.Equal(t, "render failed for modelPanel3", out.Panels[2].Error)
	assert.Empty(t, out.Panels[2].Path)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatBatch(sampleBatch())
	require.NoError(t, f.Flush(40*time.Millisecond))
	out := buf.String()

	assert.Contains(t, out, "TAP version 13")
	assert.Contains(t, out, "1..3")
	assert.Contains(t, out, "ok 1 - modelPanel1")
	assert.Contains(t, out, "not ok 2 - modelPanel2")
	assert.Contains(t, out, "severity: fail")
	assert.Contains(t, out, "not ok 3 - modelPanel3")
	assert.Contains(t, out, "severity: error")
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatBatch(sampleBatch())
	require.NoError(t, f.Flush(40*time.Millisecond))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	assert.Equal(t, "takesnap", suites.Name)
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)

	require.Len(t, suites.TestSuites, 1)
	cases := suites.TestSuites[0].TestCases
	require.Len(t, cases, 3)
	assert.Nil(t, cases[0].Failure)
	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "VerificationFailure", cases[1].Failure.Type)
	require.NotNil(t, cases[2].Error)
	assert.Equal(t, "render failed for modelPanel3", cases[2].Error.Message)
}
