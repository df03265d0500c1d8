package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision/go-sscma/tracker"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, tracker.DefaultConfig(), cfg.TrackerConfig())
	assert.InDelta(t, 0.45, cfg.GetNMSThreshold(), 1e-6)
	assert.Equal(t, 30, cfg.GetTrailLength())
	assert.Equal(t, 0, cfg.GetDwellFrames())

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Empty(t, opts.Zones)
	assert.Empty(t, opts.Classes)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "pipeline.json", `{
  "tracker": {
    "frame_rate": 15,
    "track_buffer": 60,
    "match_thresh": 0.7,
    "scale_factor": 0.5
  },
  "nms_threshold": 0.5,
  "classes": [0, 2],
  "trail_length": 10,
  "dwell_frames": 45,
  "zones": [
    {"name": "door", "polygon": [[0, 0], [100, 0], [100, 100], [0, 100]], "margin": 8}
  ]
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	tc := cfg.TrackerConfig()
	assert.Equal(t, 15, tc.FrameRate)
	assert.Equal(t, 60, tc.TrackBuffer)
	assert.Equal(t, 30, tc.MaxTimeLost())
	assert.InDelta(t, 0.7, tc.MatchThresh, 1e-6)
	assert.InDelta(t, 0.5, tc.ScaleFactor, 1e-6)

	// unset fields keep their defaults
	assert.InDelta(t, 0.5, tc.TrackThresh, 1e-6)
	assert.InDelta(t, 0.6, tc.HighThresh, 1e-6)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, opts.NMSThreshold, 1e-6)
	assert.Equal(t, []int{0, 2}, opts.Classes)
	assert.Equal(t, 10, opts.TrailLength)
	assert.Equal(t, 45, opts.DwellFrames)
	require.Len(t, opts.Zones, 1)
	assert.Equal(t, "door", opts.Zones[0].Name)
	assert.Equal(t, 8, opts.Zones[0].Margin)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]struct {
		name string
		body string
	}{
		"extension":      {"pipeline.yaml", `{}`},
		"syntax":         {"pipeline.json", `{"tracker": `},
		"threshold":      {"pipeline.json", `{"tracker": {"track_thresh": 1.5}}`},
		"frame rate":     {"pipeline.json", `{"tracker": {"frame_rate": 0}}`},
		"nms":            {"pipeline.json", `{"nms_threshold": -1}`},
		"trail":          {"pipeline.json", `{"trail_length": 0}`},
		"dwell":          {"pipeline.json", `{"dwell_frames": -5}`},
		"zone points":    {"pipeline.json", `{"zones": [{"name": "a", "polygon": [[0, 0], [1, 1]]}]}`},
		"zone name":      {"pipeline.json", `{"zones": [{"polygon": [[0, 0], [1, 0], [1, 1]]}]}`},
		"zone duplicate": {"pipeline.json", `{"zones": [{"name": "a", "polygon": [[0, 0], [1, 0], [1, 1]]}, {"name": "a", "polygon": [[0, 0], [1, 0], [1, 1]]}]}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.name, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadValidationErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline.json", `{"tracker": {"high_thresh": 2}}`))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoadTooLarge(t *testing.T) {
	body := `{"classes": [` + strings.Repeat("1,", maxFileSize/2) + `1]}`
	_, err := Load(writeConfig(t, "pipeline.json", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
