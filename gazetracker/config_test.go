package gazetracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"scale", func(c *Config) { c.DetectionScale = 0 }},
		{"window", func(c *Config) { c.SearchWindowSize = c.TemplateSize }},
		{"history", func(c *Config) { c.EyeHistory = 0 }},
		{"eye image", func(c *Config) { c.EyeImageWidth = 81 }},
		{"grid", func(c *Config) { c.GridCols = 1 }},
		{"radius", func(c *Config) { c.RadiusSpeed = 0 }},
		{"failures", func(c *Config) { c.MaxTrackingFailures = -1 }},
		{"landmarks", func(c *Config) { c.LandmarkIndices[0] = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_MissingSettingsUseDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "tracking.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultCascadePath, s.CascadePath)
	assert.Equal(t, DefaultPuplocPath, s.PuplocPath)
	assert.Equal(t, DefaultFlpDir, s.FlpDir)
	assert.Equal(t, DefaultConfig(), s.Apply(DefaultConfig()))
}

func TestConfig_PartialSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.json")
	data := `{
		"cascade_path": "models/facefinder",
		"initial_weight": 0.5,
		"max_tracking_failures": 30,
		"landmark_indices": [5, 4, 3, 2]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "models/facefinder", s.CascadePath)
	assert.Equal(t, DefaultPuplocPath, s.PuplocPath)

	cfg := s.Apply(DefaultConfig())
	assert.Equal(t, 0.5, cfg.InitialWeight)
	assert.Equal(t, 1.0, cfg.PreviousWeight)
	assert.Equal(t, 30, cfg.MaxTrackingFailures)
	assert.Equal(t, [NumCorners]int{5, 4, 3, 2}, cfg.LandmarkIndices)
	assert.Equal(t, 20, cfg.TemplateSize)
}

func TestConfig_BadSettings(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSettings(filepath.Join(dir, "tracking.xml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cascade_path": `), 0o644))
	_, err = LoadSettings(path)
	assert.Error(t, err)

	path = filepath.Join(dir, "indices.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"landmark_indices": [1, 2]}`), 0o644))
	_, err = LoadSettings(path)
	assert.Error(t, err)
}
