package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-vision/internal/core"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Lane, cfg.Lane)
	assert.Equal(t, d.ColorMask, cfg.ColorMask)
	assert.Equal(t, d.Detectors, cfg.Detectors)
	assert.Equal(t, "MJPG", cfg.Output.Codec)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "road.yaml")
	yaml := `
log_level: debug
lane:
  right_region_x: 0.6
  line_thickness: 3
detectors:
  vehicle: /models/cars.xml
output:
  serve_addr: ":9000"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.6, cfg.Lane.RightRegionX, 1e-9)
	assert.Equal(t, 3, cfg.Lane.LineThickness)
	assert.InDelta(t, 0.55, cfg.Lane.LeftRegionX, 1e-9, "untouched keys keep defaults")
	assert.Equal(t, "/models/cars.xml", cfg.Detectors.Vehicle)
	assert.Equal(t, ":9000", cfg.Output.ServeAddr)
}

func TestLoadWithBoundValueWins(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "error")

	cfg, err := LoadWith(v, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, core.ErrInput)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"roi fraction above one", func(c *Config) { c.ROI.TopY = 1.2 }},
		{"roi top edge inverted", func(c *Config) { c.ROI.TopLeft, c.ROI.TopRight = 0.6, 0.4 }},
		{"canny thresholds inverted", func(c *Config) { c.Edges.Low = 200 }},
		{"zero hough threshold", func(c *Config) { c.Hough.Threshold = 0 }},
		{"negative min slope", func(c *Config) { c.Lane.MinSlope = -0.5 }},
		{"region fraction negative", func(c *Config) { c.Lane.LeftRegionX = -0.1 }},
		{"zero line thickness", func(c *Config) { c.Lane.LineThickness = 0 }},
		{"scale factor at one", func(c *Config) { c.Detectors.ScaleFactor = 1 }},
		{"short codec", func(c *Config) { c.Output.Codec = "MJ" }},
		{"jpeg quality", func(c *Config) { c.Output.JPEGQuality = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrInput)
		})
	}
}

func TestClassifierPathsOrder(t *testing.T) {
	cfg := Default()
	paths := cfg.ClassifierPaths()
	require.Len(t, paths, 3)
	assert.Equal(t, cfg.Detectors.Pedestrian, paths[core.ClassPedestrian])
	assert.Equal(t, cfg.Detectors.Vehicle, paths[core.ClassVehicle])
	assert.Equal(t, cfg.Detectors.Signal, paths[core.ClassSignal])
}
