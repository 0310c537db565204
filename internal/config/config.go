// Pipeline configuration with defaults, YAML overrides and validation
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"road-vision/internal/core"
)

// HLSRange is an inclusive per-channel range in OpenCV's 8-bit HLS space
// (H in 0..180, L and S in 0..255).
type HLSRange struct {
	Lower [3]float64 `mapstructure:"lower" yaml:"lower"`
	Upper [3]float64 `mapstructure:"upper" yaml:"upper"`
}

// ColorMaskConfig holds the two lane-marking color bands.
type ColorMaskConfig struct {
	Yellow HLSRange `mapstructure:"yellow" yaml:"yellow"`
	White  HLSRange `mapstructure:"white" yaml:"white"`
}

// ROIConfig describes the road trapezoid as fractions of the frame size.
type ROIConfig struct {
	TopY     float64 `mapstructure:"top_y" yaml:"top_y"`
	TopLeft  float64 `mapstructure:"top_left" yaml:"top_left"`
	TopRight float64 `mapstructure:"top_right" yaml:"top_right"`
}

// EdgeConfig holds the Canny hysteresis thresholds.
type EdgeConfig struct {
	Low  float32 `mapstructure:"low" yaml:"low"`
	High float32 `mapstructure:"high" yaml:"high"`
}

// HoughConfig holds probabilistic Hough transform parameters.
type HoughConfig struct {
	Rho           float32 `mapstructure:"rho" yaml:"rho"`
	Theta         float32 `mapstructure:"theta" yaml:"theta"`
	Threshold     int     `mapstructure:"threshold" yaml:"threshold"`
	MinLineLength float32 `mapstructure:"min_line_length" yaml:"min_line_length"`
	MaxLineGap    float32 `mapstructure:"max_line_gap" yaml:"max_line_gap"`
}

// LaneConfig controls slope gating and extrapolation heights.
type LaneConfig struct {
	MinSlope      float64 `mapstructure:"min_slope" yaml:"min_slope"`
	RightRegionX  float64 `mapstructure:"right_region_x" yaml:"right_region_x"`
	LeftRegionX   float64 `mapstructure:"left_region_x" yaml:"left_region_x"`
	NearY         float64 `mapstructure:"near_y" yaml:"near_y"`
	FarY          float64 `mapstructure:"far_y" yaml:"far_y"`
	LineThickness int     `mapstructure:"line_thickness" yaml:"line_thickness"`
	OverlayWeight float64 `mapstructure:"overlay_weight" yaml:"overlay_weight"`
	SourceWeight  float64 `mapstructure:"source_weight" yaml:"source_weight"`
	BlendOffset   float64 `mapstructure:"blend_offset" yaml:"blend_offset"`
}

// DetectorConfig describes the classifier registry.
type DetectorConfig struct {
	Pedestrian   string  `mapstructure:"pedestrian" yaml:"pedestrian"`
	Vehicle      string  `mapstructure:"vehicle" yaml:"vehicle"`
	Signal       string  `mapstructure:"signal" yaml:"signal"`
	ScaleFactor  float64 `mapstructure:"scale_factor" yaml:"scale_factor"`
	MinNeighbors int     `mapstructure:"min_neighbors" yaml:"min_neighbors"`
}

// OutputConfig controls the video sink and the preview server.
type OutputConfig struct {
	Codec       string `mapstructure:"codec" yaml:"codec"`
	ServeAddr   string `mapstructure:"serve_addr" yaml:"serve_addr"`
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
}

// Config is the full set of pipeline tunables.
type Config struct {
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
	ColorMask ColorMaskConfig `mapstructure:"color_mask" yaml:"color_mask"`
	ROI       ROIConfig       `mapstructure:"roi" yaml:"roi"`
	Edges     EdgeConfig      `mapstructure:"edges" yaml:"edges"`
	Hough     HoughConfig     `mapstructure:"hough" yaml:"hough"`
	Lane      LaneConfig      `mapstructure:"lane" yaml:"lane"`
	Detectors DetectorConfig  `mapstructure:"detectors" yaml:"detectors"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// Default returns the configuration the pipeline ships with.
func Default() Config {
	return Config{
		LogLevel: "info",
		ColorMask: ColorMaskConfig{
			Yellow: HLSRange{Lower: [3]float64{10, 0, 90}, Upper: [3]float64{40, 255, 255}},
			White:  HLSRange{Lower: [3]float64{0, 70, 0}, Upper: [3]float64{255, 255, 255}},
		},
		ROI:   ROIConfig{TopY: 0.6, TopLeft: 0.45, TopRight: 0.55},
		Edges: EdgeConfig{Low: 110, High: 120},
		Hough: HoughConfig{
			Rho:           1,
			Theta:         float32(math.Pi / 180),
			Threshold:     50,
			MinLineLength: 100,
			MaxLineGap:    100,
		},
		Lane: LaneConfig{
			MinSlope:      0.5,
			RightRegionX:  0.78,
			LeftRegionX:   0.55,
			NearY:         0.65,
			FarY:          1.0,
			LineThickness: 5,
			OverlayWeight: 0.8,
			SourceWeight:  1.0,
			BlendOffset:   0,
		},
		Detectors: DetectorConfig{
			Pedestrian:   "./xmlfile/pedestrian1.xml",
			Vehicle:      "./xmlfile/carDetection.xml",
			Signal:       "./xmlfile/traffic_light2.xml",
			ScaleFactor:  1.1,
			MinNeighbors: 2,
		},
		Output: OutputConfig{
			Codec:       "MJPG",
			JPEGQuality: 90,
		},
	}
}

// Load reads defaults, then overlays the YAML file at path when it is set.
func Load(path string) (Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load against a caller-owned viper instance, so flags bound on
// it take precedence over the file.
func LoadWith(v *viper.Viper, path string) (Config, error) {
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: reading config %s: %v", core.ErrInput, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decoding config: %v", core.ErrInput, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("color_mask.yellow.lower", d.ColorMask.Yellow.Lower[:])
	v.SetDefault("color_mask.yellow.upper", d.ColorMask.Yellow.Upper[:])
	v.SetDefault("color_mask.white.lower", d.ColorMask.White.Lower[:])
	v.SetDefault("color_mask.white.upper", d.ColorMask.White.Upper[:])

	v.SetDefault("roi.top_y", d.ROI.TopY)
	v.SetDefault("roi.top_left", d.ROI.TopLeft)
	v.SetDefault("roi.top_right", d.ROI.TopRight)

	v.SetDefault("edges.low", d.Edges.Low)
	v.SetDefault("edges.high", d.Edges.High)

	v.SetDefault("hough.rho", d.Hough.Rho)
	v.SetDefault("hough.theta", d.Hough.Theta)
	v.SetDefault("hough.threshold", d.Hough.Threshold)
	v.SetDefault("hough.min_line_length", d.Hough.MinLineLength)
	v.SetDefault("hough.max_line_gap", d.Hough.MaxLineGap)

	v.SetDefault("lane.min_slope", d.Lane.MinSlope)
	v.SetDefault("lane.right_region_x", d.Lane.RightRegionX)
	v.SetDefault("lane.left_region_x", d.Lane.LeftRegionX)
	v.SetDefault("lane.near_y", d.Lane.NearY)
	v.SetDefault("lane.far_y", d.Lane.FarY)
	v.SetDefault("lane.line_thickness", d.Lane.LineThickness)
	v.SetDefault("lane.overlay_weight", d.Lane.OverlayWeight)
	v.SetDefault("lane.source_weight", d.Lane.SourceWeight)
	v.SetDefault("lane.blend_offset", d.Lane.BlendOffset)

	v.SetDefault("detectors.pedestrian", d.Detectors.Pedestrian)
	v.SetDefault("detectors.vehicle", d.Detectors.Vehicle)
	v.SetDefault("detectors.signal", d.Detectors.Signal)
	v.SetDefault("detectors.scale_factor", d.Detectors.ScaleFactor)
	v.SetDefault("detectors.min_neighbors", d.Detectors.MinNeighbors)

	v.SetDefault("output.codec", d.Output.Codec)
	v.SetDefault("output.serve_addr", d.Output.ServeAddr)
	v.SetDefault("output.jpeg_quality", d.Output.JPEGQuality)
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	fractions := map[string]float64{
		"roi.top_y":           c.ROI.TopY,
		"roi.top_left":        c.ROI.TopLeft,
		"roi.top_right":       c.ROI.TopRight,
		"lane.right_region_x": c.Lane.RightRegionX,
		"lane.left_region_x":  c.Lane.LeftRegionX,
		"lane.near_y":         c.Lane.NearY,
		"lane.far_y":          c.Lane.FarY,
	}
	for name, v := range fractions {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", core.ErrInput, name, v)
		}
	}

	if c.ROI.TopLeft >= c.ROI.TopRight {
		return fmt.Errorf("%w: roi.top_left must be less than roi.top_right", core.ErrInput)
	}
	if c.Edges.Low >= c.Edges.High {
		return fmt.Errorf("%w: edges.low must be less than edges.high", core.ErrInput)
	}
	if c.Hough.Rho <= 0 || c.Hough.Theta <= 0 || c.Hough.Threshold <= 0 {
		return fmt.Errorf("%w: hough rho, theta and threshold must be positive", core.ErrInput)
	}
	if c.Lane.MinSlope <= 0 {
		return fmt.Errorf("%w: lane.min_slope must be positive", core.ErrInput)
	}
	if c.Lane.LineThickness < 1 {
		return fmt.Errorf("%w: lane.line_thickness must be at least 1", core.ErrInput)
	}
	if c.Detectors.ScaleFactor <= 1 {
		return fmt.Errorf("%w: detectors.scale_factor must be greater than 1", core.ErrInput)
	}
	if len(c.Output.Codec) != 4 {
		return fmt.Errorf("%w: output.codec must be a four character code, got %q", core.ErrInput, c.Output.Codec)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("%w: output.jpeg_quality must be between 1 and 100", core.ErrInput)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", core.ErrInput, c.LogLevel)
	}
	return nil
}

// ClassifierPaths returns the model files in registry order
// (pedestrian, vehicle, signal).
func (c Config) ClassifierPaths() []string {
	return []string{c.Detectors.Pedestrian, c.Detectors.Vehicle, c.Detectors.Signal}
}
