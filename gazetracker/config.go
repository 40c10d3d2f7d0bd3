package gazetracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Config holds the tuning parameters of the tracking core.
type Config struct {
	// DetectionScale is the factor applied to the frame before landmark fitting.
	DetectionScale float64
	// LandmarkIndices selects, in corner order, the fitter landmarks used as eye corners.
	LandmarkIndices [NumCorners]int

	TemplateSize     int
	SearchWindowSize int
	// InitialWeight and PreviousWeight scale the correlation maps of the
	// initial and of the previous template before they are summed.
	InitialWeight  float64
	PreviousWeight float64
	// MaxTrackingFailures switches back to detection after that many
	// consecutive tracking failures. Zero keeps tracking forever.
	MaxTrackingFailures int

	EyeHistory  int
	GazeHistory int

	EyeImageWidth       int
	EyeImageHeight      int
	BilateralSigmaColor float64
	BilateralSigmaSpace float64

	GridRows    int
	GridCols    int
	GridMargin  float64
	RadiusMax   float64
	RadiusSpeed float64 // pixels per second
}

// DefaultConfig returns the tuning used by the EyeWriter setup.
func DefaultConfig() Config {
	return Config{
		DetectionScale:      0.5,
		LandmarkIndices:     [NumCorners]int{2, 3, 4, 5},
		TemplateSize:        20,
		SearchWindowSize:    30,
		InitialWeight:       1.0,
		PreviousWeight:      1.0,
		MaxTrackingFailures: 0,
		EyeHistory:          10,
		GazeHistory:         10,
		EyeImageWidth:       80,
		EyeImageHeight:      20,
		BilateralSigmaColor: 20,
		BilateralSigmaSpace: 3,
		GridRows:            7,
		GridCols:            7,
		GridMargin:          10,
		RadiusMax:           200,
		RadiusSpeed:         250,
	}
}

// Validate checks the configuration for values the tracker cannot run with.
func (c Config) Validate() error {
	switch {
	case c.DetectionScale <= 0 || c.DetectionScale > 1:
		return fmt.Errorf("detection scale must be in (0, 1], got %v", c.DetectionScale)
	case c.TemplateSize < 2:
		return fmt.Errorf("template size must be at least 2, got %d", c.TemplateSize)
	case c.SearchWindowSize <= c.TemplateSize:
		return fmt.Errorf("search window (%d) must be larger than the template (%d)", c.SearchWindowSize, c.TemplateSize)
	case c.EyeHistory < 1 || c.GazeHistory < 1:
		return fmt.Errorf("history lengths must be positive, got %d and %d", c.EyeHistory, c.GazeHistory)
	case c.EyeImageWidth < 8 || c.EyeImageWidth%2 != 0 || c.EyeImageHeight < 2:
		return fmt.Errorf("invalid eye image size %dx%d", c.EyeImageWidth, c.EyeImageHeight)
	case c.BilateralSigmaColor <= 0 || c.BilateralSigmaSpace <= 0:
		return fmt.Errorf("bilateral sigmas must be positive")
	case c.GridRows < 2 || c.GridCols < 2:
		return fmt.Errorf("calibration grid must be at least 2x2, got %dx%d", c.GridRows, c.GridCols)
	case c.RadiusMax <= 0 || c.RadiusSpeed <= 0:
		return fmt.Errorf("calibration radius and speed must be positive")
	case c.MaxTrackingFailures < 0:
		return fmt.Errorf("max tracking failures must not be negative, got %d", c.MaxTrackingFailures)
	}
	for _, i := range c.LandmarkIndices {
		if i < 0 {
			return fmt.Errorf("negative landmark index %d", i)
		}
	}
	return nil
}

// DefaultSettingsPath is where the host looks for the settings file.
const DefaultSettingsPath = "settings/tracking.json"

// Default model locations, used for every path missing from the settings file.
const (
	DefaultCascadePath = "data/facefinder"
	DefaultPuplocPath  = "data/puploc.bin"
	DefaultFlpDir      = "data/lps"
)

// Settings is the on-disk configuration. Tuning fields are optional;
// those left out keep their DefaultConfig value.
type Settings struct {
	CascadePath string `json:"cascade_path,omitempty"`
	PuplocPath  string `json:"puploc_path,omitempty"`
	FlpDir      string `json:"flp_dir,omitempty"`

	DetectionScale      *float64 `json:"detection_scale,omitempty"`
	LandmarkIndices     []int    `json:"landmark_indices,omitempty"`
	TemplateSize        *int     `json:"template_size,omitempty"`
	SearchWindowSize    *int     `json:"search_window_size,omitempty"`
	InitialWeight       *float64 `json:"initial_weight,omitempty"`
	PreviousWeight      *float64 `json:"previous_weight,omitempty"`
	MaxTrackingFailures *int     `json:"max_tracking_failures,omitempty"`
	EyeHistory          *int     `json:"eye_history,omitempty"`
	GazeHistory         *int     `json:"gaze_history,omitempty"`
	GridRows            *int     `json:"grid_rows,omitempty"`
	GridCols            *int     `json:"grid_cols,omitempty"`
	RadiusMax           *float64 `json:"radius_max,omitempty"`
	RadiusSpeed         *float64 `json:"radius_speed,omitempty"`
}

// LoadSettings reads the JSON settings file at path. A missing file
// yields the documented defaults.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{}
	path = filepath.Clean(path)
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.fillDefaults()
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	if s.LandmarkIndices != nil && len(s.LandmarkIndices) != NumCorners {
		return nil, fmt.Errorf("landmark_indices needs %d entries, got %d", NumCorners, len(s.LandmarkIndices))
	}
	s.fillDefaults()
	return s, nil
}

func (s *Settings) fillDefaults() {
	if s.CascadePath == "" {
		s.CascadePath = DefaultCascadePath
	}
	if s.PuplocPath == "" {
		s.PuplocPath = DefaultPuplocPath
	}
	if s.FlpDir == "" {
		s.FlpDir = DefaultFlpDir
	}
}

// Apply overlays the tuning fields present in the settings onto c.
func (s *Settings) Apply(c Config) Config {
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(&c.DetectionScale, s.DetectionScale)
	setInt(&c.TemplateSize, s.TemplateSize)
	setInt(&c.SearchWindowSize, s.SearchWindowSize)
	setFloat(&c.InitialWeight, s.InitialWeight)
	setFloat(&c.PreviousWeight, s.PreviousWeight)
	setInt(&c.MaxTrackingFailures, s.MaxTrackingFailures)
	setInt(&c.EyeHistory, s.EyeHistory)
	setInt(&c.GazeHistory, s.GazeHistory)
	setInt(&c.GridRows, s.GridRows)
	setInt(&c.GridCols, s.GridCols)
	setFloat(&c.RadiusMax, s.RadiusMax)
	setFloat(&c.RadiusSpeed, s.RadiusSpeed)
	if len(s.LandmarkIndices) == NumCorners {
		copy(c.LandmarkIndices[:], s.LandmarkIndices)
	}
	return c
}
