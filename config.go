package easel

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the tunables shared by the canvas, camera, batcher and picker.
// Every field can be set from the environment with the EASEL_ prefix, e.g.
// EASEL_MAX_INSTANCES=500.
type Config struct {
	MinZoom       float64 `envconfig:"MIN_ZOOM" default:"0.02"`
	MaxZoom       float64 `envconfig:"MAX_ZOOM" default:"4"`
	MaxInstances  int     `envconfig:"MAX_INSTANCES" default:"1000"`
	PickRadius    float64 `envconfig:"PICK_RADIUS" default:"0"`
	CurveSegments int     `envconfig:"CURVE_SEGMENTS" default:"32"`
	Culling       bool    `envconfig:"CULLING" default:"true"`
	Debug         bool    `envconfig:"DEBUG" default:"false"`
	DragDeadZone  float64 `envconfig:"DRAG_DEAD_ZONE" default:"4"`
	WheelZoomStep float64 `envconfig:"WHEEL_ZOOM_STEP" default:"1.1"`
	WindowWidth   int     `envconfig:"WINDOW_WIDTH" default:"1280"`
	WindowHeight  int     `envconfig:"WINDOW_HEIGHT" default:"720"`
	WindowTitle   string  `envconfig:"WINDOW_TITLE" default:"easel"`
	Background    string  `envconfig:"BACKGROUND" default:"#ffffff"`
}

// DefaultConfig returns the configuration LoadConfig produces with an empty
// environment.
func DefaultConfig() Config {
	return Config{
		MinZoom:       0.02,
		MaxZoom:       4,
		MaxInstances:  1000,
		CurveSegments: 32,
		Culling:       true,
		DragDeadZone:  4,
		WheelZoomStep: 1.1,
		WindowWidth:   1280,
		WindowHeight:  720,
		WindowTitle:   "easel",
		Background:    "#ffffff",
	}
}

// LoadConfig reads EASEL_* environment variables over the defaults and
// validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("easel", &cfg); err != nil {
		return Config{}, fmt.Errorf("easel: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("easel: invalid config")

// Validate reports inconsistent values.
func (c Config) Validate() error {
	switch {
	case c.MinZoom <= 0:
		return fmt.Errorf("%w: MinZoom must be > 0, got %v", ErrInvalidConfig, c.MinZoom)
	case c.MaxZoom < c.MinZoom:
		return fmt.Errorf("%w: MaxZoom %v < MinZoom %v", ErrInvalidConfig, c.MaxZoom, c.MinZoom)
	case c.MaxInstances < 1:
		return fmt.Errorf("%w: MaxInstances must be >= 1, got %d", ErrInvalidConfig, c.MaxInstances)
	case c.CurveSegments < 3:
		return fmt.Errorf("%w: CurveSegments must be >= 3, got %d", ErrInvalidConfig, c.CurveSegments)
	case c.PickRadius < 0:
		return fmt.Errorf("%w: PickRadius must be >= 0, got %v", ErrInvalidConfig, c.PickRadius)
	}
	if _, err := ParseHexColor(c.Background); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BackgroundColor returns the parsed Background, or white if it is malformed.
func (c Config) BackgroundColor() Color {
	col, err := ParseHexColor(c.Background)
	if err != nil {
		return ColorWhite
	}
	return col
}

// withDefaults fills zero-valued fields from DefaultConfig so a partially
// populated Config literal is usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = max(d.MaxZoom, c.MinZoom)
	}
	if c.MaxInstances < 1 {
		c.MaxInstances = d.MaxInstances
	}
	if c.CurveSegments < 3 {
		c.CurveSegments = d.CurveSegments
	}
	if c.DragDeadZone <= 0 {
		c.DragDeadZone = d.DragDeadZone
	}
	if c.WheelZoomStep <= 1 {
		c.WheelZoomStep = d.WheelZoomStep
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	if c.WindowTitle == "" {
		c.WindowTitle = d.WindowTitle
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	return c
}
