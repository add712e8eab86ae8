package easel

import (
	"errors"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig = %+v\nwant %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("EASEL_MAX_INSTANCES", "250")
	t.Setenv("EASEL_PICK_RADIUS", "2.5")
	t.Setenv("EASEL_CULLING", "false")
	t.Setenv("EASEL_BACKGROUND", "#102030")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxInstances != 250 {
		t.Errorf("MaxInstances = %d, want 250", cfg.MaxInstances)
	}
	if cfg.PickRadius != 2.5 {
		t.Errorf("PickRadius = %v, want 2.5", cfg.PickRadius)
	}
	if cfg.Culling {
		t.Error("Culling should be false")
	}
	want := Color{R: 0x10 / 255.0, G: 0x20 / 255.0, B: 0x30 / 255.0, A: 1}
	if got := cfg.BackgroundColor(); !approxEqual(float64(got.R), float64(want.R), 1e-6) ||
		!approxEqual(float64(got.B), float64(want.B), 1e-6) {
		t.Errorf("BackgroundColor = %+v, want %+v", got, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unparsable", "EASEL_MAX_INSTANCES", "many"},
		{"invalid", "EASEL_MAX_INSTANCES", "0"},
		{"bad color", "EASEL_BACKGROUND", "purple"},
		{"zoom range", "EASEL_MAX_ZOOM", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("%s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min zoom", func(c *Config) { c.MinZoom = 0 }},
		{"max below min", func(c *Config) { c.MaxZoom = 0.01 }},
		{"instances", func(c *Config) { c.MaxInstances = 0 }},
		{"curve segments", func(c *Config) { c.CurveSegments = 2 }},
		{"pick radius", func(c *Config) { c.PickRadius = -1 }},
		{"background", func(c *Config) { c.Background = "#12" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig invalid: %v", err)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{MaxInstances: 64, Background: "#000000"}.withDefaults()
	if cfg.MaxInstances != 64 || cfg.Background != "#000000" {
		t.Error("explicit fields should be kept")
	}
	d := DefaultConfig()
	if cfg.MinZoom != d.MinZoom || cfg.MaxZoom != d.MaxZoom || cfg.CurveSegments != d.CurveSegments {
		t.Errorf("zero fields not defaulted: %+v", cfg)
	}
	if cfg.WindowWidth != 1280 || cfg.WindowTitle != "easel" {
		t.Errorf("window defaults missing: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config invalid: %v", err)
	}
}

func TestPartialConfigReachesCanvas(t *testing.T) {
	c := NewCanvas(CanvasOptions{Config: Config{MaxInstances: 10}})
	if got := c.Renderer().BatchManager().MaxInstances(); got != 10 {
		t.Errorf("MaxInstances = %d, want 10", got)
	}
	if lo, hi := c.Camera().ZoomRange(); lo != 0.02 || hi != 4 {
		t.Errorf("zoom range = %v..%v", lo, hi)
	}
}

func TestBackgroundColorFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = "bogus"
	if cfg.BackgroundColor() != ColorWhite {
		t.Error("malformed background should fall back to white")
	}
	cfg.Background = "#000000"
	if cfg.BackgroundColor() != ColorBlack {
		t.Errorf("BackgroundColor = %+v", cfg.BackgroundColor())
	}
}
