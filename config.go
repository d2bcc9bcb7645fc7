package rowan

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RunConfig holds window and loop settings for Run. It is usually loaded
// from a TOML file:
//
//	title = "My Game"
//	width = 1280
//	height = 720
//	resizable = true
//	tps = 60
//	resize_policy = "scale_with_screen"
//	clear_color = { r = 0.1, g = 0.1, b = 0.15, a = 1 }
type RunConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`

	// TPS is the number of logic ticks per second.
	TPS int `toml:"tps"`

	// Debug enables per-frame builder statistics.
	Debug bool `toml:"debug"`

	ClearColor   Color        `toml:"clear_color"`
	ResizePolicy ResizePolicy `toml:"resize_policy"`

	// ScreenshotDir receives Engine.Screenshot captures.
	ScreenshotDir string `toml:"screenshot_dir"`
}

const (
	defaultWindowTitle = "rowan"
	defaultWidth       = 640
	defaultHeight      = 480
	defaultTPS         = 60
	defaultShotDir     = "screenshots"
)

// DefaultRunConfig returns the configuration used for zero fields.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:  defaultWindowTitle,
		Width:  defaultWidth,
		Height: defaultHeight,
		TPS:    defaultTPS,

		ScreenshotDir: defaultShotDir,
	}
}

// withDefaults fills zero fields from DefaultRunConfig.
func (c RunConfig) withDefaults() RunConfig {
	d := DefaultRunConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.TPS == 0 {
		c.TPS = d.TPS
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	return c
}

// Validate reports settings Run cannot honor.
func (c RunConfig) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("rowan: run config: window size %dx%d must not be negative", c.Width, c.Height)
	}
	if c.TPS < 0 {
		return fmt.Errorf("rowan: run config: tps %d must not be negative", c.TPS)
	}
	if _, err := c.ResizePolicy.MarshalText(); err != nil {
		return fmt.Errorf("rowan: run config: %w", err)
	}
	return nil
}

// LoadRunConfig decodes TOML data into a RunConfig. Unknown keys are an
// error. Zero fields take their defaults.
func LoadRunConfig(data []byte) (RunConfig, error) {
	var cfg RunConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return RunConfig{}, fmt.Errorf("rowan: run config: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// LoadRunConfigFile reads and decodes a TOML RunConfig from path.
func LoadRunConfigFile(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("rowan: run config: %w", err)
	}
	return LoadRunConfig(data)
}
