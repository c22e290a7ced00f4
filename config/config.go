package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"infigrid/canvas"
)

const (
	DefaultCellSize   = 10.0
	DefaultScaleStep  = 0.1
	DefaultMinScale   = 1.0
	DefaultMaxScale   = 10.0
	DefaultNotchSteps = 1
	DefaultWidth      = 1024
	DefaultHeight     = 768
)

// Background modes.
const (
	ModeLines = "lines"
	ModeTile  = "tile"
)

type Config struct {
	Grid   GridConfig   `yaml:"grid" toml:"grid"`
	Input  InputConfig  `yaml:"input" toml:"input"`
	Window WindowConfig `yaml:"window" toml:"window"`
	Colors ColorConfig  `yaml:"colors" toml:"colors"`
}

type GridConfig struct {
	CellSize  float64 `yaml:"cell_size" toml:"cell_size"`
	ScaleStep float64 `yaml:"scale_step" toml:"scale_step"`
	MinScale  float64 `yaml:"min_scale" toml:"min_scale"`
	MaxScale  float64 `yaml:"max_scale" toml:"max_scale"`
}

type InputConfig struct {
	// NotchSteps is the number of zoom steps applied per wheel notch.
	NotchSteps int `yaml:"notch_steps" toml:"notch_steps"`
}

type WindowConfig struct {
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Title      string `yaml:"title" toml:"title"`
	Background string `yaml:"background" toml:"background"`
	Debug      bool   `yaml:"debug" toml:"debug"`
}

type ColorConfig struct {
	Background string `yaml:"background" toml:"background"`
	Line       string `yaml:"line" toml:"line"`
	Marker     string `yaml:"marker" toml:"marker"`
}

func Default() *Config {
	return &Config{
		Grid: GridConfig{
			CellSize:  DefaultCellSize,
			ScaleStep: DefaultScaleStep,
			MinScale:  DefaultMinScale,
			MaxScale:  DefaultMaxScale,
		},
		Input: InputConfig{NotchSteps: DefaultNotchSteps},
		Window: WindowConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Title:      "infigrid",
			Background: ModeLines,
		},
		Colors: ColorConfig{
			Background: "#ffffff",
			Line:       "#c0c0c0",
			Marker:     "#ff0000",
		},
	}
}

// Load reads a yaml or toml file over the defaults. The format is chosen
// by extension; anything but .toml is parsed as yaml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize))
	}
	if c.Grid.ScaleStep <= 0 {
		errs = append(errs, fmt.Errorf("grid.scale_step must be positive, got %v", c.Grid.ScaleStep))
	}
	if c.Grid.MinScale <= 0 {
		errs = append(errs, fmt.Errorf("grid.min_scale must be positive, got %v", c.Grid.MinScale))
	}
	if c.Grid.MaxScale < c.Grid.MinScale {
		errs = append(errs, fmt.Errorf("grid.max_scale %v is below min_scale %v", c.Grid.MaxScale, c.Grid.MinScale))
	}
	if c.Input.NotchSteps == 0 {
		errs = append(errs, errors.New("input.notch_steps must not be zero"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.Background != ModeLines && c.Window.Background != ModeTile {
		errs = append(errs, fmt.Errorf("window.background must be %q or %q, got %q", ModeLines, ModeTile, c.Window.Background))
	}
	for name, hex := range map[string]string{
		"colors.background": c.Colors.Background,
		"colors.line":       c.Colors.Line,
		"colors.marker":     c.Colors.Marker,
	} {
		if _, err := ParseHex(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Params converts the grid section to viewport constants.
func (c *Config) Params() canvas.Params {
	return canvas.Params{
		CellSize:  c.Grid.CellSize,
		ScaleStep: c.Grid.ScaleStep,
		MinScale:  c.Grid.MinScale,
		MaxScale:  c.Grid.MaxScale,
	}
}

// Palette is the parsed color section.
type Palette struct {
	Background color.RGBA
	Line       color.RGBA
	Marker     color.RGBA
}

// Palette parses the color section. Call Validate first.
func (c *Config) Palette() Palette {
	bg, _ := ParseHex(c.Colors.Background)
	line, _ := ParseHex(c.Colors.Line)
	marker, _ := ParseHex(c.Colors.Marker)
	return Palette{Background: bg, Line: line, Marker: marker}
}

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
