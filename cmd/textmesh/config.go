package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a single conversion.
type Config struct {
	Font     string `yaml:"font"`     // Path to a font file, empty for Go Regular
	Provider string `yaml:"provider"` // truetype, sfnt, or gotext

	Text    string  `yaml:"text"`
	Quality int     `yaml:"quality"`
	Size    float64 `yaml:"size"`    // Ascent (baseline to top) in model units
	Spacing float64 `yaml:"spacing"` // Multiplier for glyph advances
	HAlign  string  `yaml:"halign"`
	VAlign  string  `yaml:"valign"`

	Depth       float64 `yaml:"depth"`
	SmoothAngle float64 `yaml:"smooth_angle"` // Degrees
	Flat        bool    `yaml:"flat"`

	Out   string  `yaml:"out"`
	Scale float64 `yaml:"scale"` // Pixels per model unit for images

	Verbose bool `yaml:"verbose"`

	configPath string
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: "truetype",
		Quality:  20,
		Size:     10,
		Spacing:  1,
		HAlign:   "left",
		VAlign:   "baseline",
		Depth:    2,
		Scale:    20,
	}
}

// Load builds a config with priority: defaults < file < flags.
func Load(args []string) (*Config, error) {
	probe := Default()
	if err := newFlagSet(probe).Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if probe.configPath != "" {
		if err := loadFromFile(cfg, probe.configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", probe.configPath, err)
		}
	}

	// Flags are bound to the fields loaded so far, so only the flags given
	// explicitly override the file.
	if err := newFlagSet(cfg).Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("textmesh", flag.ContinueOnError)
	fs.StringVar(&cfg.configPath, "config", cfg.configPath, "path to YAML config file")
	fs.StringVar(&cfg.Font, "font", cfg.Font, "path to TTF/OTF font file (default: Go Regular)")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "outline reader: truetype, sfnt, or gotext")
	fs.StringVar(&cfg.Text, "text", cfg.Text, "text to convert")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "segments per curve")
	fs.Float64Var(&cfg.Size, "size", cfg.Size, "text size (ascent) in model units")
	fs.Float64Var(&cfg.Spacing, "spacing", cfg.Spacing, "advance multiplier")
	fs.StringVar(&cfg.HAlign, "halign", cfg.HAlign, "horizontal alignment: left, center, or right")
	fs.StringVar(&cfg.VAlign, "valign", cfg.VAlign, "vertical alignment: baseline, top, center, or bottom")
	fs.Float64Var(&cfg.Depth, "depth", cfg.Depth, "extrusion depth in model units")
	fs.Float64Var(&cfg.SmoothAngle, "smooth", cfg.SmoothAngle, "largest angle in degrees between smoothed wall faces")
	fs.BoolVar(&cfg.Flat, "flat", cfg.Flat, "produce a flat mesh without extrusion")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "output path (.stl, .obj, .png, or .jpg)")
	fs.Float64Var(&cfg.Scale, "scale", cfg.Scale, "pixels per model unit for image output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "log pipeline diagnostics")
	return fs
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks that every field has a usable value.
func (c *Config) Validate() error {
	if c.Text == "" {
		return errors.New("text must not be empty")
	}
	if c.Out == "" {
		return errors.New("output path must not be empty")
	}
	switch c.Provider {
	case "truetype", "sfnt", "gotext":
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	if c.Quality < 1 {
		return fmt.Errorf("quality must be >= 1 (got %d)", c.Quality)
	}
	if c.Size <= 0 {
		return errors.New("size must be > 0")
	}
	if c.Spacing < 0 {
		return errors.New("spacing must be >= 0")
	}
	if c.Scale <= 0 {
		return errors.New("scale must be > 0")
	}
	if _, err := parseHAlign(c.HAlign); err != nil {
		return err
	}
	if _, err := parseVAlign(c.VAlign); err != nil {
		return err
	}
	return nil
}
