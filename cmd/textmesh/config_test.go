package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider != "truetype" {
		t.Errorf("expected provider truetype, got %s", cfg.Provider)
	}
	if cfg.Quality != 20 {
		t.Errorf("expected quality 20, got %d", cfg.Quality)
	}
	if cfg.Size != 10 || cfg.Spacing != 1 || cfg.Depth != 2 {
		t.Errorf("unexpected sizes: %f %f %f", cfg.Size, cfg.Spacing, cfg.Depth)
	}
	if cfg.HAlign != "left" || cfg.VAlign != "baseline" {
		t.Errorf("unexpected alignment: %s %s", cfg.HAlign, cfg.VAlign)
	}
	if cfg.Flat || cfg.Verbose {
		t.Error("expected flat and verbose to be off by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
provider: sfnt
text: "Hello"
quality: 8
size: 25.5
halign: center
valign: top
depth: 4
smooth_angle: 30
flat: true
out: hello.stl
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Provider != "sfnt" || cfg.Text != "Hello" || cfg.Out != "hello.stl" {
		t.Errorf("unexpected strings: %+v", cfg)
	}
	if cfg.Quality != 8 || cfg.Size != 25.5 || cfg.Depth != 4 || cfg.SmoothAngle != 30 {
		t.Errorf("unexpected numbers: %+v", cfg)
	}
	if cfg.HAlign != "center" || cfg.VAlign != "top" || !cfg.Flat {
		t.Errorf("unexpected layout: %+v", cfg)
	}

	// Unset fields keep their defaults.
	if cfg.Spacing != 1 || cfg.Scale != 20 {
		t.Errorf("defaults were overwritten: %+v", cfg)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	if err := os.WriteFile(configPath, []byte("quality: not a number\n  bad indent"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := "text: file\nquality: 5\ndepth: 3\nout: file.stl\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load([]string{"-config", configPath, "-quality", "12", "-halign", "right"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Quality != 12 {
		t.Errorf("flag should override file: quality %d", cfg.Quality)
	}
	if cfg.Text != "file" || cfg.Depth != 3 || cfg.Out != "file.stl" {
		t.Errorf("file values were lost: %+v", cfg)
	}
	if cfg.HAlign != "right" || cfg.Size != 10 {
		t.Errorf("unexpected values: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := map[string][]string{
		"MissingText": {"-out", "a.stl"},
		"MissingOut":  {"-text", "a"},
		"Provider":    {"-text", "a", "-out", "a.stl", "-provider", "freetype"},
		"Quality":     {"-text", "a", "-out", "a.stl", "-quality", "0"},
		"Size":        {"-text", "a", "-out", "a.stl", "-size", "-1"},
		"Spacing":     {"-text", "a", "-out", "a.stl", "-spacing", "-1"},
		"HAlign":      {"-text", "a", "-out", "a.stl", "-halign", "middle"},
		"VAlign":      {"-text", "a", "-out", "a.stl", "-valign", "middle"},
		"Config":      {"-text", "a", "-out", "a.stl", "-config", "/nonexistent/config.yaml"},
		"Flag":        {"-text", "a", "-out", "a.stl", "-unknown"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
