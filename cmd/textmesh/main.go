package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/unixpickle/textmesh"
	"golang.org/x/image/font/gofont/goregular"
)

func main() {
	cfg, err := Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.Verbose {
		textmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	provider, err := openProvider(cfg)
	if err != nil {
		log.Fatalf("open font: %v", err)
	}

	layout, err := LayoutText(provider, cfg)
	if err != nil {
		log.Fatalf("layout: %v", err)
	}
	if len(layout.Polylines) == 0 {
		log.Fatalf("no outlines produced")
	}

	if err := WriteOutput(cfg.Out, layout, cfg.Scale); err != nil {
		log.Fatalf("write output: %v", err)
	}

	fmt.Printf("wrote %s\n", cfg.Out)
}

func openProvider(cfg *Config) (textmesh.OutlineProvider, error) {
	fontBytes := goregular.TTF
	if cfg.Font != "" {
		var err error
		fontBytes, err = os.ReadFile(cfg.Font)
		if err != nil {
			return nil, err
		}
	}
	switch cfg.Provider {
	case "truetype":
		return textmesh.ParseTTF(fontBytes)
	case "sfnt":
		return textmesh.ParseSFNT(fontBytes)
	case "gotext":
		return textmesh.ParseGoText(fontBytes)
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
