// snapmap is the local dungeon previewer: it grows the sample dungeon (or
// one described by --config) and streams it around a movable source.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"snapmap/assets"
	"snapmap/internal/config"
	"snapmap/internal/preview"

	"github.com/gdamore/tcell/v2"
)

func main() {
	cfgFile := flag.String("config", "", "Build config JSON (defaults to the built-in sample dungeon)")
	seed := flag.Int64("seed", 0, "Seed override (0 keeps the config seed)")
	logFile := flag.String("log", "", "Write debug logs to this file")
	flag.Parse()

	opts, err := options(*cfgFile, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	// The screen owns stdout, so logs only go to a file.
	opts.Logger = slog.New(slog.DiscardHandler)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		opts.Logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "error: init screen: %v\n", err)
		os.Exit(1)
	}

	s, err := preview.New(screen, opts)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	s.Run()
	screen.Fini()
}

func options(path string, seed int64) (preview.Options, error) {
	opts := preview.Options{Depth: 1}
	b := config.Default()
	if path != "" {
		var err error
		if b, err = config.Load(path); err != nil {
			return opts, err
		}
		if opts.Database, opts.Flow, err = b.Inputs(); err != nil {
			return opts, err
		}
	} else {
		db, err := assets.Catalog()
		if err != nil {
			return opts, err
		}
		opts.Database, opts.Flow = db, assets.Flow()
	}
	if seed != 0 {
		b.Seed = seed
	}
	opts.Grow = b.Grow()
	opts.DoorLevel, opts.WallLevel = b.DoorLevel, b.WallLevel
	return opts, nil
}
