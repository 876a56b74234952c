// snapgen grows a dungeon layout and writes it as JSON.
//
// Usage:
//
//	snapgen [--config build.json] [--seed N] [--out layout.json] [--stream] [--v]
//
// Without --config the built-in sample catalog and flow graph are used.
// With --stream every chunk is loaded into an in-memory world so the door
// and wall counts of the resolved dungeon are reported.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"snapmap/assets"
	"snapmap/internal/config"
	"snapmap/internal/dungeon"
	"snapmap/internal/flow"
	"snapmap/internal/grow"
	"snapmap/internal/moduledb"
	"snapmap/internal/streaming"
	"snapmap/internal/world"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("snapgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgFile := fs.String("config", "", "Build config JSON (defaults to the built-in sample dungeon)")
	seed := fs.Int64("seed", 0, "Seed override (0 keeps the config seed)")
	out := fs.String("out", "", "Output file (stdout when empty)")
	stream := fs.Bool("stream", false, "Load every chunk and report resolved doors and walls")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	b := config.Default()
	var (
		db  *moduledb.Database
		g   *flow.Graph
		err error
	)
	if *cfgFile != "" {
		if b, err = config.Load(*cfgFile); err != nil {
			return err
		}
		if db, g, err = b.Inputs(); err != nil {
			return err
		}
	} else {
		if db, err = assets.Catalog(); err != nil {
			return err
		}
		g = assets.Flow()
	}
	if *seed != 0 {
		b.Seed = *seed
	}

	res, err := grow.New(db, logger).Grow(g, b.Grow())
	if err != nil {
		return err
	}
	logger.Info("snapgen: layout built",
		"seed", res.Seed, "attempts", res.Stats.Attempts, "modules", len(res.Layout.Modules),
		"doors", res.Layout.DoorPairs(), "open", res.Layout.Walls(), "took", res.Duration)

	if *stream {
		doors, walls := resolveAll(res.Layout, db, b, logger)
		fmt.Fprintf(stderr, "resolved %d door(s), %d wall(s)\n", doors, walls)
	}

	if *out == "" {
		data, err := res.Layout.Encode()
		if err != nil {
			return err
		}
		_, err = stdout.Write(append(data, '\n'))
		return err
	}
	return res.Layout.Save(*out)
}

// resolveAll streams every chunk in through a Sim host and counts the door
// actor sets and walls that result. Spawn state is reset before returning.
func resolveAll(l *dungeon.Layout, db *moduledb.Database, b config.Build, logger *slog.Logger) (doors, walls int) {
	sim := world.NewSim(world.ContentFromLayout(l))
	m := streaming.NewModel(sim, l, streaming.Options{
		DoorLevel: b.DoorLevel,
		WallLevel: b.WallLevel,
		Themes:    db,
		Logger:    logger,
	})
	defer m.Release()
	for _, c := range m.Chunks() {
		if err := m.SetStreamingLevelState(c.ID, true, true); err != nil {
			logger.Error("snapgen: stream request failed", "chunk", c.ID, "error", err)
		}
	}
	sim.FlushStreaming()
	m.Tick()
	for _, c := range m.Chunks() {
		walls += len(m.Resolver().Walls(c.ID))
	}
	return m.Resolver().Table().Sets(), walls
}
