// Package config reads build configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"snapmap/internal/flow"
	"snapmap/internal/geom"
	"snapmap/internal/grow"
	"snapmap/internal/moduledb"
	"snapmap/internal/world"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNoModuleDatabase = errors.New("config: no module database")
	ErrNoFlow           = errors.New("config: no flow graph")
	ErrInvalid          = errors.New("config: invalid value")
)

// Volume is a negation volume as written in a config file.
type Volume struct {
	Min     mgl64.Vec3 `json:"min"`
	Max     mgl64.Vec3 `json:"max"`
	Inverse bool       `json:"inverse,omitempty"`
}

// Duration is a time.Duration that reads and writes as "2s", "500ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: duration must be a string like \"2s\"", ErrInvalid)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	*d = Duration(v)
	return nil
}

// Build describes one dungeon build. Relative paths are resolved against
// the directory of the file the config was loaded from.
type Build struct {
	ModuleDatabase     string   `json:"module_database"`
	Flow               string   `json:"flow"`
	Seed               int64    `json:"seed"`
	MaxBuildRetries    int      `json:"max_build_retries"`
	MaxResolveFrames   int      `json:"max_resolve_frames"`
	AttemptTimeout     Duration `json:"attempt_timeout"`
	BoundsContraction  float64  `json:"bounds_contraction"`
	PreferMinimumDoors float64  `json:"prefer_minimum_doors"`
	NonRepeatDepth     int      `json:"non_repeat_depth"`
	NegationVolumes    []Volume `json:"negation_volumes,omitempty"`

	DoorLevel world.LevelID `json:"door_level,omitempty"`
	WallLevel world.LevelID `json:"wall_level,omitempty"`
}

// Default returns a Build with the grower defaults and no inputs set.
func Default() Build {
	g := grow.DefaultConfig()
	return Build{
		Seed:               g.Seed,
		MaxBuildRetries:    g.MaxBuildRetries,
		MaxResolveFrames:   g.MaxResolveFrames,
		AttemptTimeout:     Duration(g.AttemptTimeout),
		BoundsContraction:  g.BoundsContraction,
		PreferMinimumDoors: g.PreferMinimumDoors,
		NonRepeatDepth:     g.NonRepeatDepth,
		DoorLevel:          world.PersistentLevel,
	}
}

// Load reads path over Default. Missing fields keep their default values.
func Load(path string) (Build, error) {
	b := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	b.ModuleDatabase = resolve(dir, b.ModuleDatabase)
	b.Flow = resolve(dir, b.Flow)
	return b, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate reports the first problem that would stop a build before any
// growth is attempted.
func (b *Build) Validate() error {
	if b.ModuleDatabase == "" {
		return ErrNoModuleDatabase
	}
	if b.Flow == "" {
		return ErrNoFlow
	}
	g := b.Grow()
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Inputs validates b and loads the module database and flow graph it names.
func (b *Build) Inputs() (*moduledb.Database, *flow.Graph, error) {
	if err := b.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := moduledb.Load(b.ModuleDatabase)
	if err != nil {
		return nil, nil, err
	}
	g, err := flow.Load(b.Flow)
	if err != nil {
		return nil, nil, err
	}
	return db, g, nil
}

// Grow converts b into grower settings.
func (b *Build) Grow() grow.Config {
	cfg := grow.Config{
		Seed:               b.Seed,
		MaxBuildRetries:    b.MaxBuildRetries,
		MaxResolveFrames:   b.MaxResolveFrames,
		AttemptTimeout:     time.Duration(b.AttemptTimeout),
		BoundsContraction:  b.BoundsContraction,
		PreferMinimumDoors: b.PreferMinimumDoors,
		NonRepeatDepth:     b.NonRepeatDepth,
	}
	for _, v := range b.NegationVolumes {
		cfg.NegationVolumes = append(cfg.NegationVolumes, grow.NegationVolume{
			Bounds:  geom.Box(v.Min, v.Max),
			Inverse: v.Inverse,
		})
	}
	return cfg
}
