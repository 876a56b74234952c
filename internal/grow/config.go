package grow

import (
	"errors"
	"fmt"
	"snapmap/internal/geom"
	"time"
)

// ErrInvalidConfig is wrapped by Config.Validate failures.
var ErrInvalidConfig = errors.New("grow: invalid config")

// NegationVolume is an authored region that forbids placement, or, when
// Inverse is set, is the only region placement is allowed in.
type NegationVolume struct {
	Bounds  geom.AABB `json:"bounds"`
	Inverse bool      `json:"inverse"`
}

// Config drives one build.
type Config struct {
	Seed int64
	// MaxBuildRetries is how many fresh seeds are tried after the first
	// attempt fails. Total attempts are MaxBuildRetries+1.
	MaxBuildRetries int
	// MaxResolveFrames caps placement attempts within one seed attempt.
	MaxResolveFrames int
	// AttemptTimeout is the wall-clock budget of one seed attempt; zero
	// disables it.
	AttemptTimeout time.Duration
	// BoundsContraction shrinks every module box on each side before overlap
	// tests so that touching modules are not rejected.
	BoundsContraction float64
	// PreferMinimumDoors blends candidate choice between uniform (0) and
	// always taking the module with the fewest doors (1).
	PreferMinimumDoors float64
	// NonRepeatDepth forbids placing a module equal to any of its last N
	// ancestors. Zero disables the check.
	NonRepeatDepth  int
	NegationVolumes []NegationVolume
}

// DefaultConfig returns the settings used by the CLIs.
func DefaultConfig() Config {
	return Config{
		Seed:               1,
		MaxBuildRetries:    20,
		MaxResolveFrames:   10000,
		AttemptTimeout:     2 * time.Second,
		BoundsContraction:  0.1,
		PreferMinimumDoors: 0.5,
		NonRepeatDepth:     1,
	}
}

// Validate rejects settings the grower cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MaxBuildRetries < 0:
		return fmt.Errorf("%w: MaxBuildRetries %d < 0", ErrInvalidConfig, c.MaxBuildRetries)
	case c.MaxResolveFrames <= 0:
		return fmt.Errorf("%w: MaxResolveFrames %d <= 0", ErrInvalidConfig, c.MaxResolveFrames)
	case c.AttemptTimeout < 0:
		return fmt.Errorf("%w: AttemptTimeout %v < 0", ErrInvalidConfig, c.AttemptTimeout)
	case c.BoundsContraction < 0:
		return fmt.Errorf("%w: BoundsContraction %v < 0", ErrInvalidConfig, c.BoundsContraction)
	case c.PreferMinimumDoors < 0 || c.PreferMinimumDoors > 1:
		return fmt.Errorf("%w: PreferMinimumDoors %v outside [0,1]", ErrInvalidConfig, c.PreferMinimumDoors)
	case c.NonRepeatDepth < 0:
		return fmt.Errorf("%w: NonRepeatDepth %d < 0", ErrInvalidConfig, c.NonRepeatDepth)
	}
	return nil
}
