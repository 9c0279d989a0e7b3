package arena

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
	"github.com/zeusync/mazearena/internal/core/terrain"
)

var ErrInvalidConfig = errors.New("arena: invalid config")

// Config describes a whole arena. Maze.Seed is ignored; the maze and the
// terrain draw from streams derived from Seed or SeedPhrase.
type Config struct {
	Seed int64 `yaml:"seed"`
	// SeedPhrase, when set, replaces Seed with its hash.
	SeedPhrase string `yaml:"seed_phrase"`

	Maze    maze.Config      `yaml:"maze"`
	Terrain terrain.Config   `yaml:"terrain"`
	Physics physics.Settings `yaml:"physics"`
	Gate    GateConfig       `yaml:"gate"`

	// LavaDepth is how far above a lava floor the hazard reaches.
	LavaDepth float64 `yaml:"lava_depth"`
}

// GateConfig drives the GateTimer. A zero duration disables the cycle.
type GateConfig struct {
	StartOpen     bool    `yaml:"start_open"`
	OpenSeconds   float64 `yaml:"open_seconds"`
	ClosedSeconds float64 `yaml:"closed_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Seed:      1,
		Maze:      maze.DefaultConfig(),
		Terrain:   terrain.DefaultConfig(),
		Physics:   physics.DefaultSettings(),
		Gate:      GateConfig{OpenSeconds: 10, ClosedSeconds: 20},
		LavaDepth: 0.25,
	}
}

// ResolveSeed returns the root seed, preferring the phrase.
func (c Config) ResolveSeed() int64 {
	if c.SeedPhrase != "" {
		return SeedFromPhrase(c.SeedPhrase)
	}
	return c.Seed
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Maze.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Terrain.ResolveMode(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	p := c.Physics
	if p.Gravity >= 0 {
		errs = append(errs, fmt.Errorf("%w: gravity must be negative", ErrInvalidConfig))
	}
	if p.Friction < 0 || p.Friction > 1 {
		errs = append(errs, fmt.Errorf("%w: friction must be in [0, 1]", ErrInvalidConfig))
	}
	if p.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: physics cell_size must be positive", ErrInvalidConfig))
	}
	if c.Gate.OpenSeconds < 0 || c.Gate.ClosedSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: gate durations must not be negative", ErrInvalidConfig))
	}
	if c.LavaDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: lava_depth must not be negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// LoadYAML decodes r over DefaultConfig and validates the result. Keys that
// match no field are rejected.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("arena: decode config: %w", err)
	}
	if err := cfg.Terrain.ResolveMode(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("arena: open config: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}
