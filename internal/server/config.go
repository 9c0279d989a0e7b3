package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/mazearena/internal/core/observability/log"
)

// Config holds server configuration
type Config struct {
	// Network settings
	ListenAddr string `yaml:"listen_addr"`

	// Simulation cadence
	TickRate     int     `yaml:"tick_rate"`
	SnapshotRate int     `yaml:"snapshot_rate"`
	MaxTickDelta float64 `yaml:"max_tick_delta"`

	// Demo population
	Walkers int        `yaml:"walkers"`
	Demo    DemoConfig `yaml:"demo"`

	// Spectator feed
	SendBuffer int           `yaml:"send_buffer"`
	WriteWait  time.Duration `yaml:"write_wait"`
	PongWait   time.Duration `yaml:"pong_wait"`

	// Logging
	LogLevel  log.Level `yaml:"-"`
	LogFormat string    `yaml:"log_format"`
}

// DemoConfig tunes the walkers that roam the arena when no players are
// connected.
type DemoConfig struct {
	Speed           float64 `yaml:"speed"`
	Radius          float64 `yaml:"radius"`
	Height          float64 `yaml:"height"`
	Health          float64 `yaml:"health"`
	FireInterval    float64 `yaml:"fire_interval"`
	FireRange       float64 `yaml:"fire_range"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	Lookahead       float64 `yaml:"lookahead"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		TickRate:     60,
		SnapshotRate: 10,
		MaxTickDelta: 0.1,
		Walkers:      6,
		Demo: DemoConfig{
			Speed:           4,
			Radius:          0.4,
			Height:          1.8,
			Health:          100,
			FireInterval:    1.5,
			FireRange:       24,
			ProjectileSpeed: 30,
			Lookahead:       0.6,
		},
		SendBuffer: 256,
		WriteWait:  10 * time.Second,
		PongWait:   60 * time.Second,
		LogLevel:   log.LevelInfo,
		LogFormat:  "json",
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig))
	}
	if c.SnapshotRate <= 0 || c.SnapshotRate > c.TickRate {
		errs = append(errs, fmt.Errorf("%w: snapshot_rate must be in (0, tick_rate]", ErrInvalidConfig))
	}
	if c.MaxTickDelta <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tick_delta must be positive", ErrInvalidConfig))
	}
	if c.Walkers < 0 {
		errs = append(errs, fmt.Errorf("%w: walkers must not be negative", ErrInvalidConfig))
	}
	if c.Walkers > 0 && (c.Demo.Radius <= 0 || c.Demo.Height <= 0 || c.Demo.Health <= 0) {
		errs = append(errs, fmt.Errorf("%w: demo walkers need radius, height and health", ErrInvalidConfig))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("%w: send_buffer must be positive", ErrInvalidConfig))
	}
	if c.WriteWait <= 0 || c.PongWait <= 0 {
		errs = append(errs, fmt.Errorf("%w: write_wait and pong_wait must be positive", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (c Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// snapshotEvery is the number of ticks between snapshots.
func (c Config) snapshotEvery() uint64 {
	return uint64(max(1, c.TickRate/c.SnapshotRate))
}

func (c Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
