package terrain

import (
	"fmt"
	"math"
)

// Config describes how to build a HeightField from noise.
type Config struct {
	Mode Mode `yaml:"-"`
	// ModeName is the YAML form of Mode: "block" or "bilinear".
	ModeName   string  `yaml:"mode"`
	BaseHeight float64 `yaml:"base_height"`
	// Amplitude of the noise in world units. Zero gives a flat floor.
	Amplitude float64 `yaml:"amplitude"`
	// Frequency in noise cycles per grid cell.
	Frequency float64 `yaml:"frequency"`
	Octaves   int     `yaml:"octaves"`
	// Terrace quantises heights to multiples of this step. Zero disables it.
	Terrace float64 `yaml:"terrace"`
}

// DefaultConfig returns flat block terrain.
func DefaultConfig() Config {
	return Config{
		Mode:      Block,
		ModeName:  "block",
		Frequency: 0.08,
		Octaves:   3,
		Terrace:   0.5,
	}
}

// ResolveMode fills Mode from ModeName.
func (c *Config) ResolveMode() error {
	switch c.ModeName {
	case "", "block":
		c.Mode = Block
	case "bilinear":
		c.Mode = Bilinear
	default:
		return fmt.Errorf("terrain: unknown mode %q", c.ModeName)
	}
	return nil
}

// Generate builds an n-sample field covering size world units. In Block mode
// n is the cell count; in Bilinear mode n+1 vertices are produced so that the
// vertex lattice lines up with the same cells.
func Generate(cfg Config, size float64, n int, seed int64) (*HeightField, error) {
	return GenerateRect(cfg, size, size, n, n, seed)
}

// GenerateRect is Generate with nx cells across sizeX and nz cells across
// sizeZ, so each axis keeps its own cell width.
func GenerateRect(cfg Config, sizeX, sizeZ float64, nx, nz int, seed int64) (*HeightField, error) {
	if nx <= 0 || nz <= 0 {
		return nil, ErrInvalidSize
	}
	ng := NewNoiseGenerator(seed)

	cx, cz := nx, nz
	if cfg.Mode == Bilinear {
		cx, cz = nx+1, nz+1
	}

	samples := make([]float64, cx*cz)
	for j := 0; j < cz; j++ {
		for i := 0; i < cx; i++ {
			h := cfg.BaseHeight
			if cfg.Amplitude != 0 {
				h += ng.Fractal(float64(i)*cfg.Frequency, float64(j)*cfg.Frequency, cfg.Octaves) * cfg.Amplitude
			}
			if cfg.Terrace > 0 {
				h = math.Round(h/cfg.Terrace) * cfg.Terrace
			}
			samples[j*cx+i] = h
		}
	}
	return NewRect(sizeX, sizeZ, cx, cz, samples, cfg.Mode)
}
