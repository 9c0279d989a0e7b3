package maze

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("maze: invalid config")
	ErrNoInteriorCells  = errors.New("maze: no cells inside bounds")
	ErrEntranceNotFound = errors.New("maze: no interior cell on the gate axis")
)

// Shape selects which cells take part in carving.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeAnnulus Shape = "annulus"
)

// Config controls maze generation. Radii are measured in cells from the
// grid centre; world distances are in world units.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	CellSize      float64 `yaml:"cell_size"`
	WallThickness float64 `yaml:"wall_thickness"`
	WallHeight    float64 `yaml:"wall_height"`

	Shape Shape `yaml:"shape"`
	// InnerRadius carves a clear zone out of the centre. Cells closer than
	// this never take part in the maze.
	InnerRadius float64 `yaml:"inner_radius"`
	// OuterRadius bounds ShapeAnnulus.
	OuterRadius float64 `yaml:"outer_radius"`

	// GateX and GateZ place the gate in world space. The origin means the
	// middle of the south edge.
	GateX float64 `yaml:"gate_x"`
	GateZ float64 `yaml:"gate_z"`

	Seed int64 `yaml:"seed"`

	StraightBias float64 `yaml:"straight_bias"`
	// MaxCarveOpenings stops the carve from opening more passages out of a
	// cell once it has this many. Zero disables the cap.
	MaxCarveOpenings int `yaml:"max_carve_openings"`

	// SpineLength limits the straight corridor from the entrance. Zero runs
	// it until it meets the clear zone or the bounds.
	SpineLength      int     `yaml:"spine_length"`
	SideBranches     int     `yaml:"side_branches"`
	BranchLength     int     `yaml:"branch_length"`
	BraidProbability float64 `yaml:"braid_probability"`
	ExtraCuts        int     `yaml:"extra_cuts"`
	WidenCount       int     `yaml:"widen_count"`

	LavaCells int `yaml:"lava_cells"`
	SpawnPads int `yaml:"spawn_pads"`
}

// DefaultConfig is a 41×41 annulus around a clear centre.
func DefaultConfig() Config {
	return Config{
		Width:            41,
		Height:           41,
		CellSize:         4,
		WallThickness:    0.5,
		WallHeight:       3,
		Shape:            ShapeAnnulus,
		InnerRadius:      4,
		OuterRadius:      20,
		Seed:             1,
		StraightBias:     0.85,
		MaxCarveOpenings: 3,
		SideBranches:     4,
		BranchLength:     4,
		BraidProbability: 0.3,
		ExtraCuts:        10,
		WidenCount:       3,
		LavaCells:        4,
		SpawnPads:        8,
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Width < 2 || c.Height < 2 {
		bad("grid must be at least 2x2, got %dx%d", c.Width, c.Height)
	}
	if c.CellSize <= 0 {
		bad("cell_size must be positive")
	}
	if c.WallThickness <= 0 || c.WallThickness >= c.CellSize {
		bad("wall_thickness must be in (0, cell_size)")
	}
	if c.WallHeight <= 0 {
		bad("wall_height must be positive")
	}
	switch c.Shape {
	case ShapeRect:
	case ShapeAnnulus:
		if c.OuterRadius <= 0 {
			bad("outer_radius must be positive for an annulus")
		}
	default:
		bad("unknown shape %q", c.Shape)
	}
	if c.InnerRadius < 0 {
		bad("inner_radius must not be negative")
	}
	if c.StraightBias < 0 || c.StraightBias > 1 {
		bad("straight_bias must be in [0, 1]")
	}
	if c.BraidProbability < 0 || c.BraidProbability > 1 {
		bad("braid_probability must be in [0, 1]")
	}
	if c.MaxCarveOpenings == 1 || c.MaxCarveOpenings < 0 {
		bad("max_carve_openings must be 0 or at least 2")
	}
	if c.SpineLength < 0 || c.SideBranches < 0 || c.BranchLength < 0 ||
		c.ExtraCuts < 0 || c.WidenCount < 0 || c.LavaCells < 0 || c.SpawnPads < 0 {
		bad("counts must not be negative")
	}
	return errors.Join(errs...)
}

func (c Config) extentX() float64 { return float64(c.Width) * c.CellSize }
func (c Config) extentZ() float64 { return float64(c.Height) * c.CellSize }

func (c Config) gate() (x, z float64) {
	if c.GateX == 0 && c.GateZ == 0 {
		return 0, c.extentZ() / 2
	}
	return c.GateX, c.GateZ
}
