package physics

// Settings are the tunables of the integrator and the contact solver.
type Settings struct {
	// Gravity is the vertical acceleration, negative for down.
	Gravity float64 `yaml:"gravity"`
	// Friction multiplies horizontal velocity of grounded bodies each tick.
	Friction float64 `yaml:"friction"`
	// FallThreshold is the drop height that is absorbed without damage.
	FallThreshold float64 `yaml:"fall_threshold"`
	// FallDamagePerUnit scales the drop beyond FallThreshold into damage.
	FallDamagePerUnit float64 `yaml:"fall_damage_per_unit"`
	// HazardDPS is damage per second inside a hazard volume.
	HazardDPS float64 `yaml:"hazard_dps"`
	// ContactMargin widens the broad-phase radius for horizontal resolution.
	ContactMargin float64 `yaml:"contact_margin"`
	// SeparationEpsilon is added to every push-out so bodies end just clear.
	SeparationEpsilon float64 `yaml:"separation_epsilon"`
	// StepTolerance is how far above the feet a walkable top may be and still
	// count as a surface.
	StepTolerance float64 `yaml:"step_tolerance"`
	// SurfaceProbe inflates collider footprints when looking for a surface.
	SurfaceProbe float64 `yaml:"surface_probe"`
	// CellSize is the spatial hash bucket size.
	CellSize float64 `yaml:"cell_size"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:           -30,
		Friction:          0.8,
		FallThreshold:     6,
		FallDamagePerUnit: 10,
		HazardDPS:         25,
		ContactMargin:     0.05,
		SeparationEpsilon: 1e-3,
		StepTolerance:     0.5,
		SurfaceProbe:      0.2,
		CellSize:          DefaultCellSize,
	}
}
