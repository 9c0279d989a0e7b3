package arena

import "github.com/zeusync/mazearena/internal/core/systems"

// GateTimer opens and closes the arena gate on a fixed cycle.
type GateTimer struct {
	arena        *Arena
	open, closed float64
	elapsed      float64
}

func NewGateTimer(a *Arena, cfg GateConfig) *GateTimer {
	return &GateTimer{arena: a, open: cfg.OpenSeconds, closed: cfg.ClosedSeconds}
}

func (t *GateTimer) Name() string               { return "gate_timer" }
func (t *GateTimer) Priority() systems.Priority { return systems.PriorityHigh }

// Enabled reports whether both phases have a duration.
func (t *GateTimer) Enabled() bool { return t.open > 0 && t.closed > 0 }

// Remaining is the time until the next toggle.
func (t *GateTimer) Remaining() float64 {
	return t.phase() - t.elapsed
}

func (t *GateTimer) phase() float64 {
	if t.arena.GateOpen() {
		return t.open
	}
	return t.closed
}

// Update advances the cycle, toggling the gate as many times as dt covers.
func (t *GateTimer) Update(dt float64) error {
	if !t.Enabled() || dt <= 0 {
		return nil
	}
	t.elapsed += dt
	for t.elapsed >= t.phase() {
		t.elapsed -= t.phase()
		if err := t.arena.SetGateOpen(!t.arena.GateOpen()); err != nil {
			return err
		}
	}
	return nil
}
