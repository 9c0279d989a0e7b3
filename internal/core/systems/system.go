package systems

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/mazearena/internal/core/observability/log"
)

// System is one stage of the simulation tick. The physics world, the
// projectile manager and the gate timer all satisfy it.
type System interface {
	Name() string
	Update(deltaTime float64) error
}

// Prioritized systems run before lower priorities. Systems without it run at
// PriorityNormal.
type Prioritized interface {
	Priority() Priority
}

// Priority defines execution order priority
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// StateIdentity represents the current state of a system
type StateIdentity uint8

const (
	StateRunning StateIdentity = iota
	StateDisabled
	StateFailed
)

func (s StateIdentity) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDisabled:
		return "disabled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(start time.Time, took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.MinExecutionTime == 0 || took < m.MinExecutionTime {
		m.MinExecutionTime = took
	}
	m.LastExecutionTime = start
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

type entry struct {
	system   System
	priority Priority
	state    StateIdentity
	metrics  Metrics
}

// Pipeline runs registered systems in priority order, then registration
// order, once per tick. It is driven by a single goroutine.
type Pipeline struct {
	entries []*entry
	logger  log.Log
	// MaxErrors disables a system after this many consecutive failures.
	// Zero never disables.
	MaxErrors int
	failures  map[string]int
}

func NewPipeline(logger log.Log) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		logger:   logger.With(log.String("component", "pipeline")),
		failures: make(map[string]int),
	}
}

var ErrDuplicateSystem = errors.New("systems: duplicate system name")

// Add registers s. Names must be unique.
func (p *Pipeline) Add(s System) error {
	for _, e := range p.entries {
		if e.system.Name() == s.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
		}
	}
	prio := PriorityNormal
	if ps, ok := s.(Prioritized); ok {
		prio = ps.Priority()
	}
	p.entries = append(p.entries, &entry{system: s, priority: prio})
	slices.SortStableFunc(p.entries, func(a, b *entry) int {
		return int(b.priority) - int(a.priority)
	})
	return nil
}

// SetEnabled toggles a system by name and reports whether it exists.
func (p *Pipeline) SetEnabled(name string, enabled bool) bool {
	for _, e := range p.entries {
		if e.system.Name() != name {
			continue
		}
		if enabled {
			e.state = StateRunning
			p.failures[name] = 0
		} else {
			e.state = StateDisabled
		}
		return true
	}
	return false
}

// Update ticks every running system. Errors are collected, not fatal to the
// remaining systems.
func (p *Pipeline) Update(dt float64) error {
	var errs []error
	for _, e := range p.entries {
		if e.state != StateRunning {
			continue
		}
		name := e.system.Name()
		start := time.Now()
		err := e.system.Update(dt)
		e.metrics.record(start, time.Since(start), err)

		if err == nil {
			p.failures[name] = 0
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		p.failures[name]++
		if p.MaxErrors > 0 && p.failures[name] >= p.MaxErrors {
			e.state = StateFailed
			p.logger.Error("System disabled after repeated failures",
				log.String("system", name),
				log.Int("failures", p.failures[name]),
				log.String("state", e.state.String()),
				log.Error(err),
			)
		}
	}
	return errors.Join(errs...)
}

// Names returns systems in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.system.Name()
	}
	return names
}

// State reports the state of the named system.
func (p *Pipeline) State(name string) (StateIdentity, bool) {
	for _, e := range p.entries {
		if e.system.Name() == name {
			return e.state, true
		}
	}
	return 0, false
}

// Metrics returns a copy of the metrics of every system keyed by name.
func (p *Pipeline) Metrics() map[string]Metrics {
	out := make(map[string]Metrics, len(p.entries))
	for _, e := range p.entries {
		out[e.system.Name()] = e.metrics
	}
	return out
}
