package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/systems"
)

// ArenaInfo is the static description served at /arena. Gate state changes
// at runtime and travels in snapshots instead.
type ArenaInfo struct {
	Seed      int64          `json:"seed"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	CellSize  float64        `json:"cell_size"`
	Entrance  [2]int         `json:"entrance"`
	GateSide  string         `json:"gate_side"`
	Exit      [3]float64     `json:"exit"`
	SpawnPads [][3]float64   `json:"spawn_pads"`
	Colliders []ColliderInfo `json:"colliders"`
	Stats     maze.Stats     `json:"stats"`
	Map       string         `json:"map"`
}

type ColliderInfo struct {
	ID       int        `json:"id"`
	Kind     string     `json:"kind"`
	Min      [3]float64 `json:"min"`
	Max      [3]float64 `json:"max"`
	Walkable bool       `json:"walkable"`
}

func describeArena(a *arena.Arena) ArenaInfo {
	l := a.Layout()
	exit := a.ExitPosition()
	info := ArenaInfo{
		Seed:     a.Seed(),
		Width:    l.Config.Width,
		Height:   l.Config.Height,
		CellSize: l.Config.CellSize,
		Entrance: [2]int{l.Entrance.X, l.Entrance.Z},
		GateSide: l.GateDir.String(),
		Exit:     [3]float64{exit.X(), exit.Y(), exit.Z()},
		Stats:    l.Stats,
		Map:      l.Render(),
	}
	for _, p := range a.SpawnPads() {
		info.SpawnPads = append(info.SpawnPads, [3]float64{p.X(), p.Y(), p.Z()})
	}
	for _, c := range a.Colliders() {
		info.Colliders = append(info.Colliders, ColliderInfo{
			ID:       int(c.ID),
			Kind:     c.Kind.String(),
			Min:      [3]float64{c.Box.Min.X(), c.Box.Min.Y(), c.Box.Min.Z()},
			Max:      [3]float64{c.Box.Max.X(), c.Box.Max.Y(), c.Box.Max.Z()},
			Walkable: c.Walkable,
		})
	}
	return info
}

// Handler returns the HTTP routes: /ws streams snapshots, /arena describes
// the layout and /healthz reports liveness.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.feed.serveWS(ctx))
	mux.HandleFunc("GET /arena", s.handleArena)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// FailedSystems lists pipeline stages taken out after repeated errors.
func (s *Server) FailedSystems() []string {
	var failed []string
	for _, name := range s.pipeline.Names() {
		if st, ok := s.pipeline.State(name); ok && st == systems.StateFailed {
			failed = append(failed, name)
		}
	}
	return failed
}

// handleHealth answers 503 with the failed stage names once any stage of the
// tick pipeline has been disabled.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	failed := s.FailedSystems()
	if len(failed) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := json.NewEncoder(w).Encode(map[string][]string{"failed": failed}); err != nil {
		s.logger.Warn("Failed to write health report", log.Error(err))
	}
}

func (s *Server) handleArena(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.info); err != nil {
		s.logger.Warn("Failed to write arena info", log.Error(err))
	}
}
