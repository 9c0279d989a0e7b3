package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/projectile"
	"github.com/zeusync/mazearena/internal/core/systems"
)

// Server runs an arena simulation at a fixed tick rate and streams
// snapshots to websocket spectators. Only the tick loop touches simulation
// state; HTTP handlers see the immutable ArenaInfo and encoded frames.
type Server struct {
	cfg      Config
	arena    *arena.Arena
	pipeline *systems.Pipeline
	shots    *projectile.Manager
	demo     *population
	feed     *Feed
	info     ArenaInfo
	subs     []bus.Subscription

	// Simulation state, owned by the tick loop
	tick  uint64
	clock float64
	tally Tally

	// Server state
	running  atomic.Bool
	closed   atomic.Bool
	listener net.Listener
	http     *http.Server
	cancel   context.CancelFunc
	workers  sync.WaitGroup

	logger log.Log
}

// New wires the arena systems, the projectile manager and the demo walkers
// into one pipeline.
func New(cfg Config, a *arena.Arena, logger log.Log) (*Server, error) {
	if a == nil {
		return nil, ErrNoArena
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.With(log.String("component", "server"))

	s := &Server{
		cfg:      cfg,
		arena:    a,
		pipeline: systems.NewPipeline(logger),
		feed:     newFeed(cfg, logger),
		info:     describeArena(a),
		logger:   logger,
	}

	world := a.World()
	s.shots = projectile.NewManager(world, a.Field(),
		projectile.WithEventBus(a.Events()),
		projectile.WithLogger(logger),
		projectile.WithTargets(world.Entities),
	)
	s.demo = newPopulation(a, s.shots, cfg.Demo, cfg.Walkers, logger)

	for _, sys := range append(a.Systems(), s.shots, s.demo) {
		if err := s.pipeline.Add(sys); err != nil {
			return nil, err
		}
	}
	if err := s.subscribe(a.Events()); err != nil {
		return nil, err
	}

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Int("tick_rate", cfg.TickRate),
		log.Int("walkers", cfg.Walkers),
		log.Int64("seed", a.Seed()))

	return s, nil
}

func (s *Server) subscribe(b bus.EventBus) error {
	counters := map[string]*uint64{
		bus.TypeFallDamage:       &s.tally.FallDamage,
		bus.TypeHazardDamage:     &s.tally.HazardDamage,
		bus.TypeProjectileHit:    &s.tally.Hits,
		bus.TypeProjectileImpact: &s.tally.Impacts,
		bus.TypeGateChanged:      &s.tally.GateChanges,
	}
	for typ, n := range counters {
		sub, err := b.Subscribe(typ, func(bus.Event) error {
			*n++
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", typ, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Server) Arena() *arena.Arena              { return s.arena }
func (s *Server) Pipeline() *systems.Pipeline      { return s.pipeline }
func (s *Server) Projectiles() *projectile.Manager { return s.shots }
func (s *Server) Feed() *Feed                      { return s.feed }
func (s *Server) Info() ArenaInfo                  { return s.info }

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.ListenAddr
}

// Step advances the simulation by dt, clamped to MaxTickDelta, and publishes
// a snapshot every snapshotEvery ticks. It must not be called concurrently
// with a running tick loop.
func (s *Server) Step(dt float64) error {
	if dt <= 0 {
		return nil
	}
	dt = min(dt, s.cfg.MaxTickDelta)

	err := s.pipeline.Update(dt)
	s.tick++
	s.clock += dt

	if s.tick%s.cfg.snapshotEvery() == 0 {
		s.publish()
	}
	return err
}

// Snapshot captures the current simulation state.
func (s *Server) Snapshot() *Snapshot {
	return &Snapshot{
		Tick:          s.tick,
		Time:          s.clock,
		GateOpen:      s.arena.GateOpen(),
		GateRemaining: s.arena.GateTimer().Remaining(),
		Walkers:       walkerStates(s.demo.walkers),
		Projectiles:   projectileStates(s.shots.Live()),
		Tally:         s.tally,
	}
}

func (s *Server) publish() {
	frame, err := encodeSnapshot(s.Snapshot())
	if err != nil {
		s.logger.Error("Failed to encode snapshot", log.Uint64("tick", s.tick), log.Error(err))
		return
	}
	s.feed.Publish(frame)
}

// Start binds the listener and launches the tick loop, the feed and the HTTP
// server.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = ln

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.http = &http.Server{
		Handler:           s.Handler(runCtx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.workers.Add(3)
	go func() {
		defer s.workers.Done()
		s.feed.run(runCtx)
	}()
	go func() {
		defer s.workers.Done()
		s.loop(runCtx)
	}()
	go func() {
		defer s.workers.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

func (s *Server) loop(ctx context.Context) {
	s.logger.Debug("Tick loop started")
	defer s.logger.Debug("Tick loop stopped")

	ticker := time.NewTicker(s.cfg.tickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := s.Step(dt); err != nil {
				s.logger.Warn("Tick failed", log.Uint64("tick", s.tick), log.Error(err))
			}
		}
	}
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	s.cancel()
	err := s.http.Shutdown(ctx)
	s.workers.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and drops its bus subscriptions.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if s.running.Load() {
		errs = append(errs, s.Stop(context.Background()))
	}
	for _, sub := range s.subs {
		errs = append(errs, sub.Cancel())
	}
	s.subs = nil

	s.logger.Info("Server closed")
	return errors.Join(errs...)
}
