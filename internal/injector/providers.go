package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideArena,
	ProvideServer,
)

// ProvideLogger builds the process logger at the server's level and flushes
// it on cleanup.
func ProvideLogger(cfg server.Config) (log.Log, func()) {
	l := log.NewWithOptions(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return l.Named("mazearena"), func() { _ = l.Sync() }
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideArena(cfg arena.Config, logger log.Log, events bus.EventBus) (*arena.Arena, error) {
	return arena.New(cfg, arena.WithLogger(logger), arena.WithEventBus(events))
}

func ProvideServer(cfg server.Config, a *arena.Arena, logger log.Log) (*server.Server, func(), error) {
	s, err := server.New(cfg, a, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
