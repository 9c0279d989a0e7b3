//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/server"
)

func InitializeServer(cfg server.Config, arenaCfg arena.Config) (*server.Server, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
