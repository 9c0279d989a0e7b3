package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/server"
)

func TestInitializeServer(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.LogLevel = log.LevelError
	cfg.Walkers = 1

	s, cleanup, err := InitializeServer(cfg, arena.DefaultConfig())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, int64(1), s.Arena().Seed())
	assert.Contains(t, s.Pipeline().Names(), "projectile")
}

func TestInitializeServerPropagatesArenaErrors(t *testing.T) {
	acfg := arena.DefaultConfig()
	acfg.Maze.Width = 0

	_, _, err := InitializeServer(server.DefaultConfig(), acfg)
	assert.ErrorIs(t, err, maze.ErrInvalidConfig)
}
