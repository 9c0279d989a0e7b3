package arena

import (
	"context"

	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/pkg/concurrent"
)

// Survey is the outcome of generating one seed.
type Survey struct {
	Seed      int64
	Stats     maze.Stats
	SpawnPads int
	Colliders int
	Err       error
}

// Sweep generates an arena for every seed on up to limit goroutines. A seed
// that fails to generate is reported in its Survey; only cancellation of ctx
// fails the sweep. Arenas share no state.
func Sweep(ctx context.Context, base Config, seeds []int64, limit int) ([]Survey, error) {
	return concurrent.Map(ctx, seeds, limit, func(_ context.Context, seed int64) (Survey, error) {
		cfg := base
		cfg.Seed, cfg.SeedPhrase = seed, ""
		a, err := New(cfg)
		if err != nil {
			return Survey{Seed: seed, Err: err}, nil
		}
		return Survey{
			Seed:      seed,
			Stats:     a.layout.Stats,
			SpawnPads: len(a.layout.SpawnPads),
			Colliders: a.registry.Len(),
		}, nil
	})
}
