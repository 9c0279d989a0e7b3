package server

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/mazearena/internal/core/projectile"
	"github.com/zeusync/mazearena/pkg/generic"
)

// Snapshot is one frame of the spectator feed. Frames are msgpack encoded
// and sent as binary websocket messages.
type Snapshot struct {
	Tick          uint64            `msgpack:"tick"`
	Time          float64           `msgpack:"time"`
	GateOpen      bool              `msgpack:"gate_open"`
	GateRemaining float64           `msgpack:"gate_remaining"`
	Walkers       []WalkerState     `msgpack:"walkers"`
	Projectiles   []ProjectileState `msgpack:"projectiles"`
	Tally         Tally             `msgpack:"tally"`
}

type WalkerState struct {
	ID       string  `msgpack:"id"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	Z        float64 `msgpack:"z"`
	Health   float64 `msgpack:"hp"`
	OnGround bool    `msgpack:"grounded"`
	Deaths   int     `msgpack:"deaths"`
}

type ProjectileState struct {
	ID    string  `msgpack:"id"`
	Owner string  `msgpack:"owner"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	Z     float64 `msgpack:"z"`
}

// Tally counts bus events seen since the server was created.
type Tally struct {
	FallDamage   uint64 `msgpack:"falls"`
	HazardDamage uint64 `msgpack:"burns"`
	Hits         uint64 `msgpack:"hits"`
	Impacts      uint64 `msgpack:"impacts"`
	GateChanges  uint64 `msgpack:"gate_changes"`
}

var frameBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// encodeSnapshot returns a frame that owns its bytes; the scratch buffer goes
// back to the pool.
func encodeSnapshot(s *Snapshot) ([]byte, error) {
	buf := frameBuffers.Get()
	defer frameBuffers.Put(buf)

	if err := msgpack.NewEncoder(buf).Encode(s); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// DecodeSnapshot parses a feed frame.
func DecodeSnapshot(frame []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(frame, &s)
	return s, err
}

func walkerStates(ws []*walker) []WalkerState {
	out := make([]WalkerState, 0, len(ws))
	for _, w := range ws {
		p := w.body.Position
		out = append(out, WalkerState{
			ID:       w.body.ID,
			X:        p.X(),
			Y:        p.Y(),
			Z:        p.Z(),
			Health:   w.health,
			OnGround: w.body.OnGround,
			Deaths:   w.deaths,
		})
	}
	return out
}

func projectileStates(ps []*projectile.Projectile) []ProjectileState {
	out := make([]ProjectileState, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProjectileState{
			ID:    p.ID,
			Owner: p.OwnerID,
			X:     p.Position.X(),
			Y:     p.Position.Y(),
			Z:     p.Position.Z(),
		})
	}
	return out
}
