package world

import (
	"voxelmech.ai/internal/persistence/snapshot"
	"voxelmech.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Height     int
	Seed       int64
	BoundaryR  int

	PushLimit             int
	PlaceholderStep       float64
	MaxBlockEventsPerTick int

	ButtonPressTicks int
	DropTTLTicks     int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.BoundaryR < 0 {
		c.BoundaryR = 0
	}
	if c.PushLimit <= 0 {
		c.PushLimit = 12
	}
	if c.PlaceholderStep <= 0 || c.PlaceholderStep > 1 {
		c.PlaceholderStep = 0.5
	}
	if c.MaxBlockEventsPerTick <= 0 {
		c.MaxBlockEventsPerTick = 1024
	}
	if c.ButtonPressTicks <= 0 {
		c.ButtonPressTicks = 10
	}
	if c.DropTTLTicks <= 0 {
		c.DropTTLTicks = 6000
	}
	if c.SnapshotEveryTicks < 0 {
		c.SnapshotEveryTicks = 0
	}
}

// ConfigFromTuning maps tuning.yaml onto a world config.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                    id,
		TickRateHz:            t.TickRateHz,
		Height:                t.Height,
		Seed:                  t.Seed,
		BoundaryR:             t.WorldBoundaryR,
		PushLimit:             t.Pistons.PushLimit,
		PlaceholderStep:       t.Pistons.PlaceholderStep,
		MaxBlockEventsPerTick: t.Pistons.MaxBlockEventsPerTick,
		ButtonPressTicks:      t.ButtonPressTicks,
		DropTTLTicks:          t.DropTTLTicks,
		SnapshotEveryTicks:    t.SnapshotEveryTicks,
	}
}

// ConfigFromSnapshot rebuilds the config a snapshot was taken with. Parameters the
// snapshot does not carry come from t.
func ConfigFromSnapshot(id string, snap snapshot.SnapshotV1, t tuning.Tuning) WorldConfig {
	cfg := ConfigFromTuning(id, t)
	cfg.TickRateHz = snap.TickRate
	cfg.Height = snap.Height
	cfg.Seed = snap.Seed
	cfg.BoundaryR = snap.BoundaryR
	cfg.PushLimit = snap.PushLimit
	cfg.PlaceholderStep = snap.PlaceholderStep
	cfg.MaxBlockEventsPerTick = snap.MaxBlockEventsPerTick
	cfg.ButtonPressTicks = snap.ButtonPressTicks
	cfg.SnapshotEveryTicks = snap.SnapshotEveryTicks
	return cfg
}
