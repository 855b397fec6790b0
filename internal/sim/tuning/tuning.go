package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz     int   `yaml:"tick_rate_hz"`
	Height         int   `yaml:"height"`
	WorldBoundaryR int   `yaml:"world_boundary_r"`
	Seed           int64 `yaml:"seed"`

	Pistons PistonTuning `yaml:"pistons"`

	ButtonPressTicks   int `yaml:"button_press_ticks"`
	DropTTLTicks       int `yaml:"drop_ttl_ticks"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

type PistonTuning struct {
	PushLimit             int     `yaml:"push_limit"`
	PlaceholderStep       float64 `yaml:"placeholder_step"`
	MaxBlockEventsPerTick int     `yaml:"max_block_events_per_tick"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Height:          64,
		WorldBoundaryR:  1024,
		Seed:            1337,
		Pistons: PistonTuning{
			PushLimit:             12,
			PlaceholderStep:       0.5,
			MaxBlockEventsPerTick: 1024,
		},
		ButtonPressTicks:   10,
		DropTTLTicks:       6000,
		SnapshotEveryTicks: 6000,
	}
}

// Load reads a tuning file. Fields left out of the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Height < 2 {
		return fmt.Errorf("height must be >= 2")
	}
	if t.Pistons.PushLimit <= 0 {
		return fmt.Errorf("pistons.push_limit must be > 0")
	}
	if t.Pistons.PlaceholderStep <= 0 || t.Pistons.PlaceholderStep > 1 {
		return fmt.Errorf("pistons.placeholder_step must be in (0,1]")
	}
	return nil
}
