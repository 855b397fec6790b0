package world

import (
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	storepkg "voxelmech.ai/internal/sim/world/terrain/store"
)

type Vec3i = modelpkg.Vec3i
type Facing = modelpkg.Facing
type BlockState = modelpkg.BlockState
type Cell = modelpkg.Cell
type MovingPlaceholder = modelpkg.MovingPlaceholder
type ItemDrop = modelpkg.ItemDrop
type ChunkKey = storepkg.ChunkKey

// Set-block flags.
const (
	FlagNotify     = 1 // run neighbor updates
	FlagSync       = 2 // publish the change to observers
	FlagNoRerender = 4 // suppress observer publication even with FlagSync
)
