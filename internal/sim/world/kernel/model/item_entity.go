package model

// ItemDrop is an item stack spawned into the world (e.g. a block destroyed by a piston).
// It is part of the authoritative sim state and must be snapshot/digest'd.
type ItemDrop struct {
	DropID      string
	Pos         Vec3i
	Item        string
	Count       int
	CreatedTick uint64
	ExpiresTick uint64
}

func (e *ItemDrop) ID() string { return e.DropID }
