package pushchain

import modelpkg "voxelmech.ai/internal/sim/world/kernel/model"

// Traits is the per-block-type capability row the classifier consults.
type Traits struct {
	Reaction    modelpkg.PushReaction
	Unbreakable bool
	HasTile     bool
	// Piston marks piston bases; with PushIgnore they move only while retracted.
	Piston bool
}

// Classifier maps block states to push reactions through a lookup table keyed by block id.
type Classifier struct {
	traits map[string]Traits
}

func NewClassifier(traits map[string]Traits) *Classifier {
	cp := make(map[string]Traits, len(traits))
	for id, t := range traits {
		cp[id] = t
	}
	return &Classifier{traits: cp}
}

func (c *Classifier) Traits(id string) (Traits, bool) {
	t, ok := c.traits[id]
	return t, ok
}

// Classify resolves the push reaction of s. Unknown blocks are immovable.
func (c *Classifier) Classify(s modelpkg.BlockState) modelpkg.PushReaction {
	if s.IsAir() {
		return modelpkg.PushNormal
	}
	t, ok := c.traits[s.ID]
	if !ok || t.Unbreakable || t.HasTile {
		return modelpkg.PushBlock
	}
	if t.Reaction == modelpkg.PushIgnore {
		if t.Piston && !s.Bool(modelpkg.PropExtended) {
			return modelpkg.PushNormal
		}
		return modelpkg.PushBlock
	}
	return t.Reaction
}

// Pullable reports whether a sticky piston may drag s back toward itself.
func (c *Classifier) Pullable(s modelpkg.BlockState) bool {
	return !s.IsAir() && c.Classify(s) == modelpkg.PushNormal
}
