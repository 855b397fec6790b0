package model

// Piston head variants stored in the head's "type" property.
const (
	HeadTypeDefault = "default"
	HeadTypeSticky  = "sticky"
)

// PistonRecord is a derived view over a piston base state.
type PistonRecord struct {
	Facing   Facing
	Extended bool
	Sticky   bool
}

// ReadPiston reads facing and extended from s. Stickiness is a property of the block
// type, so the caller supplies it from the catalog.
func ReadPiston(s BlockState, sticky bool) (PistonRecord, bool) {
	f, ok := s.Facing(PropFacing)
	if !ok {
		return PistonRecord{}, false
	}
	return PistonRecord{Facing: f, Extended: s.Bool(PropExtended), Sticky: sticky}, true
}

func PistonState(id string, facing Facing, extended bool) BlockState {
	return NewBlockState(id,
		Property{Name: PropFacing, Value: FacingValue(facing)},
		Property{Name: PropExtended, Value: BoolValue(extended)},
	)
}

func HeadState(id string, facing Facing, sticky bool) BlockState {
	typ := HeadTypeDefault
	if sticky {
		typ = HeadTypeSticky
	}
	return NewBlockState(id,
		Property{Name: PropFacing, Value: FacingValue(facing)},
		Property{Name: PropType, Value: EnumValue(typ)},
	)
}
