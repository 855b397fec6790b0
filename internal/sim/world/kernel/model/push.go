package model

import "fmt"

// PushReaction classifies how a block type responds to being pushed by a piston.
type PushReaction uint8

const (
	PushNormal PushReaction = iota
	PushDestroy
	PushBlock
	// PushIgnore marks pistons and their heads; the final reaction depends on state.
	PushIgnore
)

func (r PushReaction) String() string {
	switch r {
	case PushNormal:
		return "NORMAL"
	case PushDestroy:
		return "DESTROY"
	case PushBlock:
		return "BLOCK"
	case PushIgnore:
		return "IGNORE"
	default:
		return fmt.Sprintf("PushReaction(%d)", uint8(r))
	}
}

func ParsePushReaction(s string) (PushReaction, error) {
	switch s {
	case "", "NORMAL":
		return PushNormal, nil
	case "DESTROY":
		return PushDestroy, nil
	case "BLOCK":
		return PushBlock, nil
	case "IGNORE":
		return PushIgnore, nil
	default:
		return 0, fmt.Errorf("unknown push reaction %q", s)
	}
}
