package snapshotcodec

import (
	"fmt"

	"voxelmech.ai/internal/persistence/snapshot"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
)

func EncodePalette(states []modelpkg.BlockState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.String()
	}
	return out
}

func DecodePalette(src []string) ([]modelpkg.BlockState, error) {
	out := make([]modelpkg.BlockState, len(src))
	for i, text := range src {
		s, err := modelpkg.ParseBlockState(text)
		if err != nil {
			return nil, fmt.Errorf("palette[%d]: %w", i, err)
		}
		if s.ID == modelpkg.AirID && len(s.Properties()) == 0 {
			s = modelpkg.Air
		}
		out[i] = s
	}
	return out, nil
}

func EncodeMoving(pos modelpkg.Vec3i, m *modelpkg.MovingPlaceholder, seq uint64) snapshot.MovingV1 {
	return snapshot.MovingV1{
		Pos:          pos.ToArray(),
		State:        m.State.String(),
		Facing:       m.Facing.Index(),
		Extending:    m.Extending,
		Progress:     m.Progress,
		LastProgress: m.LastProgress,
		Source:       m.Source.ToArray(),
		Head:         m.Head,
		Seq:          seq,
	}
}

func DecodeMoving(v snapshot.MovingV1) (modelpkg.Vec3i, *modelpkg.MovingPlaceholder, error) {
	st, err := modelpkg.ParseBlockState(v.State)
	if err != nil {
		return modelpkg.Vec3i{}, nil, fmt.Errorf("moving %v: %w", v.Pos, err)
	}
	f, ok := modelpkg.FacingFromIndex(v.Facing)
	if !ok {
		return modelpkg.Vec3i{}, nil, fmt.Errorf("moving %v: bad facing %d", v.Pos, v.Facing)
	}
	if v.Progress < 0 || v.Progress > 1 {
		return modelpkg.Vec3i{}, nil, fmt.Errorf("moving %v: progress %v out of range", v.Pos, v.Progress)
	}
	return modelpkg.Vec3iFromArray(v.Pos), &modelpkg.MovingPlaceholder{
		State:        st,
		Facing:       f,
		Extending:    v.Extending,
		Progress:     v.Progress,
		LastProgress: v.LastProgress,
		Source:       modelpkg.Vec3iFromArray(v.Source),
		Head:         v.Head,
	}, nil
}

func EncodeEvents(events []blockevents.Event) []snapshot.BlockEventV1 {
	if len(events) == 0 {
		return nil
	}
	out := make([]snapshot.BlockEventV1, len(events))
	for i, e := range events {
		out[i] = snapshot.BlockEventV1{Pos: e.Pos.ToArray(), Block: e.Block, Code: e.Code, Param: e.Param}
	}
	return out
}

func DecodeEvents(src []snapshot.BlockEventV1) []blockevents.Event {
	if len(src) == 0 {
		return nil
	}
	out := make([]blockevents.Event, len(src))
	for i, e := range src {
		out[i] = blockevents.Event{Pos: modelpkg.Vec3iFromArray(e.Pos), Block: e.Block, Code: e.Code, Param: e.Param}
	}
	return out
}
