package model

// MovingPlaceholder is the transient record occupying a cell while a block slides in or
// out. Progress runs 0→1 while extending and 1→0 while retracting.
//
// It is authoritative sim state and is included in snapshots/digests.
type MovingPlaceholder struct {
	State        BlockState
	Facing       Facing
	Extending    bool
	Progress     float64
	LastProgress float64

	// Source is the piston base that installed the placeholder.
	Source Vec3i

	// Head marks a retracting piston base that still draws its head sliding home.
	Head bool
}

func NewMovingPlaceholder(state BlockState, facing Facing, extending bool, source Vec3i) *MovingPlaceholder {
	p := 0.0
	if !extending {
		p = 1.0
	}
	return &MovingPlaceholder{
		State:        state,
		Facing:       facing,
		Extending:    extending,
		Progress:     p,
		LastProgress: p,
		Source:       source,
	}
}

func (m *MovingPlaceholder) terminal() float64 {
	if m.Extending {
		return 1
	}
	return 0
}

func (m *MovingPlaceholder) Done() bool {
	if m.Extending {
		return m.Progress >= 1
	}
	return m.Progress <= 0
}

// Tick advances progress by step and reports whether the terminal value was reached.
func (m *MovingPlaceholder) Tick(step float64) bool {
	m.LastProgress = m.Progress
	if m.Extending {
		m.Progress += step
		if m.Progress > 1 {
			m.Progress = 1
		}
	} else {
		m.Progress -= step
		if m.Progress < 0 {
			m.Progress = 0
		}
	}
	return m.Done()
}

// Finish jumps straight to the terminal value.
func (m *MovingPlaceholder) Finish() {
	t := m.terminal()
	m.Progress = t
	m.LastProgress = t
}

// Resolve is the concrete state the cell collapses into once the animation completes.
func (m *MovingPlaceholder) Resolve() BlockState { return m.State }

// Interpolated blends LastProgress and Progress by the sub-tick fraction partial.
func (m *MovingPlaceholder) Interpolated(partial float64) float64 {
	if partial > 1 {
		partial = 1
	}
	if partial < 0 {
		partial = 0
	}
	return m.LastProgress + (m.Progress-m.LastProgress)*partial
}

// Offset is the visual displacement of the wrapped block from its destination cell.
func (m *MovingPlaceholder) Offset(partial float64) [3]float64 {
	p := m.Interpolated(partial)
	d := p
	if m.Extending {
		d = p - 1
	}
	v := m.Facing.Vector()
	return [3]float64{float64(v.X) * d, float64(v.Y) * d, float64(v.Z) * d}
}

// Cell is the content of one grid position: either a static block state or an animating
// placeholder, never both.
type Cell struct {
	State  BlockState
	Moving *MovingPlaceholder
}

func Static(s BlockState) Cell { return Cell{State: s} }

func Animating(m *MovingPlaceholder) Cell { return Cell{Moving: m} }

func (c Cell) IsAnimating() bool { return c.Moving != nil }

func (c Cell) IsEmpty() bool { return c.Moving == nil && c.State.IsAir() }

// Collapse replaces an animating cell with the placeholder's resolved state.
func (c Cell) Collapse() Cell {
	if c.Moving == nil {
		return c
	}
	return Static(c.Moving.Resolve())
}
