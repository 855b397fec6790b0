package model

// Vec3i is an integer grid position. It is the primary key into the grid.
type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func Vec3iFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Offset returns the neighbor of v in direction f.
func (v Vec3i) Offset(f Facing) Vec3i { return v.Add(f.Vector()) }

// OffsetN returns the position n steps from v in direction f.
func (v Vec3i) OffsetN(f Facing, n int) Vec3i {
	d := f.Vector()
	return Vec3i{X: v.X + d.X*n, Y: v.Y + d.Y*n, Z: v.Z + d.Z*n}
}

func Manhattan(a, b Vec3i) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	return dx + dy + dz
}

// LessVec3i orders positions by X, then Y, then Z.
func LessVec3i(a, b Vec3i) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
