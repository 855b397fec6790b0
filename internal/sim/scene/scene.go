package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

// MaxFillCells bounds a single fill entry.
const MaxFillCells = 1 << 20

type Scene struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Blocks      []Entry `yaml:"blocks"`
}

// Entry is either a single position or an inclusive fill box.
type Entry struct {
	Pos   *[3]int `yaml:"pos,omitempty"`
	Fill  *Box    `yaml:"fill,omitempty"`
	State string  `yaml:"state"`
}

type Box struct {
	From [3]int `yaml:"from"`
	To   [3]int `yaml:"to"`
}

type Placement struct {
	Pos   modelpkg.Vec3i
	State modelpkg.BlockState
}

func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	for i, e := range s.Blocks {
		if (e.Pos == nil) == (e.Fill == nil) {
			return nil, fmt.Errorf("scene: blocks[%d]: exactly one of pos or fill is required", i)
		}
		if _, err := modelpkg.ParseBlockState(e.State); err != nil {
			return nil, fmt.Errorf("scene: blocks[%d]: %w", i, err)
		}
		if e.Fill != nil && e.Fill.cells() > MaxFillCells {
			return nil, fmt.Errorf("scene: blocks[%d]: fill too large", i)
		}
	}
	return &s, nil
}

func span(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func (b Box) cells() int {
	n := 1
	for i := 0; i < 3; i++ {
		lo, hi := span(b.From[i], b.To[i])
		n *= hi - lo + 1
	}
	return n
}

// Placements expands the scene in file order. Fills iterate y, then z, then x.
func (s *Scene) Placements() []Placement {
	var out []Placement
	for _, e := range s.Blocks {
		st, err := modelpkg.ParseBlockState(e.State)
		if err != nil {
			continue
		}
		if e.Pos != nil {
			out = append(out, Placement{Pos: modelpkg.Vec3iFromArray(*e.Pos), State: st})
			continue
		}
		x0, x1 := span(e.Fill.From[0], e.Fill.To[0])
		y0, y1 := span(e.Fill.From[1], e.Fill.To[1])
		z0, z1 := span(e.Fill.From[2], e.Fill.To[2])
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				for x := x0; x <= x1; x++ {
					out = append(out, Placement{Pos: modelpkg.Vec3i{X: x, Y: y, Z: z}, State: st})
				}
			}
		}
	}
	return out
}
