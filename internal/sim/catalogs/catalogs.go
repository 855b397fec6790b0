package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

// Block kinds. Each kind selects one behavior row in the world's dispatch table.
const (
	KindAir        = "AIR"
	KindSolid      = "SOLID"
	KindPlant      = "PLANT"
	KindContainer  = "CONTAINER"
	KindPiston     = "PISTON"
	KindPistonHead = "PISTON_HEAD"
	KindMoving     = "MOVING"
	KindPowerBlock = "POWER_BLOCK"
	KindLever      = "LEVER"
	KindButton     = "BUTTON"
)

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Solid        bool   `json:"solid"`
	PushReaction string `json:"push_reaction,omitempty"`
	Unbreakable  bool   `json:"unbreakable,omitempty"`
	HasTile      bool   `json:"has_tile,omitempty"`
	Sticky       bool   `json:"sticky,omitempty"`
	DropsItem    string `json:"drops_item,omitempty"`

	Reaction modelpkg.PushReaction `json:"-"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ValidateBlocksJSON(raw); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	return out.build(defs)
}

// FromDefs builds a catalog directly from definitions (tests, tools).
func FromDefs(defs []BlockDef) (*Catalogs, error) {
	var c Catalogs
	raw, _ := json.Marshal(defs)
	c.Blocks.DefsDigest = sha256Hex(raw)
	if err := c.Blocks.build(defs); err != nil {
		return nil, err
	}
	return &c, nil
}

func (out *BlockCatalog) build(defs []BlockDef) error {
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		r, err := modelpkg.ParsePushReaction(d.PushReaction)
		if err != nil {
			return fmt.Errorf("blocks.json: %s: %w", d.ID, err)
		}
		d.Reaction = r
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs[modelpkg.AirID]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	for _, kind := range []string{KindPistonHead, KindMoving} {
		if _, ok := out.FirstOfKind(kind); !ok {
			return fmt.Errorf("blocks.json: missing %s block", kind)
		}
	}
	ids = append([]string{modelpkg.AirID}, filterOut(ids, modelpkg.AirID)...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

// FirstOfKind returns the lexically first block id of the given kind.
func (c *BlockCatalog) FirstOfKind(kind string) (string, bool) {
	best := ""
	for id, d := range c.Defs {
		if d.Kind != kind {
			continue
		}
		if best == "" || id < best {
			best = id
		}
	}
	return best, best != ""
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ValidateBlocksJSON checks raw against the blocks.json schema.
func ValidateBlocksJSON(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	s, err := blocksSchema()
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

func blocksSchema() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("blocks.schema.json", BlocksSchema)
}

// BlocksSchema is the JSON schema for configs/blocks.json.
const BlocksSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "kind"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "string", "pattern": "^[A-Z][A-Z0-9_]*$"},
      "kind": {"enum": ["AIR", "SOLID", "PLANT", "CONTAINER", "PISTON", "PISTON_HEAD", "MOVING", "POWER_BLOCK", "LEVER", "BUTTON"]},
      "solid": {"type": "boolean"},
      "push_reaction": {"enum": ["NORMAL", "DESTROY", "BLOCK", "IGNORE"]},
      "unbreakable": {"type": "boolean"},
      "has_tile": {"type": "boolean"},
      "sticky": {"type": "boolean"},
      "drops_item": {"type": "string"}
    }
  }
}`
