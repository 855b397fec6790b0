package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Property names shared by the block behaviors.
const (
	PropFacing   = "facing"
	PropExtended = "extended"
	PropPowered  = "powered"
	PropType     = "type"
)

const AirID = "AIR"

// MaxProperties bounds the property bag so BlockState stays a comparable value.
const MaxProperties = 4

type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFacing
	KindEnum
)

// Value is a typed property value. The zero Value means "unset".
type Value struct {
	kind ValueKind
	n    int
	s    string
}

func BoolValue(b bool) Value {
	if b {
		return Value{kind: KindBool, n: 1}
	}
	return Value{kind: KindBool}
}

func IntValue(n int) Value { return Value{kind: KindInt, n: n} }

func FacingValue(f Facing) Value { return Value{kind: KindFacing, n: int(f)} }

func EnumValue(s string) Value { return Value{kind: KindEnum, s: s} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Bool() bool { return v.kind == KindBool && v.n != 0 }

func (v Value) Int() int { return v.n }

func (v Value) Facing() Facing { return Facing(v.n) }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.n != 0)
	case KindInt:
		return strconv.Itoa(v.n)
	case KindFacing:
		return Facing(v.n).String()
	case KindEnum:
		return v.s
	default:
		return ""
	}
}

// ParseValue infers the kind from the text: booleans, integers, facing names, else enum.
func ParseValue(s string) Value {
	switch s {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return IntValue(n)
	}
	if f, err := ParseFacing(s); err == nil {
		return FacingValue(f)
	}
	return EnumValue(s)
}

type Property struct {
	Name  string
	Value Value
}

// BlockState is an immutable block occupant: a block id plus properties ordered by name.
// Equality is structural, so states compare with ==.
type BlockState struct {
	ID string

	n     uint8
	props [MaxProperties]Property
}

var Air = BlockState{ID: AirID}

func NewBlockState(id string, props ...Property) BlockState {
	s := BlockState{ID: id}
	for _, p := range props {
		s = s.With(p.Name, p.Value)
	}
	return s
}

func (s BlockState) IsAir() bool { return s.ID == "" || s.ID == AirID }

// With returns a copy of s with the named property set. It panics when the bag is full.
func (s BlockState) With(name string, v Value) BlockState {
	for i := 0; i < int(s.n); i++ {
		if s.props[i].Name == name {
			s.props[i].Value = v
			return s
		}
	}
	if int(s.n) == MaxProperties {
		panic(fmt.Sprintf("blockstate %s: too many properties adding %q", s.ID, name))
	}
	i := int(s.n)
	for i > 0 && s.props[i-1].Name > name {
		s.props[i] = s.props[i-1]
		i--
	}
	s.props[i] = Property{Name: name, Value: v}
	s.n++
	return s
}

func (s BlockState) Get(name string) (Value, bool) {
	for i := 0; i < int(s.n); i++ {
		if s.props[i].Name == name {
			return s.props[i].Value, true
		}
	}
	return Value{}, false
}

func (s BlockState) Bool(name string) bool {
	v, ok := s.Get(name)
	return ok && v.Bool()
}

func (s BlockState) Facing(name string) (Facing, bool) {
	v, ok := s.Get(name)
	if !ok || v.kind != KindFacing {
		return 0, false
	}
	return v.Facing(), true
}

func (s BlockState) Enum(name string) string {
	v, _ := s.Get(name)
	return v.String()
}

func (s BlockState) Properties() []Property {
	out := make([]Property, s.n)
	copy(out, s.props[:s.n])
	return out
}

// String renders ID[k=v,...]; ParseBlockState is its inverse.
func (s BlockState) String() string {
	if s.n == 0 {
		return s.ID
	}
	var b strings.Builder
	b.WriteString(s.ID)
	b.WriteByte('[')
	for i := 0; i < int(s.n); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.props[i].Name)
		b.WriteByte('=')
		b.WriteString(s.props[i].Value.String())
	}
	b.WriteByte(']')
	return b.String()
}

func ParseBlockState(text string) (BlockState, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '[')
	if open < 0 {
		if text == "" {
			return BlockState{}, fmt.Errorf("empty block state")
		}
		return BlockState{ID: text}, nil
	}
	if !strings.HasSuffix(text, "]") || open == 0 {
		return BlockState{}, fmt.Errorf("malformed block state %q", text)
	}
	s := BlockState{ID: text[:open]}
	body := text[open+1 : len(text)-1]
	if body == "" {
		return s, nil
	}
	for _, kv := range strings.Split(body, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return BlockState{}, fmt.Errorf("malformed property %q in %q", kv, text)
		}
		if _, dup := s.Get(k); dup {
			return BlockState{}, fmt.Errorf("duplicate property %q in %q", k, text)
		}
		if int(s.n) == MaxProperties {
			return BlockState{}, fmt.Errorf("too many properties in %q", text)
		}
		s = s.With(k, ParseValue(v))
	}
	return s, nil
}
