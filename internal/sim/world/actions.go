package world

import (
	"strings"

	"voxelmech.ai/internal/sim/catalogs"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

const (
	ActPlace  = "PLACE"
	ActBreak  = "BREAK"
	ActToggle = "TOGGLE"
	ActPress  = "PRESS"
)

// Action result codes.
const (
	CodeOK           = ""
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrOutOfBounds   = "E_OUT_OF_BOUNDS"
	ErrOccupied      = "E_OCCUPIED"
	ErrMoving        = "E_MOVING"
	ErrUnknownBlock  = "E_UNKNOWN_BLOCK"
	ErrNotPlaceable  = "E_NOT_PLACEABLE"
	ErrEmpty         = "E_EMPTY"
	ErrUnbreakable   = "E_UNBREAKABLE"
	ErrInvalidTarget = "E_INVALID_TARGET"
)

type Action struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Pos   [3]int `json:"pos"`
	State string `json:"state,omitempty"` // PLACE only
}

// ActionEnvelope carries one action into the world inbox. Result, when set, receives the
// outcome after the tick that applied it; it should be buffered.
type ActionEnvelope struct {
	Actor  string
	Act    Action
	Result chan<- ActionResult
}

type ActionResult struct {
	ID      string `json:"id,omitempty"`
	Tick    uint64 `json:"tick"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (w *World) applyActions(envs []ActionEnvelope) []RecordedAction {
	if len(envs) == 0 {
		return nil
	}
	recorded := make([]RecordedAction, 0, len(envs))
	for _, env := range envs {
		res := w.applyAction(env.Actor, env.Act)
		w.tickResults = append(w.tickResults, res)
		recorded = append(recorded, RecordedAction{Actor: env.Actor, Act: env.Act})
		if env.Result != nil {
			select {
			case env.Result <- res:
			default:
			}
		}
	}
	return recorded
}

func (w *World) applyAction(actor string, a Action) ActionResult {
	res := ActionResult{ID: a.ID, Tick: w.tick.Load()}
	fail := func(code, msg string) ActionResult {
		res.Code = code
		res.Message = msg
		return res
	}
	pos := modelpkg.Vec3iFromArray(a.Pos)
	if !w.chunks.InBounds(pos) {
		return fail(ErrOutOfBounds, "position outside the world")
	}

	var code, msg string
	switch strings.ToUpper(strings.TrimSpace(a.Type)) {
	case ActPlace:
		code, msg = w.place(actor, pos, a.State)
	case ActBreak:
		code, msg = w.breakBlock(actor, pos)
	case ActToggle:
		code, msg = w.use(actor, pos, ActToggle)
	case ActPress:
		code, msg = w.use(actor, pos, ActPress)
	default:
		return fail(ErrBadRequest, "unknown action type")
	}
	if code != CodeOK {
		return fail(code, msg)
	}
	res.OK = true
	return res
}

// CanPlace checks whether st may be placed at pos and returns the normalized state.
func (w *World) CanPlace(pos Vec3i, st BlockState) (BlockState, string) {
	def, ok := w.blockDef(st.ID)
	if !ok {
		return st, ErrUnknownBlock
	}
	b := w.behaviors[def.Kind]
	if !b.placeable {
		return st, ErrNotPlaceable
	}
	if !w.chunks.InBounds(pos) {
		return st, ErrOutOfBounds
	}
	c := w.chunks.Cell(pos)
	if c.IsAnimating() {
		return st, ErrMoving
	}
	if !c.State.IsAir() {
		return st, ErrOccupied
	}
	if b.normalize != nil {
		var good bool
		if st, good = b.normalize(st); !good {
			return st, ErrBadRequest
		}
	}
	return st, CodeOK
}

func (w *World) place(actor string, pos Vec3i, text string) (string, string) {
	st, err := modelpkg.ParseBlockState(text)
	if err != nil {
		return ErrBadRequest, err.Error()
	}
	st, code := w.CanPlace(pos, st)
	if code != CodeOK {
		return code, "cannot place " + st.ID
	}
	w.SetBlockState(pos, st, FlagNotify|FlagSync)
	w.auditSetBlock(actor, pos, modelpkg.Air, st, "PLACE")
	return CodeOK, ""
}

func (w *World) breakBlock(actor string, pos Vec3i) (string, string) {
	c := w.chunks.Cell(pos)
	st := c.State
	if c.IsAnimating() {
		st, _ = w.finishPlaceholder(pos)
	}
	if st.IsAir() {
		return ErrEmpty, "nothing to break"
	}
	def, ok := w.blockDef(st.ID)
	if ok && def.Unbreakable {
		return ErrUnbreakable, st.ID + " is unbreakable"
	}
	if item, ok := w.dropFor(st); ok {
		w.SpawnItemDrop(pos, item, 1)
	}
	w.SetBlockState(pos, modelpkg.Air, FlagNotify|FlagSync)
	w.auditSetBlock(actor, pos, st, modelpkg.Air, "BREAK")
	if b := w.behaviorFor(st.ID); b.onBroken != nil {
		b.onBroken(w, pos, st)
	}
	return CodeOK, ""
}

func (w *World) use(actor string, pos Vec3i, typ string) (string, string) {
	c := w.chunks.Cell(pos)
	if c.IsAnimating() {
		return ErrMoving, "target is moving"
	}
	def, ok := w.blockDef(c.State.ID)
	want := catalogs.KindLever
	if typ == ActPress {
		want = catalogs.KindButton
	}
	if !ok || def.Kind != want {
		return ErrInvalidTarget, "target is not a " + strings.ToLower(want)
	}
	b := w.behaviors[def.Kind]
	if b.onUse == nil || !b.onUse(w, pos, c.State) {
		return ErrInvalidTarget, "use failed"
	}
	w.auditSetBlock(actor, pos, c.State, w.GetBlockState(pos), typ)
	return CodeOK, ""
}
