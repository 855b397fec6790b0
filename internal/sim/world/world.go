package world

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"voxelmech.ai/internal/persistence/snapshot"
	"voxelmech.ai/internal/sim/catalogs"
	"voxelmech.ai/internal/sim/world/feature/entities/items"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
	storepkg "voxelmech.ai/internal/sim/world/terrain/store"
)

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	logger   *log.Logger

	tick atomic.Uint64

	chunks     *storepkg.ChunkStore
	classifier *pushchain.Classifier
	behaviors  map[string]behavior
	headID     string
	movingID   string

	events    *blockevents.Queue
	scheduled []scheduledUpdate
	movingSeq map[Vec3i]uint64
	nextSeq   uint64
	drops     *items.Drops

	moves      uint64
	moveFailed uint64

	inbox         chan ActionEnvelope
	cellReq       chan cellReq
	summaryReq    chan summaryReq
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	// Optional per-tick sink for fan-out (redis, index db). Sends must not block.
	tickSink chan<- TickLogEntry

	observers map[string]*observerClient

	// Per-tick buffers, reset at the start of every step.
	tickResults []ActionResult
	tickMoves   []MoveRecord
	tickSounds  []SoundRecord
	tickChanged map[Vec3i]struct{}
	lastDigest  string
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Actions []RecordedAction `json:"actions,omitempty"`
	Results []ActionResult   `json:"results,omitempty"`
	Moves   []MoveRecord     `json:"moves,omitempty"`
	Digest  string           `json:"digest"`
}

type RecordedAction struct {
	Actor string `json:"actor"`
	Act   Action `json:"act"`
}

type AuditEntry struct {
	Tick    uint64         `json:"tick"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"` // e.g. "SET_BLOCK"
	Pos     [3]int         `json:"pos"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type MoveRecord struct {
	Pos       [3]int `json:"pos"`
	Facing    string `json:"facing"`
	Extending bool   `json:"extending"`
	Moved     int    `json:"moved"`
	Destroyed int    `json:"destroyed"`
}

type SoundRecord struct {
	Pos    [3]int  `json:"pos"`
	Sound  string  `json:"sound"`
	Volume float64 `json:"volume"`
	Pitch  float64 `json:"pitch"`
}

type scheduledUpdate struct {
	Pos     Vec3i
	Block   string
	DueTick uint64
	Seq     uint64
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	cfg.applyDefaults()

	headID, ok := cats.Blocks.FirstOfKind(catalogs.KindPistonHead)
	if !ok {
		return nil, fmt.Errorf("catalog has no %s block", catalogs.KindPistonHead)
	}
	movingID, ok := cats.Blocks.FirstOfKind(catalogs.KindMoving)
	if !ok {
		return nil, fmt.Errorf("catalog has no %s block", catalogs.KindMoving)
	}

	traits := make(map[string]pushchain.Traits, len(cats.Blocks.Defs))
	for id, d := range cats.Blocks.Defs {
		traits[id] = pushchain.Traits{
			Reaction:    d.Reaction,
			Unbreakable: d.Unbreakable,
			HasTile:     d.HasTile,
			Piston:      d.Kind == catalogs.KindPiston,
		}
	}

	w := &World{
		cfg:           cfg,
		catalogs:      cats,
		logger:        log.New(io.Discard, "", 0),
		chunks:        storepkg.NewChunkStore(cfg.Height, cfg.BoundaryR),
		classifier:    pushchain.NewClassifier(traits),
		behaviors:     defaultBehaviors(),
		headID:        headID,
		movingID:      movingID,
		events:        blockevents.NewQueue(),
		movingSeq:     map[Vec3i]uint64{},
		nextSeq:       1,
		drops:         items.NewDrops(uint64(cfg.DropTTLTicks)),
		inbox:         make(chan ActionEnvelope, 1024),
		cellReq:       make(chan cellReq, 64),
		summaryReq:    make(chan summaryReq, 16),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
		observers:     map[string]*observerClient{},
		tickChanged:   map[Vec3i]struct{}{},
	}
	return w, nil
}

func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}
func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }
func (w *World) SetTickSink(ch chan<- TickLogEntry)            { w.tickSink = ch }

func (w *World) Inbox() chan<- ActionEnvelope             { return w.inbox }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) blockDef(id string) (catalogs.BlockDef, bool) {
	d, ok := w.catalogs.Blocks.Defs[id]
	return d, ok
}

func (w *World) behaviorFor(id string) behavior {
	d, ok := w.catalogs.Blocks.Defs[id]
	if !ok {
		return behavior{}
	}
	return w.behaviors[d.Kind]
}

func (w *World) isSticky(id string) bool {
	d, ok := w.catalogs.Blocks.Defs[id]
	return ok && d.Sticky
}

func (w *World) dropFor(s modelpkg.BlockState) (string, bool) {
	d, ok := w.catalogs.Blocks.Defs[s.ID]
	if !ok || d.DropsItem == "" {
		return "", false
	}
	return d.DropsItem, true
}
