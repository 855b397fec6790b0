package blockevents

import modelpkg "voxelmech.ai/internal/sim/world/kernel/model"

// Event codes used by pistons.
const (
	CodeExtend  = 0
	CodeRetract = 1
)

// Event is a deferred per-cell command addressed to the block at Pos.
type Event struct {
	Pos   modelpkg.Vec3i
	Block string
	Code  int
	Param int
}

// Queue is a FIFO of pending block events. It is single-threaded: enqueue and drain
// both happen on the world loop.
type Queue struct {
	pending []Event
}

func NewQueue() *Queue { return &Queue{} }

// Enqueue appends e unless an identical event is already pending.
func (q *Queue) Enqueue(e Event) bool {
	for _, p := range q.pending {
		if p == e {
			return false
		}
	}
	q.pending = append(q.pending, e)
	return true
}

func (q *Queue) Len() int { return len(q.pending) }

// Pending returns a copy of the queued events in order.
func (q *Queue) Pending() []Event {
	out := make([]Event, len(q.pending))
	copy(out, q.pending)
	return out
}

// Restore replaces the queue contents (snapshot import).
func (q *Queue) Restore(events []Event) {
	q.pending = append(q.pending[:0], events...)
}

// Drain processes pending events in enqueue order, including events enqueued by fn while
// draining. At most max events are processed (max <= 0 means unbounded); the rest stay
// queued for the next drain. It returns the number processed.
func (q *Queue) Drain(max int, fn func(Event)) int {
	n := 0
	for len(q.pending) > 0 {
		if max > 0 && n >= max {
			break
		}
		e := q.pending[0]
		q.pending[0] = Event{}
		q.pending = q.pending[1:]
		n++
		fn(e)
	}
	if len(q.pending) == 0 {
		q.pending = nil
	}
	return n
}
