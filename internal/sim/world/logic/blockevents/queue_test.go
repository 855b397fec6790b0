package blockevents

import (
	"testing"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

func TestQueue_DedupesPendingEvents(t *testing.T) {
	q := NewQueue()
	e := Event{Pos: modelpkg.Vec3i{X: 1}, Block: "PISTON", Code: CodeExtend, Param: 5}
	if !q.Enqueue(e) {
		t.Fatalf("first enqueue rejected")
	}
	if q.Enqueue(e) {
		t.Fatalf("duplicate accepted")
	}
	e2 := e
	e2.Code = CodeRetract
	if !q.Enqueue(e2) {
		t.Fatalf("distinct event rejected")
	}
	if q.Len() != 2 {
		t.Fatalf("len=%d", q.Len())
	}
}

func TestQueue_DrainFIFOIncludingReentrant(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 3; i++ {
		q.Enqueue(Event{Pos: modelpkg.Vec3i{X: i}, Block: "PISTON"})
	}
	var seen []int
	q.Drain(0, func(e Event) {
		seen = append(seen, e.Pos.X)
		if e.Pos.X == 0 {
			q.Enqueue(Event{Pos: modelpkg.Vec3i{X: 9}, Block: "PISTON"})
		}
	})
	want := []int{0, 1, 2, 9}
	if len(seen) != len(want) {
		t.Fatalf("seen=%v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen=%v want %v", seen, want)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("queue not empty")
	}
}

func TestQueue_DrainCapRollsOver(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Enqueue(Event{Pos: modelpkg.Vec3i{X: i}, Block: "PISTON"})
	}
	if n := q.Drain(2, func(Event) {}); n != 2 {
		t.Fatalf("processed=%d", n)
	}
	p := q.Pending()
	if len(p) != 3 || p[0].Pos.X != 2 {
		t.Fatalf("pending=%+v", p)
	}
}

func TestQueue_EventCanBeRequeuedAfterDrain(t *testing.T) {
	q := NewQueue()
	e := Event{Block: "PISTON", Code: CodeRetract}
	q.Enqueue(e)
	q.Drain(0, func(Event) {})
	if !q.Enqueue(e) {
		t.Fatalf("drained event should be enqueueable again")
	}
}
