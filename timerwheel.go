package rotor

import "container/heap"

// timerTicket identifies one armed deadline, independent of heap position
// (which moves under Push/Pop/Swap). The zero value never denotes a live
// ticket.
type timerTicket struct {
	id uint64
}

func (t timerTicket) valid() bool { return t.id != 0 }

// timerEntry is one scheduled firing.
type timerEntry struct {
	when  Time
	token Token
	id    uint64
}

// timerHeapImpl is a min-heap of timerEntry ordered by when, following the
// same container/heap.Interface shape as the teacher's loop.go timerHeap.
type timerHeapImpl []timerEntry

func (h timerHeapImpl) Len() int            { return len(h) }
func (h timerHeapImpl) Less(i, j int) bool  { return h[i].when < h[j].when }
func (h timerHeapImpl) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeapImpl) Push(x any)         { *h = append(*h, x.(timerEntry)) }
func (h *timerHeapImpl) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// timerWheel implements §4.2's deadline arm/cancel contract using lazy
// deletion: Cancel marks a ticket dead in a side map rather than searching
// the heap, and expired/cancelled entries are discarded as they reach the
// head during Pop.
type timerWheel struct {
	heap  timerHeapImpl
	alive map[uint64]struct{}
	nextID uint64
}

func newTimerWheel() *timerWheel {
	return &timerWheel{alive: make(map[uint64]struct{})}
}

// Arm schedules tok to receive a timeout at "at" and returns the ticket
// identifying this specific firing.
func (w *timerWheel) Arm(tok Token, at Time) timerTicket {
	w.nextID++
	id := w.nextID
	w.alive[id] = struct{}{}
	heap.Push(&w.heap, timerEntry{when: at, token: tok, id: id})
	return timerTicket{id: id}
}

// Cancel invalidates a previously-armed ticket. Returns true if the ticket
// was still alive (had not already fired or been cancelled).
func (w *timerWheel) Cancel(tk timerTicket) bool {
	if !tk.valid() {
		return false
	}
	if _, ok := w.alive[tk.id]; ok {
		delete(w.alive, tk.id)
		return true
	}
	return false
}

// NextDeadline reports the earliest still-alive deadline, discarding any
// stale (cancelled) entries from the head of the heap as it goes.
func (w *timerWheel) NextDeadline() (Time, bool) {
	for w.heap.Len() > 0 {
		top := w.heap[0]
		if _, ok := w.alive[top.id]; !ok {
			heap.Pop(&w.heap)
			continue
		}
		return top.when, true
	}
	return 0, false
}

// PopExpired removes and returns every entry due at or before now, skipping
// stale (already-cancelled) entries.
func (w *timerWheel) PopExpired(now Time) []timerEntry {
	var due []timerEntry
	for w.heap.Len() > 0 {
		top := w.heap[0]
		if _, ok := w.alive[top.id]; !ok {
			heap.Pop(&w.heap)
			continue
		}
		if top.when > now {
			break
		}
		heap.Pop(&w.heap)
		delete(w.alive, top.id)
		due = append(due, top)
	}
	return due
}

// Len reports the number of still-alive (not necessarily fired) tickets.
func (w *timerWheel) Len() int { return len(w.alive) }
