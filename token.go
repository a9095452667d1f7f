package rotor

// Token is an opaque, dense handle into a Handler's slab. It is stable for
// the lifetime of the machine occupying the slot: the same Token value
// denotes the same slot until that machine terminates, after which the slot
// (and therefore the Token) may be recycled for an unrelated machine.
//
// Token is comparable and is the identity used by timers and [Notifier]s.
type Token uint32

// invalidToken marks a cell that has never been occupied or has since been
// freed; Token(0) is never handed out to user code.
const invalidToken Token = 0

// slab is a bounded, array-backed pool of cells keyed by Token, modeled on
// the original rotor's use of mio::util::Slab. Ownership is exclusive to the
// single loop goroutine; there is no internal locking.
type slab[M any] struct {
	cells    []cell[M]
	freeList []uint32 // recycled indices, LIFO
	occupied int
	capacity int
}

// cell is the per-slot record: the machine value (when occupied) plus its
// optional deadline ticket, per spec §3's "Cell" definition.
type cell[M any] struct {
	occupied    bool
	machine     M
	hasDeadline bool
	ticket      timerTicket
	deadline    Time
}

func newSlab[M any](capacity int) *slab[M] {
	return &slab[M]{
		cells:    make([]cell[M], 0, capacity),
		capacity: capacity,
	}
}

// reserve allocates a fresh slot without installing a machine into it yet.
// Used when a machine's own construction needs to know its Token before it
// exists (spawn loop, §4.4: "the child sees t' as its token from its first
// moment").
func (s *slab[M]) reserve() (Token, bool) {
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.cells[idx].occupied = true
		s.occupied++
		return Token(idx + 1), true
	}
	if len(s.cells) >= s.capacity {
		return invalidToken, false
	}
	s.cells = append(s.cells, cell[M]{occupied: true})
	s.occupied++
	return Token(len(s.cells)), true
}

// set installs a machine (and optional deadline) into a previously reserved
// slot.
func (s *slab[M]) set(tok Token, m M, hasDeadline bool, ticket timerTicket, deadline Time) {
	idx := tok - 1
	c := &s.cells[idx]
	c.machine = m
	c.hasDeadline = hasDeadline
	c.ticket = ticket
	c.deadline = deadline
}

// take removes the machine from its slot without freeing the slot, returning
// it by value so the Handler can invoke a method on it. ok is false if the
// token denotes an unoccupied (e.g. already-freed or never-allocated) slot —
// the spurious-event case described throughout spec §3/§4.
func (s *slab[M]) take(tok Token) (M, bool, bool, timerTicket, Time) {
	var zero M
	if !s.valid(tok) {
		return zero, false, false, timerTicket{}, 0
	}
	idx := tok - 1
	c := &s.cells[idx]
	m := c.machine
	c.machine = zero
	return m, true, c.hasDeadline, c.ticket, c.deadline
}

// valid reports whether tok currently denotes an occupied slot.
func (s *slab[M]) valid(tok Token) bool {
	if tok == invalidToken {
		return false
	}
	idx := int(tok) - 1
	return idx >= 0 && idx < len(s.cells) && s.cells[idx].occupied
}

// free releases the slot for reuse.
func (s *slab[M]) free(tok Token) {
	if !s.valid(tok) {
		return
	}
	idx := tok - 1
	var zero cell[M]
	s.cells[idx] = zero
	s.freeList = append(s.freeList, uint32(idx))
	s.occupied--
}

// len reports the number of currently occupied slots.
func (s *slab[M]) len() int { return s.occupied }
