package rotor

import "sync"

// Future and Port are a supplemental one-shot value handoff, not named in
// the original rotor core but natural given its emphasis on explicit
// ownership transfer: a machine that needs a value produced by another
// machine (or another goroutine entirely) without modeling a full sibling
// protocol for it can hand out a Port, receive the value once, and be done.
//
// This is deliberately NOT a futures/promises library: there is no Then, Map,
// or Join. Composing the result of a Future is done the same way as every
// other cross-machine signal in this framework — a Notifier paired with
// ordinary state inspected from Ready/Wakeup/Timeout — not with combinators.
type Future[T any] struct {
	cell *futureCell[T]
}

// Port is the write-once counterpart to a Future, usable from any goroutine.
type Port[T any] struct {
	cell *futureCell[T]
}

type futureCell[T any] struct {
	mu     sync.Mutex
	done   bool
	value  T
	notify []Notifier
}

// NewFuture creates a Future/Port pair. The Port may be handed to any
// goroutine (including ones outside the loop entirely); the Future is
// intended to be polled from within the loop via TryTake, typically after a
// Notifier registered with Subscribe has fired.
func NewFuture[T any]() (Future[T], Port[T]) {
	c := &futureCell[T]{}
	return Future[T]{cell: c}, Port[T]{cell: c}
}

// Fulfill delivers value to the Future side exactly once. Subsequent calls
// are no-ops: a Port is single-assignment, mirroring the seed/machine
// move-only discipline used everywhere else in this framework.
func (p Port[T]) Fulfill(value T) {
	c := p.cell
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.value = value
	notify := c.notify
	c.notify = nil
	c.mu.Unlock()

	for _, n := range notify {
		_ = n.Wakeup()
	}
}

// Subscribe registers n to be woken (possibly spuriously, per the same
// tolerance every Notifier requires) once Fulfill is called. If the value is
// already available, n is woken immediately rather than queued.
func (f Future[T]) Subscribe(n Notifier) {
	c := f.cell
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		_ = n.Wakeup()
		return
	}
	c.notify = append(c.notify, n)
	c.mu.Unlock()
}

// TryTake returns the fulfilled value and true, or the zero value and false
// if Fulfill has not yet been called.
func (f Future[T]) TryTake() (T, bool) {
	c := f.cell
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.done
}
