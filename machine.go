package rotor

// Machine is the ownership-transferring state machine contract at the heart
// of the framework (spec §2/§3). M is the concrete implementing type itself
// (an F-bounded, self-referential constraint simulating the original's
// Self-typed trait methods), C is the shared process-wide context type, and S
// is the seed type consumed by Create and carried by Spawn/SpawnError.
//
// Every method consumes the receiver by value and returns a Response[M, S]
// describing how (or whether) the machine continues. There is no in-place
// mutation visible across calls: a machine that wants to change state returns
// a differently-valued M, not a mutated *M.
type Machine[M any, C any, S any] interface {
	// Create constructs the machine's first in-loop value from seed, with
	// scope granting only the GenericScope capabilities (no Context access
	// — the machine is not yet part of the slab, per spec §4.4's "the
	// earliest moment has no well-defined Context slot to dereference").
	// Create may Ok, Done, or Err — Done declines construction silently (the
	// would-be child is freed without notifying its parent), Err routes
	// Response.SpawnError(UserSpawnError) to the parent. Returning
	// Response.Spawn from Create is a usage violation and panics
	// immediately: a machine under construction cannot itself spawn.
	Create(seed S, scope EarlyScope) Response[M, S]

	// Ready is invoked once per readiness event for every fd this machine
	// has registered, with events describing which interest(s) fired.
	Ready(events IOEvents, scope Scope[C]) Response[M, S]

	// Wakeup is invoked when a [Notifier] minted for this machine's token
	// fires. A wakeup may be spurious (delivered after this slot was
	// recycled from an unrelated machine's Notifier) and must be tolerated
	// silently, never treated as an error.
	Wakeup(scope Scope[C]) Response[M, S]

	// Timeout is invoked when this machine's armed deadline elapses.
	Timeout(scope Scope[C]) Response[M, S]

	// Spawned is invoked on the parent after a child requested via
	// Response.Spawn has been successfully installed, synchronously within
	// the same spawn loop (spec §4.4). childToken identifies the new
	// sibling.
	Spawned(childToken Token, scope Scope[C]) Response[M, S]

	// SpawnError is invoked on the parent instead of Spawned when child
	// installation failed — either because the slab had no free slot
	// (err.IsSlabFull(), with the seed preserved in err.Seed) or because the
	// child's own Create returned Response.Err.
	SpawnError(err SpawnError[S], scope Scope[C]) Response[M, S]
}
