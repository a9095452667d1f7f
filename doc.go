// Package rotor provides a non-blocking I/O framework built around explicit,
// ownership-transferring finite state machines.
//
// # Architecture
//
// Every user-defined machine implements [Machine]: a small set of methods
// that each consume the machine value and return a [Response] describing how
// the machine continues, terminates, spawns a child, or reschedules its
// deadline. A single [Handler], built through [LoopCreator] and
// [LoopInstance], multiplexes many machines over one OS readiness poller
// (epoll on Linux, kqueue on Darwin) plus a millisecond timer wheel. There is
// no shared mutable state between machines beyond the single process-wide
// context value threaded through every [Scope].
//
// # Composition
//
// Sibling machine kinds can share one dispatch token by embedding them in a
// tagged union built with [Compose2] or [Compose3]; each delegates every
// method call to its active variant and relabels the returned [Response].
//
// # Platform support
//
// I/O readiness is delivered using platform-native mechanisms: epoll on
// Linux, kqueue on Darwin. Cross-thread wakeup ([Notifier]) uses an eventfd
// on Linux and a self-pipe on Darwin.
//
// # Usage
//
//	creator, err := rotor.NewLoop[Echo, Context, net.Conn]()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = creator.AddMachineWith(func(scope rotor.EarlyScope) rotor.Response[Echo, net.Conn] {
//	    return rotor.Ok[Echo, net.Conn](NewEcho(listener, scope))
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := creator.Run(context.Background(), &Context{}); err != nil {
//	    log.Fatal(err)
//	}
package rotor
