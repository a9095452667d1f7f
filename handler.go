package rotor

import (
	"context"
	"errors"
)

// Handler is the single-threaded dispatch loop described by spec §4: one
// slab, one poller, one timer wheel, one notify channel, one Context. It
// drives tokens to Machine methods, interprets the returned Response, and
// performs the synchronous spawn loop (§4.4) before returning to poll for
// the next event.
type Handler[M Machine[M, C, S], C any, S any] struct {
	cfg Config

	slab   *slab[M]
	timers *timerWheel
	poll   poller
	wake   wakeSignal
	notify *notifyChannel
	clock  *clock

	ctx *C

	shutdownRequested bool
	running           bool
	fatalErr          error
}

func newHandler[M Machine[M, C, S], C any, S any](cfg Config) (*Handler[M, C, S], error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	ws, err := newWakeSignal()
	if err != nil {
		_ = p.close()
		return nil, err
	}
	h := &Handler[M, C, S]{
		cfg:    cfg,
		slab:   newSlab[M](cfg.SlabCapacity),
		timers: newTimerWheel(),
		poll:   p,
		wake:   ws,
		clock:  newClock(),
	}
	h.notify = newNotifyChannel(cfg.NotifyQueueCapacity, ws)
	if err := p.register(ws.fd(), invalidToken, EventRead, LevelTriggered); err != nil {
		_ = p.close()
		_ = ws.close()
		return nil, err
	}
	return h, nil
}

// --- scopeHost: the narrow surface scopeImpl needs from Handler ---

func (h *Handler[M, C, S]) hostRegister(tok Token, fd int, interests IOEvents, mode TriggerMode) error {
	return h.poll.register(fd, tok, interests, mode)
}

func (h *Handler[M, C, S]) hostReregister(tok Token, fd int, interests IOEvents, mode TriggerMode) error {
	return h.poll.reregister(fd, tok, interests, mode)
}

func (h *Handler[M, C, S]) hostDeregister(tok Token, fd int) error {
	return h.poll.deregister(fd)
}

func (h *Handler[M, C, S]) hostNotifier(tok Token) Notifier {
	return Notifier{token: tok, channel: h.notify}
}

func (h *Handler[M, C, S]) hostShutdown() {
	h.shutdownRequested = true
}

func (h *Handler[M, C, S]) earlyScope(tok Token, now Time) *scopeImpl[C] {
	return &scopeImpl[C]{token: tok, now: now, handler: h}
}

func (h *Handler[M, C, S]) scope(tok Token, now Time) *scopeImpl[C] {
	return &scopeImpl[C]{token: tok, now: now, ctx: h.ctx, hasCtx: true, handler: h}
}

// installRoot reserves a fresh slot and installs whatever fn returns into
// it, used by the loop builder's AddMachineWith (spec §6's builder
// contract). Returning Response.Spawn from fn is a usage violation, exactly
// as it is from Machine.Create — a root machine is constructed, not spawned.
func (h *Handler[M, C, S]) installRoot(fn func(sc GenericScope) Response[M, S], early bool) error {
	tok, ok := h.slab.reserve()
	if !ok {
		return errSlabExhausted
	}
	now := h.clock.now()
	var sc GenericScope
	if early {
		sc = h.earlyScope(tok, now)
	} else {
		sc = h.scope(tok, now)
	}
	resp := fn(sc)
	d := decompose(resp)
	if d.hasSeed {
		usageViolation("root machine construction returned Spawn")
	}
	h.settle(tok, d, false, timerTicket{}, 0)
	return nil
}

func (h *Handler[M, C, S]) logError(tok Token, err error) {
	h.cfg.Logger.Log(LogEntry{Level: LogWarn, Message: "machine terminated with error", Token: tok, Err: err})
}

// settle applies a decomposed Response to the (already slab-reserved) slot
// tok: cancels/rearms the timer, installs the continuation machine, or frees
// the slot on termination. It applies the ticket-reuse-on-equal-deadline
// optimization described in spec §4.2; runSpawnChain applies the same rule
// to the parent's responses inside a spawn chain.
func (h *Handler[M, C, S]) settle(tok Token, d decomposed[M, S], hadDeadline bool, oldTicket timerTicket, oldDeadline Time) {
	if d.terminated {
		if hadDeadline {
			h.timers.Cancel(oldTicket)
		}
		h.slab.free(tok)
		if d.err != nil {
			h.logError(tok, d.err)
		}
		return
	}

	ticket := oldTicket
	keepDeadline := hadDeadline
	deadline := oldDeadline
	switch {
	case d.hasDeadline:
		if hadDeadline && oldDeadline == d.deadline {
			// Ticket reuse: identical deadline, skip the cancel+rearm pair.
		} else {
			if hadDeadline {
				h.timers.Cancel(oldTicket)
			}
			ticket = h.timers.Arm(tok, d.deadline)
		}
		keepDeadline = true
		deadline = d.deadline
	case d.clearDeadline:
		if hadDeadline {
			h.timers.Cancel(oldTicket)
		}
		keepDeadline = false
		ticket = timerTicket{}
		deadline = 0
	}

	h.slab.set(tok, d.machine, keepDeadline, ticket, deadline)
}

// dispatch takes ownership of the machine at tok, invokes fn on it, and
// settles the resulting Response. A missing/recycled token is silently
// ignored: it denotes a stale poller or timer event racing a prior
// termination, which is expected, not an error (spec §3).
func (h *Handler[M, C, S]) dispatch(tok Token, fn func(m M, sc Scope[C]) Response[M, S]) {
	m, ok, hadDeadline, ticket, deadline := h.slab.take(tok)
	if !ok {
		return
	}
	now := h.clock.now()
	sc := h.scope(tok, now)
	resp := fn(m, sc)
	d := decompose(resp)
	h.settle(tok, d, hadDeadline, ticket, deadline)
	if d.hasSeed {
		h.runSpawnChain(tok, d.seed, now)
	}
}

func (h *Handler[M, C, S]) dispatchTimeout(tok Token) {
	h.dispatch(tok, func(m M, sc Scope[C]) Response[M, S] { return m.Timeout(sc) })
}

func (h *Handler[M, C, S]) dispatchWakeup(tok Token) {
	h.dispatch(tok, func(m M, sc Scope[C]) Response[M, S] { return m.Wakeup(sc) })
}

func (h *Handler[M, C, S]) dispatchReady(tok Token, events IOEvents) {
	h.dispatch(tok, func(m M, sc Scope[C]) Response[M, S] { return m.Ready(events, sc) })
}

// runSpawnChain implements spec §4.4's spawn loop: synchronously construct
// the child, deliver spawned/spawn_error to the parent, and repeat if the
// parent's response itself carries another seed — all before any other
// token's event is processed (the fairness property described in §4.4).
//
// The parent is kept out of the slab (owned by a local variable) for the
// entire chain; nothing else can observe its slot mid-chain since dispatch
// is strictly serial. Every scope in the chain reports the now sampled by
// the dispatch that started it.
func (h *Handler[M, C, S]) runSpawnChain(parentTok Token, seed S, now Time) {
	parent, ok, hadDeadline, ticket, deadline := h.slab.take(parentTok)
	if !ok {
		return // parent vanished (shouldn't happen: dispatch just reinserted it)
	}

	for {
		var parentResp Response[M, S]

		childTok, reserved := h.slab.reserve()
		if !reserved {
			sc := h.scope(parentTok, now)
			parentResp = parent.SpawnError(NoSlabSpace(seed), sc)
		} else {
			var zero M
			earlySC := h.earlyScope(childTok, now)
			createResp := zero.Create(seed, earlySC)
			cd := decompose(createResp)
			if cd.hasSeed {
				usageViolation("Create returned Spawn")
			}
			if cd.terminated {
				h.slab.free(childTok)
				if cd.err == nil {
					// Create returned Done: the child declined construction
					// silently. Per spec §4.4 the parent is not notified at
					// all — no spawn_error, no spawned — it simply keeps
					// running with whatever settle already wrote back.
					h.slab.set(parentTok, parent, hadDeadline, ticket, deadline)
					return
				}
				sc := h.scope(parentTok, now)
				parentResp = parent.SpawnError(UserSpawnError[S](cd.err), sc)
				h.logError(childTok, cd.err)
			} else {
				var childTicket timerTicket
				if cd.hasDeadline {
					childTicket = h.timers.Arm(childTok, cd.deadline)
				}
				h.slab.set(childTok, cd.machine, cd.hasDeadline, childTicket, cd.deadline)
				sc := h.scope(parentTok, now)
				parentResp = parent.Spawned(childTok, sc)
			}
		}

		pd := decompose(parentResp)
		if pd.terminated {
			if hadDeadline {
				h.timers.Cancel(ticket)
			}
			h.slab.free(parentTok)
			if pd.err != nil {
				h.logError(parentTok, pd.err)
			}
			return
		}

		switch {
		case pd.hasDeadline:
			if !(hadDeadline && deadline == pd.deadline) {
				if hadDeadline {
					h.timers.Cancel(ticket)
				}
				ticket = h.timers.Arm(parentTok, pd.deadline)
			}
			hadDeadline = true
			deadline = pd.deadline
		case pd.clearDeadline:
			if hadDeadline {
				h.timers.Cancel(ticket)
			}
			hadDeadline = false
			ticket = timerTicket{}
		}
		parent = pd.machine

		if !pd.hasSeed {
			h.slab.set(parentTok, parent, hadDeadline, ticket, deadline)
			return
		}
		seed = pd.seed
	}
}

// run drives the dispatch loop until shutdown is requested or a fatal
// poller error occurs. ctx cancellation is an additional, external way to
// stop the loop — distinct from scope.ShutdownLoop(), which is the in-band
// mechanism machines use; both converge on the same shutdown path.
func (h *Handler[M, C, S]) run(ctx context.Context) error {
	if h.running {
		return ErrLoopAlreadyRunning
	}
	h.running = true
	defer func() { h.running = false }()

	var events []ioEvent
	for !h.shutdownRequested {
		select {
		case <-ctx.Done():
			h.shutdownRequested = true
			continue
		default:
		}

		timeoutMs := h.nextTimeout()
		events = events[:0]
		var err error
		events, err = h.poll.poll(timeoutMs, events)
		if err != nil {
			h.fatalErr = err
			h.cfg.Logger.Log(LogEntry{Level: LogError, Message: "fatal poller error", Err: err})
			_ = h.shutdownImpl()
			return err
		}

		for _, ev := range events {
			if ev.token == invalidToken {
				h.wake.drain()
				for _, tok := range h.notify.drain() {
					h.dispatchWakeup(tok)
				}
				continue
			}
			h.dispatchReady(ev.token, ev.events)
		}

		now := h.clock.now()
		for _, due := range h.timers.PopExpired(now) {
			h.dispatchTimeout(due.token)
		}
	}
	return h.shutdownImpl()
}

func (h *Handler[M, C, S]) nextTimeout() int {
	next, ok := h.timers.NextDeadline()
	if !ok {
		return -1
	}
	now := h.clock.now()
	if !next.After(now) {
		return 0
	}
	ms := next.Sub(now).Milliseconds()
	if ms <= 0 {
		return 0
	}
	const capMs = 1 << 30
	if ms > capMs {
		ms = capMs
	}
	return int(ms)
}

func (h *Handler[M, C, S]) shutdownImpl() error {
	h.notify.close()
	werr := h.wake.close()
	perr := h.poll.close()
	if werr != nil {
		return werr
	}
	return perr
}

var errSlabExhausted = errors.New("rotor: slab capacity exhausted while installing root machine")
