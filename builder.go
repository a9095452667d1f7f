package rotor

import "context"

// LoopCreator is the pre-context phase of the two-phase builder contract
// described by spec §6: a slab and poller already exist, root machines may
// be installed via AddMachineWith, but no Context is available yet.
type LoopCreator[M Machine[M, C, S], C any, S any] struct {
	handler *Handler[M, C, S]
}

// NewLoop allocates the slab and poller for a new loop instance. No Context
// exists yet; use AddMachineWith to install bootstrap root machines before
// calling Instantiate.
func NewLoop[M Machine[M, C, S], C any, S any](opts ...LoopOption) (*LoopCreator[M, C, S], error) {
	cfg := resolveConfig(opts)
	h, err := newHandler[M, C, S](cfg)
	if err != nil {
		return nil, err
	}
	return &LoopCreator[M, C, S]{handler: h}, nil
}

// AddMachineWith installs a root machine built from fn, which receives only
// an EarlyScope — no Context access, since none exists at this phase.
// Returning Response.Spawn from fn panics, identically to Machine.Create.
func (lc *LoopCreator[M, C, S]) AddMachineWith(fn func(scope EarlyScope) Response[M, S]) error {
	return lc.handler.installRoot(func(sc GenericScope) Response[M, S] {
		return fn(sc.(EarlyScope))
	}, true)
}

// Instantiate binds ctx as the loop's single process-wide Context and
// returns a LoopInstance ready to accept further (Context-aware) root
// machines and then Run.
func (lc *LoopCreator[M, C, S]) Instantiate(ctx *C) *LoopInstance[M, C, S] {
	lc.handler.ctx = ctx
	return &LoopInstance[M, C, S]{handler: lc.handler}
}

// Run is a convenience combining Instantiate and LoopInstance.Run for the
// common case of no further root machines after the context is bound.
func (lc *LoopCreator[M, C, S]) Run(ctx context.Context, appCtx *C) error {
	return lc.Instantiate(appCtx).Run(ctx)
}

// LoopInstance is the post-context phase: further root machines may be
// installed with full Scope access (Context included) before Run enters the
// dispatch loop.
type LoopInstance[M Machine[M, C, S], C any, S any] struct {
	handler *Handler[M, C, S]
}

// AddMachineWith installs a root machine built from fn, which receives a
// full Scope, Context included.
func (li *LoopInstance[M, C, S]) AddMachineWith(fn func(scope Scope[C]) Response[M, S]) error {
	return li.handler.installRoot(func(sc GenericScope) Response[M, S] {
		return fn(sc.(Scope[C]))
	}, false)
}

// Run enters the dispatch loop. It returns when shutdown_loop has been
// requested and the current dispatch (including any in-flight spawn chain)
// has completed, when ctx is cancelled, or on a fatal poller error.
func (li *LoopInstance[M, C, S]) Run(ctx context.Context) error {
	return li.handler.run(ctx)
}
