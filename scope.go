package rotor

// GenericScope is the capability set common to both [EarlyScope] and
// [Scope[C]] (spec §4.5): registration, notifier, shutdown, time, and token
// access. Deadlines are set through [Response.Deadline], not through a scope. Keeping it as its own interface lets machine constructors that
// don't need Context access stay generic over either flavor.
type GenericScope interface {
	// Register associates fd with the current token in the poller under the
	// given interest set and trigger mode.
	Register(fd int, interests IOEvents, mode TriggerMode) error
	// Reregister changes the interest set/mode for an fd already registered
	// under the current token.
	Reregister(fd int, interests IOEvents, mode TriggerMode) error
	// Deregister detaches fd from the poller. Must be called before
	// dropping a duplicated handle that is also registered elsewhere, to
	// avoid spurious events landing on a freed slot.
	Deregister(fd int) error
	// Notifier mints a cross-thread wakeup capability bound to the current
	// token.
	Notifier() Notifier
	// ShutdownLoop asks the loop to exit once the current dispatch (and any
	// in-flight spawn chain) returns.
	ShutdownLoop()
	// Now reports the time sampled once at the start of the current
	// dispatch.
	Now() Time
	// Token reports the current token, useful for logging and for minting
	// an out-of-band Notifier equivalent without going through Notifier().
	Token() Token
}

// EarlyScope is available only during bootstrap Create calls (spec §4.5):
// it grants every GenericScope capability except Context access, since no
// Context yet exists when the very first root machines are constructed.
type EarlyScope interface {
	GenericScope
}

// Scope is the capability handle passed to every post-construction Machine
// method. C is the shared process-wide context type; Context returns a
// pointer so a machine can mutate shared state in place.
type Scope[C any] interface {
	GenericScope
	// Context returns mutable access to the single process-wide value
	// shared by every machine on this loop.
	Context() *C
}

// scopeImpl is the concrete capability handle threaded through one dispatch.
// It is only ever used through the GenericScope/Scope/EarlyScope interfaces;
// its lifetime does not outlive the call that received it — holding onto a
// Scope past the method return is a usage violation the Handler cannot
// detect, consistent with spec §5's "suspension points" note that handler
// methods never suspend.
type scopeImpl[C any] struct {
	token    Token
	now      Time
	ctx      *C
	hasCtx   bool
	handler  scopeHost
}

// scopeHost is the subset of Handler that scopeImpl needs, kept as an
// interface so scope.go has no dependency on handler.go's concrete type.
type scopeHost interface {
	hostRegister(tok Token, fd int, interests IOEvents, mode TriggerMode) error
	hostReregister(tok Token, fd int, interests IOEvents, mode TriggerMode) error
	hostDeregister(tok Token, fd int) error
	hostNotifier(tok Token) Notifier
	hostShutdown()
}

func (s *scopeImpl[C]) Register(fd int, interests IOEvents, mode TriggerMode) error {
	return s.handler.hostRegister(s.token, fd, interests, mode)
}

func (s *scopeImpl[C]) Reregister(fd int, interests IOEvents, mode TriggerMode) error {
	return s.handler.hostReregister(s.token, fd, interests, mode)
}

func (s *scopeImpl[C]) Deregister(fd int) error {
	return s.handler.hostDeregister(s.token, fd)
}

func (s *scopeImpl[C]) Notifier() Notifier {
	return s.handler.hostNotifier(s.token)
}

func (s *scopeImpl[C]) ShutdownLoop() {
	s.handler.hostShutdown()
}

func (s *scopeImpl[C]) Now() Time { return s.now }

func (s *scopeImpl[C]) Token() Token { return s.token }

func (s *scopeImpl[C]) Context() *C {
	if !s.hasCtx {
		usageViolation("Context accessed through an EarlyScope")
	}
	return s.ctx
}
