package transports

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-catrate"
)

// ListenTCP creates a non-blocking, listening IPv4 TCP socket bound to
// addr:port, suitable for registering directly with a poller — raw fds all
// the way down, matching the original rotor's mio-socket orientation rather
// than layering on top of net.Listener (whose own internal runtime poller
// would otherwise fight with this one for the same fd).
func ListenTCP(addr [4]byte, port int, backlog int) (fd int, err error) {
	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	sa := &unix.SockaddrInet4{Addr: addr, Port: port}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if backlog <= 0 {
		backlog = 128
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// ErrWouldBlock signals that Accept has drained every pending connection;
// the caller should stop looping until the next readiness event.
var ErrWouldBlock = errors.New("transports: accept would block")

// Accept accepts one pending connection on listenFD, returning a
// non-blocking, close-on-exec client fd and its peer address. Returns
// ErrWouldBlock once no connection is immediately available — callers loop
// on Accept until they see it, per the edge-triggered accept idiom.
func Accept(listenFD int) (fd int, peer unix.Sockaddr, err error) {
	fd, peer, err = unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return -1, nil, ErrWouldBlock
		}
		if errors.Is(err, unix.EINTR) {
			return Accept(listenFD)
		}
		return -1, nil, err
	}
	return fd, peer, nil
}

// RemoteKey extracts a rate-limiter category (the peer's IPv4 address,
// ignoring port) from a Sockaddr, or nil if addr isn't an AF_INET peer.
func RemoteKey(addr unix.Sockaddr) any {
	if sa, ok := addr.(*unix.SockaddrInet4); ok {
		return sa.Addr
	}
	return nil
}

// AcceptGovernor is an optional, per-remote-address accept-rate limiter
// built on github.com/joeycumines/go-catrate. This lives at the machine
// level deliberately: the framework core has no notion of backpressure
// (spec §5 carries no flow-control primitive), so throttling accepts is a
// choice an Acceptor machine opts into, not something the Handler imposes.
type AcceptGovernor struct {
	limiter *catrate.Limiter
}

// NewAcceptGovernor builds a governor from a set of (window, max-events)
// pairs, e.g. {time.Second: 10, time.Minute: 100} to cap both bursts and
// sustained rate per remote address.
func NewAcceptGovernor(rates map[time.Duration]int) *AcceptGovernor {
	return &AcceptGovernor{limiter: catrate.NewLimiter(rates)}
}

// Allow reports whether another accept from this remote address is
// currently permitted, and the time at which it next will be if not.
func (g *AcceptGovernor) Allow(addr unix.Sockaddr) (time.Time, bool) {
	if g == nil {
		return time.Time{}, true
	}
	return g.limiter.Allow(RemoteKey(addr))
}
