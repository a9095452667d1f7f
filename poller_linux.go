//go:build linux

package rotor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// epollPoller implements poller using epoll, grounded on the teacher's
// poller_linux.go FastPoller. Unlike the teacher (which keys callbacks
// directly by fd because it has only one machine type, the Loop itself),
// rotor keys readiness by Token: many fds may belong to the same token (per
// spec §4.6 composition, "register disjoint I/O handles under the shared
// token"), and the Handler — not the poller — owns dispatch.
type epollPoller struct {
	epfd     int
	fdTokens map[int]Token
	eventBuf [256]unix.EpollEvent
}

func newPoller() (*epollPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd, fdTokens: make(map[int]Token)}, nil
}

func (p *epollPoller) register(fd int, tok Token, events IOEvents, mode TriggerMode) error {
	if _, ok := p.fdTokens[fd]; ok {
		return ErrFDAlreadyRegistered
	}
	ev := &unix.EpollEvent{Events: eventsToEpoll(events, mode), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return err
	}
	p.fdTokens[fd] = tok
	return nil
}

func (p *epollPoller) reregister(fd int, tok Token, events IOEvents, mode TriggerMode) error {
	if _, ok := p.fdTokens[fd]; !ok {
		return ErrFDNotRegistered
	}
	ev := &unix.EpollEvent{Events: eventsToEpoll(events, mode), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return err
	}
	p.fdTokens[fd] = tok
	return nil
}

func (p *epollPoller) deregister(fd int) error {
	if _, ok := p.fdTokens[fd]; !ok {
		return ErrFDNotRegistered
	}
	delete(p.fdTokens, fd)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) poll(timeoutMs int, out []ioEvent) ([]ioEvent, error) {
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return out, nil
		}
		return out, err
	}
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		tok, ok := p.fdTokens[fd]
		if !ok {
			continue
		}
		out = append(out, ioEvent{token: tok, events: epollToEvents(p.eventBuf[i].Events)})
	}
	return out, nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}

func eventsToEpoll(events IOEvents, mode TriggerMode) uint32 {
	var e uint32
	if events.Has(EventRead) {
		e |= unix.EPOLLIN
	}
	if events.Has(EventWrite) {
		e |= unix.EPOLLOUT
	}
	if mode == EdgeTriggered {
		e |= unix.EPOLLET
	}
	return e
}

func epollToEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 || e&unix.EPOLLRDHUP != 0 {
		events |= EventHangup
	}
	return events
}
