//go:build darwin

package rotor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// kqueuePoller implements poller using kqueue, grounded on the teacher's
// poller_darwin.go FastPoller, adapted the same way poller_linux.go adapts
// the epoll variant: readiness is keyed by Token, not fd, since dispatch
// ownership belongs to the Handler.
type kqueuePoller struct {
	kq       int
	fdTokens map[int]Token
	eventBuf [256]unix.Kevent_t
}

func newPoller() (*kqueuePoller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{kq: kq, fdTokens: make(map[int]Token)}, nil
}

func (p *kqueuePoller) changeList(fd int, events IOEvents, mode TriggerMode, register bool) []unix.Kevent_t {
	var changes []unix.Kevent_t
	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if mode == EdgeTriggered {
		flags |= unix.EV_CLEAR
	}
	if !register {
		flags = unix.EV_DELETE
	}
	if register && !events.Has(EventRead) {
		// explicitly skip adding a read filter
	} else {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  flags,
		})
	}
	if events.Has(EventWrite) || !register {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  flags,
		})
	}
	return changes
}

func (p *kqueuePoller) register(fd int, tok Token, events IOEvents, mode TriggerMode) error {
	if _, ok := p.fdTokens[fd]; ok {
		return ErrFDAlreadyRegistered
	}
	changes := p.changeList(fd, events, mode, true)
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return err
	}
	p.fdTokens[fd] = tok
	return nil
}

func (p *kqueuePoller) reregister(fd int, tok Token, events IOEvents, mode TriggerMode) error {
	if _, ok := p.fdTokens[fd]; !ok {
		return ErrFDNotRegistered
	}
	// Clear both filters then re-add only the requested ones; kqueue has no
	// single "modify interest set" call like epoll's EPOLL_CTL_MOD.
	_, _ = unix.Kevent(p.kq, []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}, nil, nil)
	changes := p.changeList(fd, events, mode, true)
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return err
	}
	p.fdTokens[fd] = tok
	return nil
}

func (p *kqueuePoller) deregister(fd int) error {
	if _, ok := p.fdTokens[fd]; !ok {
		return ErrFDNotRegistered
	}
	delete(p.fdTokens, fd)
	changes := p.changeList(fd, EventRead|EventWrite, LevelTriggered, false)
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) poll(timeoutMs int, out []ioEvent) ([]ioEvent, error) {
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * 1_000_000)
		ts = &t
	}
	n, err := unix.Kevent(p.kq, nil, p.eventBuf[:], ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return out, nil
		}
		return out, err
	}
	for i := 0; i < n; i++ {
		ev := p.eventBuf[i]
		fd := int(ev.Ident)
		tok, ok := p.fdTokens[fd]
		if !ok {
			continue
		}
		var events IOEvents
		switch ev.Filter {
		case unix.EVFILT_READ:
			events |= EventRead
		case unix.EVFILT_WRITE:
			events |= EventWrite
		}
		if ev.Flags&unix.EV_EOF != 0 {
			events |= EventHangup
		}
		if ev.Flags&unix.EV_ERROR != 0 {
			events |= EventError
		}
		out = append(out, ioEvent{token: tok, events: events})
	}
	return out, nil
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.kq)
}
