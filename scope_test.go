package rotor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScopeHost struct {
	registered   []int
	reregistered []int
	deregistered []int
	shutdown     bool
	registerErr  error
}

func (h *fakeScopeHost) hostRegister(tok Token, fd int, interests IOEvents, mode TriggerMode) error {
	h.registered = append(h.registered, fd)
	return h.registerErr
}

func (h *fakeScopeHost) hostReregister(tok Token, fd int, interests IOEvents, mode TriggerMode) error {
	h.reregistered = append(h.reregistered, fd)
	return nil
}

func (h *fakeScopeHost) hostDeregister(tok Token, fd int) error {
	h.deregistered = append(h.deregistered, fd)
	return nil
}

func (h *fakeScopeHost) hostNotifier(tok Token) Notifier {
	return Notifier{token: tok, channel: newNotifyChannel(1, &fakeWakeSignal{})}
}

func (h *fakeScopeHost) hostShutdown() { h.shutdown = true }

func TestScopeRegisterDelegatesToHost(t *testing.T) {
	host := &fakeScopeHost{}
	sc := &scopeImpl[int]{token: Token(5), handler: host}
	require.NoError(t, sc.Register(9, EventRead, LevelTriggered))
	assert.Equal(t, []int{9}, host.registered)
}

func TestScopeTokenAndNow(t *testing.T) {
	host := &fakeScopeHost{}
	sc := &scopeImpl[int]{token: Token(3), now: Zero + 100, handler: host}
	assert.Equal(t, Token(3), sc.Token())
	assert.Equal(t, Zero+100, sc.Now())
}

func TestScopeShutdownLoopDelegates(t *testing.T) {
	host := &fakeScopeHost{}
	sc := &scopeImpl[int]{token: Token(1), handler: host}
	sc.ShutdownLoop()
	assert.True(t, host.shutdown)
}

func TestScopeContextPanicsWithoutHasCtx(t *testing.T) {
	host := &fakeScopeHost{}
	sc := &scopeImpl[int]{token: Token(1), handler: host}
	assert.Panics(t, func() { sc.Context() })
}

func TestScopeContextReturnsBoundValue(t *testing.T) {
	host := &fakeScopeHost{}
	ctx := 42
	sc := &scopeImpl[int]{token: Token(1), handler: host, ctx: &ctx, hasCtx: true}
	got := sc.Context()
	require.NotNil(t, got)
	assert.Equal(t, 42, *got)
}

func TestScopeNotifierUsesCurrentToken(t *testing.T) {
	host := &fakeScopeHost{}
	sc := &scopeImpl[int]{token: Token(7), handler: host}
	n := sc.Notifier()
	assert.Equal(t, Token(7), n.token)
}

func TestGenericScopeIsSatisfiedByScopeImpl(t *testing.T) {
	var _ GenericScope = (*scopeImpl[int])(nil)
	var _ EarlyScope = (*scopeImpl[int])(nil)
	var _ Scope[int] = (*scopeImpl[int])(nil)
}
