package rotor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWheelNextDeadlineEmpty(t *testing.T) {
	w := newTimerWheel()
	_, ok := w.NextDeadline()
	assert.False(t, ok)
}

func TestTimerWheelArmOrdersByDeadline(t *testing.T) {
	w := newTimerWheel()
	w.Arm(Token(1), Zero+30)
	w.Arm(Token(2), Zero+10)
	w.Arm(Token(3), Zero+20)

	next, ok := w.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, Zero+10, next)
}

func TestTimerWheelPopExpiredOnlyReturnsDueEntries(t *testing.T) {
	w := newTimerWheel()
	w.Arm(Token(1), Zero+10)
	w.Arm(Token(2), Zero+20)
	w.Arm(Token(3), Zero+30)

	due := w.PopExpired(Zero + 20)
	require.Len(t, due, 2)
	assert.Equal(t, Token(1), due[0].token)
	assert.Equal(t, Token(2), due[1].token)

	next, ok := w.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, Zero+30, next)
}

func TestTimerWheelCancelSkipsLazyDeletedEntry(t *testing.T) {
	w := newTimerWheel()
	ticket := w.Arm(Token(1), Zero+10)
	w.Arm(Token(2), Zero+20)

	ok := w.Cancel(ticket)
	assert.True(t, ok)

	next, ok := w.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, Zero+20, next, "cancelled entry must be skipped even though it sorts first")
}

func TestTimerWheelCancelTwiceReturnsFalseSecondTime(t *testing.T) {
	w := newTimerWheel()
	ticket := w.Arm(Token(1), Zero+10)
	assert.True(t, w.Cancel(ticket))
	assert.False(t, w.Cancel(ticket))
}

func TestTimerWheelCancelZeroTicketIsNoop(t *testing.T) {
	w := newTimerWheel()
	assert.False(t, w.Cancel(timerTicket{}))
}

func TestTimerWheelPopExpiredSkipsCancelledEntries(t *testing.T) {
	w := newTimerWheel()
	t1 := w.Arm(Token(1), Zero+10)
	w.Arm(Token(2), Zero+10)
	w.Cancel(t1)

	due := w.PopExpired(Zero + 10)
	require.Len(t, due, 1)
	assert.Equal(t, Token(2), due[0].token)
}

func TestTimerWheelLenCountsAliveTickets(t *testing.T) {
	w := newTimerWheel()
	w.Arm(Token(1), Zero+10)
	ticket2 := w.Arm(Token(2), Zero+20)
	assert.Equal(t, 2, w.Len())
	w.Cancel(ticket2)
	assert.Equal(t, 1, w.Len())
}
