package rotor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabReserveNeverHandsOutInvalidToken(t *testing.T) {
	s := newSlab[int](4)
	for i := 0; i < 4; i++ {
		tok, ok := s.reserve()
		require.True(t, ok)
		assert.NotEqual(t, invalidToken, tok)
	}
}

func TestSlabReserveFailsPastCapacity(t *testing.T) {
	s := newSlab[int](2)
	_, ok1 := s.reserve()
	_, ok2 := s.reserve()
	_, ok3 := s.reserve()
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
}

func TestSlabSetAndTakeRoundTrips(t *testing.T) {
	s := newSlab[string](4)
	tok, ok := s.reserve()
	require.True(t, ok)
	s.set(tok, "hello", false, timerTicket{}, 0)

	got, ok, hadDeadline, _, _ := s.take(tok)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
	assert.False(t, hadDeadline)
}

func TestSlabTakeOnUnoccupiedTokenIsSpurious(t *testing.T) {
	s := newSlab[string](4)
	_, ok, _, _, _ := s.take(Token(99))
	assert.False(t, ok)

	_, ok, _, _, _ = s.take(invalidToken)
	assert.False(t, ok)
}

func TestSlabFreeRecyclesIndex(t *testing.T) {
	s := newSlab[string](1)
	tok, ok := s.reserve()
	require.True(t, ok)
	s.set(tok, "x", false, timerTicket{}, 0)
	s.free(tok)
	assert.Equal(t, 0, s.len())

	tok2, ok := s.reserve()
	require.True(t, ok)
	assert.Equal(t, tok, tok2, "recycled slots reuse the same Token value")
}

func TestSlabFreeOnAlreadyFreeSlotIsNoop(t *testing.T) {
	s := newSlab[string](1)
	tok, _ := s.reserve()
	s.free(tok)
	assert.NotPanics(t, func() { s.free(tok) })
	assert.Equal(t, 0, s.len())
}

func TestSlabLenTracksOccupancy(t *testing.T) {
	s := newSlab[int](4)
	assert.Equal(t, 0, s.len())
	tok1, _ := s.reserve()
	tok2, _ := s.reserve()
	assert.Equal(t, 2, s.len())
	s.free(tok1)
	assert.Equal(t, 1, s.len())
	s.free(tok2)
	assert.Equal(t, 0, s.len())
}

func TestSlabTakeClearsMachineFromSlotToAvoidAliasing(t *testing.T) {
	s := newSlab[*int](2)
	tok, _ := s.reserve()
	v := 5
	s.set(tok, &v, false, timerTicket{}, 0)
	got, ok, _, _, _ := s.take(tok)
	require.True(t, ok)
	assert.Equal(t, &v, got)

	// the slot should now hold the zero value, not an aliasing copy.
	assert.Nil(t, s.cells[tok-1].machine)
	s.set(tok, got, false, timerTicket{}, 0)
	again, ok, _, _, _ := s.take(tok)
	require.True(t, ok)
	assert.Equal(t, &v, again)
}
