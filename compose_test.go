package rotor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type composeCtx struct{}

type seedA struct{ n int }
type seedB struct{ s string }

type machineA struct {
	n      int
	spawn  bool
	errOut error
}

func (m machineA) Create(seed seedA, scope EarlyScope) Response[machineA, seedA] {
	return Ok[machineA, seedA](machineA{n: seed.n})
}

func (m machineA) Ready(events IOEvents, scope Scope[composeCtx]) Response[machineA, seedA] {
	if m.spawn {
		return Spawn[machineA, seedA](m, seedA{n: m.n + 1})
	}
	if m.errOut != nil {
		return Err[machineA, seedA](m.errOut)
	}
	return Ok[machineA, seedA](m)
}

func (m machineA) Wakeup(scope Scope[composeCtx]) Response[machineA, seedA] { return Ok[machineA, seedA](m) }
func (m machineA) Timeout(scope Scope[composeCtx]) Response[machineA, seedA] { return Ok[machineA, seedA](m) }
func (m machineA) Spawned(childToken Token, scope Scope[composeCtx]) Response[machineA, seedA] {
	return Ok[machineA, seedA](m)
}
func (m machineA) SpawnError(err SpawnError[seedA], scope Scope[composeCtx]) Response[machineA, seedA] {
	return Ok[machineA, seedA](m)
}

type machineB struct{ s string }

func (m machineB) Create(seed seedB, scope EarlyScope) Response[machineB, seedB] {
	return Ok[machineB, seedB](machineB{s: seed.s})
}
func (m machineB) Ready(events IOEvents, scope Scope[composeCtx]) Response[machineB, seedB] {
	return Ok[machineB, seedB](m)
}
func (m machineB) Wakeup(scope Scope[composeCtx]) Response[machineB, seedB] { return Ok[machineB, seedB](m) }
func (m machineB) Timeout(scope Scope[composeCtx]) Response[machineB, seedB] { return Ok[machineB, seedB](m) }
func (m machineB) Spawned(childToken Token, scope Scope[composeCtx]) Response[machineB, seedB] {
	return Ok[machineB, seedB](m)
}
func (m machineB) SpawnError(err SpawnError[seedB], scope Scope[composeCtx]) Response[machineB, seedB] {
	return Ok[machineB, seedB](m)
}

type composed = Compose2[machineA, machineB, composeCtx, seedA, seedB]
type composedSeed = Compose2Seed[seedA, seedB]

func testScope() Scope[composeCtx] {
	host := &fakeScopeHost{}
	ctx := composeCtx{}
	return &scopeImpl[composeCtx]{token: Token(1), handler: host, ctx: &ctx, hasCtx: true}
}

func TestCompose2CreateDispatchesOnSeedTag(t *testing.T) {
	r := composed{}.Create(SeedA[seedA, seedB](seedA{n: 3}), testScope().(EarlyScope))
	d := decompose(r)
	require.True(t, d.hasMachine)
	assert.True(t, d.machine.isA)
	assert.Equal(t, 3, d.machine.a.n)
}

func TestCompose2CreateBDispatchesToVariantB(t *testing.T) {
	r := composed{}.Create(SeedB[seedA, seedB](seedB{s: "hi"}), testScope().(EarlyScope))
	d := decompose(r)
	assert.False(t, d.machine.isA)
	assert.Equal(t, "hi", d.machine.b.s)
}

func TestCompose2ReadyDispatchesToActiveVariant(t *testing.T) {
	c := FromA[machineA, machineB, composeCtx, seedA, seedB](machineA{n: 1})
	r := c.Ready(EventRead, testScope())
	d := decompose(r)
	assert.True(t, d.machine.isA)
	assert.Equal(t, 1, d.machine.a.n)
}

func TestCompose2SpawnStaysWithinOwnVariant(t *testing.T) {
	c := FromA[machineA, machineB, composeCtx, seedA, seedB](machineA{n: 1, spawn: true})
	r := c.Ready(EventRead, testScope())
	d := decompose(r)
	require.True(t, d.hasSeed)
	assert.True(t, d.seed.isA, "a variant spawning only ever tags its own kind")
	assert.Equal(t, 2, d.seed.a.n)
}

func TestCompose2ErrorPassesThroughFromActiveVariant(t *testing.T) {
	boom := errors.New("boom")
	c := FromA[machineA, machineB, composeCtx, seedA, seedB](machineA{n: 1, errOut: boom})
	r := c.Ready(EventRead, testScope())
	d := decompose(r)
	assert.True(t, d.terminated)
	assert.Equal(t, boom, d.err)
}

func TestCompose2SpawnErrorTranslatesSlabFullSeed(t *testing.T) {
	c := FromA[machineA, machineB, composeCtx, seedA, seedB](machineA{n: 1})
	unionErr := NoSlabSpace(SeedA[seedA, seedB](seedA{n: 9}))
	r := c.SpawnError(unionErr, testScope())
	d := decompose(r)
	assert.True(t, d.machine.isA)
}

type seedC struct{ f float64 }

type machineC struct{ f float64 }

func (m machineC) Create(seed seedC, scope EarlyScope) Response[machineC, seedC] {
	return Ok[machineC, seedC](machineC{f: seed.f})
}
func (m machineC) Ready(events IOEvents, scope Scope[composeCtx]) Response[machineC, seedC] {
	return Ok[machineC, seedC](m)
}
func (m machineC) Wakeup(scope Scope[composeCtx]) Response[machineC, seedC] { return Ok[machineC, seedC](m) }
func (m machineC) Timeout(scope Scope[composeCtx]) Response[machineC, seedC] { return Ok[machineC, seedC](m) }
func (m machineC) Spawned(childToken Token, scope Scope[composeCtx]) Response[machineC, seedC] {
	return Ok[machineC, seedC](m)
}
func (m machineC) SpawnError(err SpawnError[seedC], scope Scope[composeCtx]) Response[machineC, seedC] {
	return Ok[machineC, seedC](m)
}

type composed3 = Compose3[machineA, machineB, machineC, composeCtx, seedA, seedB, seedC]
type composed3Seed = Compose3Seed[seedA, seedB, seedC]

func TestCompose3CreateDispatchesOnTag(t *testing.T) {
	r := composed3{}.Create(SeedC3[seedA, seedB, seedC](seedC{f: 1.5}), testScope().(EarlyScope))
	d := decompose(r)
	require.Equal(t, compose3TagC, d.machine.tag)
	assert.Equal(t, 1.5, d.machine.c.f)
}

func TestCompose3ReadyDispatchesToActiveVariant(t *testing.T) {
	c := FromB3[machineA, machineB, machineC, composeCtx, seedA, seedB, seedC](machineB{s: "x"})
	r := c.Ready(EventRead, testScope())
	d := decompose(r)
	assert.Equal(t, compose3TagB, d.machine.tag)
	assert.Equal(t, "x", d.machine.b.s)
}
