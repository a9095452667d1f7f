package rotor

// Compose2 and Compose3 implement spec §4.6's composition rule: two or more
// independent machine kinds are mounted onto a single Handler by embedding
// them in a tagged union. Exactly one variant is active at a time; each
// Machine method dispatches to whichever variant is active and relabels the
// Response's machine/seed components back under the union's own tags via
// [MapResponse].
//
// Each variant keeps spawning and continuing strictly within its own kind —
// a variant's Ready/Timeout/etc. only ever carries its own seed type
// forward, so it can spawn another instance of itself but never a sibling of
// the other variant. This mirrors the original rotor's Compose2 exactly
// (compose.rs maps a variant's Response through its own constructor, As/Bs,
// never the other one). A machine that legitimately needs to spawn a
// different-shaped child — an acceptor producing connections, say — isn't
// "composing" in this sense at all: it is a single machine kind whose one
// Seed type already covers everything it can create, written by hand as a
// tagged struct. Compose2/
// Compose3 exist for mounting otherwise-unrelated machine kinds side by side
// on one loop, sharing only dispatch plumbing.
//
// The original rotor expresses this as a declarative macro (rotor_compose!)
// parameterized over an arbitrary arity; Go generics cannot express
// arbitrary-arity sum types, so Compose2/Compose3 are provided concretely.
// Beyond three variants, hand-write the analogous type following this
// shape: an N-way tagged seed struct with N discriminated fields, an N-way
// tagged machine struct, and one dispatch method per Machine method that
// switches on the active tag and relabels through MapResponse. Nothing in
// the pattern is arity-specific — only the boilerplate grows.

// Compose2Seed is the seed tag for [Compose2]: exactly one of A or B is set.
type Compose2Seed[SA any, SB any] struct {
	a   SA
	b   SB
	isA bool
}

// SeedA tags a seed for the first variant of a Compose2.
func SeedA[SA any, SB any](seed SA) Compose2Seed[SA, SB] {
	return Compose2Seed[SA, SB]{a: seed, isA: true}
}

// SeedB tags a seed for the second variant of a Compose2.
func SeedB[SA any, SB any](seed SB) Compose2Seed[SA, SB] {
	return Compose2Seed[SA, SB]{b: seed}
}

// Compose2 is a tagged union of two sibling Machine kinds sharing one
// token. A and B must each implement Machine against the same Ctx, with
// their own seed types SA/SB.
type Compose2[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], Ctx any, SA any, SB any] struct {
	a   A
	b   B
	isA bool
}

// FromA wraps a variant-A machine value as the active branch of a Compose2.
func FromA[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], Ctx any, SA any, SB any](a A) Compose2[A, B, Ctx, SA, SB] {
	return Compose2[A, B, Ctx, SA, SB]{a: a, isA: true}
}

// FromB wraps a variant-B machine value as the active branch of a Compose2.
func FromB[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], Ctx any, SA any, SB any](b B) Compose2[A, B, Ctx, SA, SB] {
	return Compose2[A, B, Ctx, SA, SB]{b: b}
}

func (c Compose2[A, B, Ctx, SA, SB]) Create(seed Compose2Seed[SA, SB], scope EarlyScope) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if seed.isA {
		var zero A
		return mapCompose2FromA[A, B, Ctx, SA, SB](zero.Create(seed.a, scope))
	}
	var zero B
	return mapCompose2FromB[A, B, Ctx, SA, SB](zero.Create(seed.b, scope))
}

func (c Compose2[A, B, Ctx, SA, SB]) Ready(events IOEvents, scope Scope[Ctx]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if c.isA {
		return mapCompose2FromA[A, B, Ctx, SA, SB](c.a.Ready(events, scope))
	}
	return mapCompose2FromB[A, B, Ctx, SA, SB](c.b.Ready(events, scope))
}

func (c Compose2[A, B, Ctx, SA, SB]) Wakeup(scope Scope[Ctx]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if c.isA {
		return mapCompose2FromA[A, B, Ctx, SA, SB](c.a.Wakeup(scope))
	}
	return mapCompose2FromB[A, B, Ctx, SA, SB](c.b.Wakeup(scope))
}

func (c Compose2[A, B, Ctx, SA, SB]) Timeout(scope Scope[Ctx]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if c.isA {
		return mapCompose2FromA[A, B, Ctx, SA, SB](c.a.Timeout(scope))
	}
	return mapCompose2FromB[A, B, Ctx, SA, SB](c.b.Timeout(scope))
}

func (c Compose2[A, B, Ctx, SA, SB]) Spawned(childToken Token, scope Scope[Ctx]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if c.isA {
		return mapCompose2FromA[A, B, Ctx, SA, SB](c.a.Spawned(childToken, scope))
	}
	return mapCompose2FromB[A, B, Ctx, SA, SB](c.b.Spawned(childToken, scope))
}

func (c Compose2[A, B, Ctx, SA, SB]) SpawnError(err SpawnError[Compose2Seed[SA, SB]], scope Scope[Ctx]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	if c.isA {
		var inner SpawnError[SA]
		if err.IsSlabFull() {
			inner = NoSlabSpace(err.Seed.a)
		} else {
			inner = UserSpawnError[SA](err.Unwrap())
		}
		return mapCompose2FromA[A, B, Ctx, SA, SB](c.a.SpawnError(inner, scope))
	}
	var inner SpawnError[SB]
	if err.IsSlabFull() {
		inner = NoSlabSpace(err.Seed.b)
	} else {
		inner = UserSpawnError[SB](err.Unwrap())
	}
	return mapCompose2FromB[A, B, Ctx, SA, SB](c.b.SpawnError(inner, scope))
}

func mapCompose2FromA[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], Ctx any, SA any, SB any](r Response[A, SA]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	return MapResponse(r,
		func(a A) Compose2[A, B, Ctx, SA, SB] { return FromA[A, B, Ctx, SA, SB](a) },
		func(s SA) Compose2Seed[SA, SB] { return SeedA[SA, SB](s) },
	)
}

func mapCompose2FromB[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], Ctx any, SA any, SB any](r Response[B, SB]) Response[Compose2[A, B, Ctx, SA, SB], Compose2Seed[SA, SB]] {
	return MapResponse(r,
		func(b B) Compose2[A, B, Ctx, SA, SB] { return FromB[A, B, Ctx, SA, SB](b) },
		func(s SB) Compose2Seed[SA, SB] { return SeedB[SA, SB](s) },
	)
}

// Compose3Seed is the seed tag for [Compose3]: exactly one of A, B, or C is
// set, discriminated by tag.
type Compose3Seed[SA any, SB any, SC any] struct {
	a, b, c SA2[SA, SB, SC]
	tag     uint8
}

// SA2 is an internal carrier letting Compose3Seed hold three differently
// typed payloads without resorting to `any` (which would lose type safety
// on the read side); only the field matching tag is ever populated or read.
type SA2[SA any, SB any, SC any] struct {
	valA SA
	valB SB
	valC SC
}

const (
	compose3TagA uint8 = iota
	compose3TagB
	compose3TagC
)

// SeedA3 tags a seed for the first variant of a Compose3.
func SeedA3[SA any, SB any, SC any](seed SA) Compose3Seed[SA, SB, SC] {
	var s Compose3Seed[SA, SB, SC]
	s.a.valA = seed
	s.tag = compose3TagA
	return s
}

// SeedB3 tags a seed for the second variant of a Compose3.
func SeedB3[SA any, SB any, SC any](seed SB) Compose3Seed[SA, SB, SC] {
	var s Compose3Seed[SA, SB, SC]
	s.b.valB = seed
	s.tag = compose3TagB
	return s
}

// SeedC3 tags a seed for the third variant of a Compose3.
func SeedC3[SA any, SB any, SC any](seed SC) Compose3Seed[SA, SB, SC] {
	var s Compose3Seed[SA, SB, SC]
	s.c.valC = seed
	s.tag = compose3TagC
	return s
}

// Compose3 is a tagged union of three sibling Machine kinds sharing one
// token.
type Compose3[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any] struct {
	a   A
	b   B
	c   C
	tag uint8
}

func FromA3[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](a A) Compose3[A, B, C, Ctx, SA, SB, SC] {
	return Compose3[A, B, C, Ctx, SA, SB, SC]{a: a, tag: compose3TagA}
}

func FromB3[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](b B) Compose3[A, B, C, Ctx, SA, SB, SC] {
	return Compose3[A, B, C, Ctx, SA, SB, SC]{b: b, tag: compose3TagB}
}

func FromC3[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](c C) Compose3[A, B, C, Ctx, SA, SB, SC] {
	return Compose3[A, B, C, Ctx, SA, SB, SC]{c: c, tag: compose3TagC}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) Create(seed Compose3Seed[SA, SB, SC], scope EarlyScope) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch seed.tag {
	case compose3TagA:
		var zero A
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](zero.Create(seed.a.valA, scope))
	case compose3TagB:
		var zero B
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](zero.Create(seed.b.valB, scope))
	default:
		var zero C
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](zero.Create(seed.c.valC, scope))
	}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) Ready(events IOEvents, scope Scope[Ctx]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch x.tag {
	case compose3TagA:
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](x.a.Ready(events, scope))
	case compose3TagB:
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](x.b.Ready(events, scope))
	default:
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](x.c.Ready(events, scope))
	}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) Wakeup(scope Scope[Ctx]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch x.tag {
	case compose3TagA:
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](x.a.Wakeup(scope))
	case compose3TagB:
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](x.b.Wakeup(scope))
	default:
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](x.c.Wakeup(scope))
	}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) Timeout(scope Scope[Ctx]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch x.tag {
	case compose3TagA:
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](x.a.Timeout(scope))
	case compose3TagB:
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](x.b.Timeout(scope))
	default:
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](x.c.Timeout(scope))
	}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) Spawned(childToken Token, scope Scope[Ctx]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch x.tag {
	case compose3TagA:
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](x.a.Spawned(childToken, scope))
	case compose3TagB:
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](x.b.Spawned(childToken, scope))
	default:
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](x.c.Spawned(childToken, scope))
	}
}

func (x Compose3[A, B, C, Ctx, SA, SB, SC]) SpawnError(err SpawnError[Compose3Seed[SA, SB, SC]], scope Scope[Ctx]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	switch x.tag {
	case compose3TagA:
		var inner SpawnError[SA]
		if err.IsSlabFull() {
			inner = NoSlabSpace(err.Seed.a.valA)
		} else {
			inner = UserSpawnError[SA](err.Unwrap())
		}
		return mapCompose3FromA[A, B, C, Ctx, SA, SB, SC](x.a.SpawnError(inner, scope))
	case compose3TagB:
		var inner SpawnError[SB]
		if err.IsSlabFull() {
			inner = NoSlabSpace(err.Seed.b.valB)
		} else {
			inner = UserSpawnError[SB](err.Unwrap())
		}
		return mapCompose3FromB[A, B, C, Ctx, SA, SB, SC](x.b.SpawnError(inner, scope))
	default:
		var inner SpawnError[SC]
		if err.IsSlabFull() {
			inner = NoSlabSpace(err.Seed.c.valC)
		} else {
			inner = UserSpawnError[SC](err.Unwrap())
		}
		return mapCompose3FromC[A, B, C, Ctx, SA, SB, SC](x.c.SpawnError(inner, scope))
	}
}

func mapCompose3FromA[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](r Response[A, SA]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	return MapResponse(r,
		func(a A) Compose3[A, B, C, Ctx, SA, SB, SC] { return FromA3[A, B, C, Ctx, SA, SB, SC](a) },
		func(s SA) Compose3Seed[SA, SB, SC] { return SeedA3[SA, SB, SC](s) },
	)
}

func mapCompose3FromB[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](r Response[B, SB]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	return MapResponse(r,
		func(b B) Compose3[A, B, C, Ctx, SA, SB, SC] { return FromB3[A, B, C, Ctx, SA, SB, SC](b) },
		func(s SB) Compose3Seed[SA, SB, SC] { return SeedB3[SA, SB, SC](s) },
	)
}

func mapCompose3FromC[A Machine[A, Ctx, SA], B Machine[B, Ctx, SB], C Machine[C, Ctx, SC], Ctx any, SA any, SB any, SC any](r Response[C, SC]) Response[Compose3[A, B, C, Ctx, SA, SB, SC], Compose3Seed[SA, SB, SC]] {
	return MapResponse(r,
		func(c C) Compose3[A, B, C, Ctx, SA, SB, SC] { return FromC3[A, B, C, Ctx, SA, SB, SC](c) },
		func(s SC) Compose3Seed[SA, SB, SC] { return SeedC3[SA, SB, SC](s) },
	)
}
