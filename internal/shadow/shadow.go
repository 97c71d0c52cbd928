// Package shadow implements the shadow operation: the replicated,
// commutative record of a mutation applied to the account store.
//
// A shadow is created on its author replica, applied there immediately,
// fanned out to every peer, and applied again on each peer once its
// dependency clock is Ready (see rbclock.Clock.Ready). It is then
// discarded — shadows are not retained once applied.
package shadow

import (
	"redblue-bank/internal/bank"
	"redblue-bank/internal/rbclock"
)

// Color classifies an operation as commutative (Blue) or
// totally-ordered (Red). The numeric values are part of the wire
// contract: 0 = Blue, 1 = Red. Do not renumber — a heterogeneous-
// language peer depends on these exact values.
type Color int

const (
	Blue Color = 0
	Red  Color = 1
)

func (c Color) String() string {
	if c == Red {
		return "RED"
	}
	return "BLUE"
}

// Op is the immutable shadow operation record.
//
// Depend is the authoring replica's clock snapshot taken immediately
// before this op's own tick — i.e. the author's last observed state,
// excluding the op being generated. Storing anything else (in
// particular, a live pointer that keeps ticking) silently breaks the
// Ready check on every peer.
type Op struct {
	AID      int
	AuthorID int
	Depend   rbclock.Clock
	Amount   float64
	Color    Color
}

// Apply adds the op's delta to its target account in store.
//
// A zero-amount blue op (a pure read, or a withdraw the primary
// rejected for insufficient balance) is never dispatched in the first
// place — Apply is
// only ever called for ops that made it past dispatch, so it does not
// special-case Amount == 0.
func (op Op) Apply(store *bank.Store) {
	store.Apply(op.AID, op.Amount)
}

// Ready reports whether op may be applied against the replica clock
// now — i.e. whether every causal prerequisite of op has already been
// applied locally.
func (op Op) Ready(now rbclock.Clock) bool {
	return op.Depend.Ready(now)
}
