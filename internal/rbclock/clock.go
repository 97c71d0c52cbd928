// Package rbclock implements the RedBlue two-part vector clock: a
// per-replica blue-progress vector plus a single global red counter.
//
// Problem:
// In a RedBlue-consistent system, most operations (deposits, interest,
// reads) commute and can be applied at any replica in any order — we
// only need to track "has this replica seen everything the author had
// seen" (causality). A few operations (successful withdrawals) do NOT
// commute and must be applied in the same order everywhere.
//
// A plain vector clock captures causality. It can't, by itself, give
// you a single global order for the non-commutative operations. So we
// bolt a second counter, R, onto the vector: every replica that applies
// a red operation bumps R, and a red shadow's dependency snapshot
// carries the R value its author had seen. Because only the replica
// holding the rotating token may issue reds, R advances in exactly the
// order the token visited replicas — giving every red a total order
// "for free" out of what is otherwise a partial-order structure.
//
// Example:
//
//	3 replicas, clock starts at B=[0,0,0], R=0 everywhere.
//	Replica 0 accepts a deposit (blue): ticks to B=[1,0,0], R=0.
//	Replica 0 accepts a withdrawal while holding the token (red):
//	  ticks to B=[2,0,0], R=1. The shadow's depend is {B=[1,0,0], R=0}
//	  (the state *before* this op's own tick).
//	Replica 1 can apply that shadow once its own clock dominates
//	  {B=[1,0,0], R=0} componentwise — see Ready.
package rbclock

// Clock is the pair (B, R): B tracks per-replica blue progress, R is
// the single global red counter.
//
// The zero value is not valid; use New.
type Clock struct {
	B []uint64
	R uint64
}

// New returns a Clock for a cluster of k replicas, all counters zero.
func New(k int) Clock {
	return Clock{B: make([]uint64, k)}
}

// Ready reports whether dep may be applied against now: every entry of
// dep.B must be no greater than the matching entry of now.B, and dep.R
// must be no greater than now.R.
//
// A shadow whose dependency clock is Ready against the local clock has
// had all of its causal prerequisites already applied locally.
func (dep Clock) Ready(now Clock) bool {
	if len(dep.B) != len(now.B) {
		return false
	}
	for i, b := range dep.B {
		if b > now.B[i] {
			return false
		}
	}
	return dep.R <= now.R
}

// Tick advances the clock for a locally-applied shadow authored by
// author of the given color, and returns a deep-copied snapshot of the
// clock as it stood immediately before the tick.
//
// That pre-tick snapshot is what gets embedded as a shadow's Depend:
// the author's last observed state, excluding the op being generated.
func (c *Clock) Tick(author int, red bool) Clock {
	before := c.Snapshot()
	c.B[author]++
	if red {
		c.R++
	}
	return before
}

// Red returns the current value of the global red counter.
func (c Clock) Red() uint64 {
	return c.R
}

// Snapshot returns a value copy of c, safe to embed as a dependency
// that must not be affected by later ticks on the original.
func (c Clock) Snapshot() Clock {
	b := make([]uint64, len(c.B))
	copy(b, c.B)
	return Clock{B: b, R: c.R}
}

// Len returns the number of replicas this clock was built for.
func (c Clock) Len() int {
	return len(c.B)
}
