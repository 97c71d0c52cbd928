// Package bank implements the account store: a fixed-size vector of
// account balances, indexed by account id.
//
// This is pure in-memory data. It has no concurrency control of its
// own — a replica's account store is touched by exactly one owner (the
// replica's main loop goroutine), so no locks are needed here.
// Concurrent callers (the HTTP handlers) never reach into the store
// directly; they push onto the replica's mailboxes instead.
//
// Durable persistence (WAL, snapshots) is intentionally not
// implemented here — see DESIGN.md for the reasoning.
package bank

import "fmt"

// Default account space and balance seed.
const (
	NumAccounts    = 10_000
	InitialBalance = 1000.0
	InterestRate   = 0.04
)

// Store is a fixed-size array of account balances.
type Store struct {
	balances []float64
}

// New returns a Store of NumAccounts accounts, each seeded with
// InitialBalance.
func New() *Store {
	return NewSized(NumAccounts, InitialBalance)
}

// NewSized returns a Store of n accounts, each seeded with initial.
// Exposed mainly so tests can use small account spaces.
func NewSized(n int, initial float64) *Store {
	balances := make([]float64, n)
	for i := range balances {
		balances[i] = initial
	}
	return &Store{balances: balances}
}

// Valid reports whether aid is a valid account id for this store.
func (s *Store) Valid(aid int) bool {
	return aid >= 0 && aid < len(s.balances)
}

// Balance returns the current balance of aid.
//
// Callers must check Valid first; Balance panics on an out-of-range
// id since the replica engine always validates before touching the
// store.
func (s *Store) Balance(aid int) float64 {
	return s.balances[aid]
}

// Apply adds delta to the balance of aid.
//
// A blue apply may drive the balance negative — the
// store does not guard against this; only the replica's primary-side
// WITHDRAW check guards reds at generation time, and that guard can
// still be defeated by concurrent blue ops applied elsewhere. This is
// accepted protocol behavior, not a bug.
func (s *Store) Apply(aid int, delta float64) {
	if !s.Valid(aid) {
		panic(fmt.Sprintf("bank: invalid account id %d applied", aid))
	}
	s.balances[aid] += delta
}

// Len returns the number of accounts in the store.
func (s *Store) Len() int {
	return len(s.balances)
}
