package shadow

import (
	"encoding/json"
	"testing"

	"redblue-bank/internal/bank"
	"redblue-bank/internal/rbclock"
)

func TestApplyAddsDelta(t *testing.T) {
	store := bank.NewSized(2, 100.0)
	op := Op{AID: 1, AuthorID: 0, Amount: -25, Color: Red}
	op.Apply(store)
	if got := store.Balance(1); got != 75.0 {
		t.Fatalf("Balance(1) = %v, want 75.0", got)
	}
}

func TestReadyDelegatesToDependClock(t *testing.T) {
	op := Op{Depend: rbclock.Clock{B: []uint64{1, 0}, R: 0}}
	now := rbclock.Clock{B: []uint64{0, 0}, R: 0}
	if op.Ready(now) {
		t.Fatal("expected not ready when now is behind depend")
	}
	now.B[0] = 1
	if !op.Ready(now) {
		t.Fatal("expected ready once now catches up to depend")
	}
}

func TestWireRoundTripPreservesColorAndDepend(t *testing.T) {
	original := Op{
		AID:      42,
		AuthorID: 2,
		Depend:   rbclock.Clock{B: []uint64{3, 1, 0}, R: 5},
		Amount:   -100,
		Color:    Red,
	}

	data, err := json.Marshal(original.ToWire())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := FromWire(w)

	if got.AID != original.AID || got.AuthorID != original.AuthorID ||
		got.Amount != original.Amount || got.Color != original.Color {
		t.Fatalf("round trip mismatch: %+v != %+v", got, original)
	}
	if got.Depend.R != original.Depend.R || len(got.Depend.B) != len(original.Depend.B) {
		t.Fatalf("depend clock mismatch: %+v != %+v", got.Depend, original.Depend)
	}
}

func TestColorWireValues(t *testing.T) {
	if Blue != 0 {
		t.Fatalf("Blue must be wire value 0, got %d", Blue)
	}
	if Red != 1 {
		t.Fatalf("Red must be wire value 1, got %d", Red)
	}
}
