package replica

import (
	"context"
	"testing"
	"time"

	"redblue-bank/internal/bank"
	"redblue-bank/internal/shadow"
)

// asyncLink is a PeerLink that talks directly to another in-process
// Engine's public mailbox methods, off of its own goroutine, so that
// the integration scenarios below exercise genuinely concurrent
// mailbox draining instead of a synchronous call stack. It satisfies
// the same interface the real HTTP-backed peer would.
type asyncLink struct {
	target *Engine
}

func (l *asyncLink) PassToken(maxR uint64) {
	go l.target.PassToken(maxR)
}

func (l *asyncLink) AddShadowOpAsync(op shadow.Op) {
	go l.target.AddShadowOp(op)
}

func newCluster(t *testing.T, n int, accounts int) ([]*Engine, context.CancelFunc) {
	t.Helper()
	engines := make([]*Engine, n)
	cfgs := make([]Config, n)
	for i := 0; i < n; i++ {
		cfgs[i] = Config{ID: i, Peers: make([]PeerLink, n)}
	}
	for i := 0; i < n; i++ {
		engines[i] = New(cfgs[i], bank.NewSized(accounts, 1000.0))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			engines[i].peers[j] = &asyncLink{target: engines[j]}
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	for _, e := range engines {
		go e.Run(ctx)
	}
	return engines, cancel
}

func waitForBalance(t *testing.T, e *Engine, aid int, want float64, deadline time.Duration) {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		resp := e.Request(Request{Cmd: Check, AID: aid})
		if resp.Balance == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	resp := e.Request(Request{Cmd: Check, AID: aid})
	t.Fatalf("replica %d account %d balance = %v, want %v (after %s)", e.id, aid, resp.Balance, want, deadline)
}

func TestScenarioBlueOpsCommuteAcrossReplicas(t *testing.T) {
	engines, cancel := newCluster(t, 3, 10)
	defer cancel()

	r0 := engines[0].Request(Request{Cmd: Deposit, AID: 1, Amount: 100})
	r1 := engines[1].Request(Request{Cmd: Deposit, AID: 1, Amount: 50})
	if r0.Status != 0 || r1.Status != 0 {
		t.Fatalf("deposits should always succeed: %+v %+v", r0, r1)
	}

	for _, e := range engines {
		waitForBalance(t, e, 1, 1150, time.Second)
	}
}

func TestScenarioInterestReflectsLocalDepositsAtAcceptanceTime(t *testing.T) {
	engines, cancel := newCluster(t, 2, 10)
	defer cancel()

	engines[0].Request(Request{Cmd: Deposit, AID: 2, Amount: 1000})
	waitForBalance(t, engines[0], 2, 2000, time.Second)

	resp := engines[0].Request(Request{Cmd: Interest, AID: 2})
	if resp.Status != 0 || resp.Balance != 2000*(1+bank.InterestRate) {
		t.Fatalf("unexpected interest response: %+v", resp)
	}
	for _, e := range engines {
		waitForBalance(t, e, 2, 2000*(1+bank.InterestRate), time.Second)
	}
}

func TestScenarioRedOpsAreSerializedAcrossTheToken(t *testing.T) {
	old := TokenHold
	TokenHold = 10 * time.Millisecond
	defer func() { TokenHold = old }()

	engines, cancel := newCluster(t, 2, 10)
	defer cancel()

	first := engines[0].Request(Request{Cmd: Withdraw, AID: 3, Amount: 700})
	if first.Status != 0 || first.Balance != 300 {
		t.Fatalf("first withdraw should succeed: %+v", first)
	}
	waitForBalance(t, engines[1], 3, 300, time.Second)

	// The token must now have rotated to replica 1 at least once; a
	// second withdraw for more than the remaining balance must fail
	// rather than silently overdraw the account.
	deadline := time.Now().Add(2 * time.Second)
	var second Response
	for time.Now().Before(deadline) {
		second = engines[1].Request(Request{Cmd: Withdraw, AID: 3, Amount: 700})
		if second.Status == -1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if second.Status != -1 {
		t.Fatalf("second withdraw should have been rejected as insufficient balance: %+v", second)
	}
	waitForBalance(t, engines[0], 3, 300, time.Second)
}

func TestScenarioConcurrentConflictingWithdrawsAtOnePrimaryAreSerialized(t *testing.T) {
	engines, cancel := newCluster(t, 2, 10)
	defer cancel()

	results := make(chan Response, 2)
	go func() { results <- engines[0].Request(Request{Cmd: Withdraw, AID: 4, Amount: 800}) }()
	go func() { results <- engines[0].Request(Request{Cmd: Withdraw, AID: 4, Amount: 800}) }()

	r1 := <-results
	r2 := <-results
	successes := 0
	for _, r := range []Response{r1, r2} {
		if r.Status == 0 {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one of two conflicting withdraws should succeed, got %d (r1=%+v r2=%+v)", successes, r1, r2)
	}
	waitForBalance(t, engines[1], 4, 200, time.Second)
}

func TestScenarioInvalidAccountIsRejectedLocallyWithoutReplication(t *testing.T) {
	engines, cancel := newCluster(t, 2, 10)
	defer cancel()

	resp := engines[0].Request(Request{Cmd: Deposit, AID: 999, Amount: 10})
	if resp.Status != -1 || resp.Message != "Invalid Account Id" {
		t.Fatalf("unexpected response for invalid account: %+v", resp)
	}
}

func TestScenarioCheckIsReadOnlyAndNeverReplicated(t *testing.T) {
	engines, cancel := newCluster(t, 2, 10)
	defer cancel()

	engines[0].Request(Request{Cmd: Deposit, AID: 5, Amount: 300})
	waitForBalance(t, engines[1], 5, 1300, time.Second)

	for i := 0; i < 5; i++ {
		engines[0].Request(Request{Cmd: Check, AID: 5})
	}
	time.Sleep(50 * time.Millisecond)

	resp := engines[1].Request(Request{Cmd: Check, AID: 5})
	if resp.Balance != 1300 {
		t.Fatalf("CHECK must not perturb replicated state, got %v", resp.Balance)
	}
}
