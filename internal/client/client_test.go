package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"redblue-bank/internal/bank"
	"redblue-bank/internal/client"
	"redblue-bank/internal/replica"
	"redblue-bank/internal/transport"
)

func newTestServer(t *testing.T) (*client.Client, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := replica.New(replica.Config{ID: 0, Peers: []replica.PeerLink{nil}}, bank.NewSized(10, 1000.0))
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	r := gin.New()
	transport.NewHandler(engine).Register(r)
	srv := httptest.NewServer(r)

	c := client.New(srv.URL, 0)
	return c, func() {
		cancel()
		srv.Close()
	}
}

func TestClientDepositAndCheckRoundTrip(t *testing.T) {
	c, done := newTestServer(t)
	defer done()

	ctx := context.Background()
	resp, err := c.Deposit(ctx, 1, 250)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if resp.Status != 0 || resp.Balance != 1250 {
		t.Fatalf("unexpected deposit response: %+v", resp)
	}

	resp, err = c.Check(ctx, 1)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.Balance != 1250 {
		t.Fatalf("Check balance = %v, want 1250", resp.Balance)
	}
}

func TestClientInvalidAccountSurfacesAsErrorStatus(t *testing.T) {
	c, done := newTestServer(t)
	defer done()

	resp, err := c.Check(context.Background(), 999)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.Status != -1 {
		t.Fatalf("expected a failure status for an invalid account, got %+v", resp)
	}
}
