// Package peer is the outbound side of replica-to-replica traffic: an
// HTTP client that implements replica.PeerLink against another node's
// /replica/token and /replica/shadow endpoints.
//
// Both calls are fire-and-forget. A real deployment's replicas are not
// always reachable at the instant a token or shadow is ready to send;
// delivery here is best-effort and never retried, and callers never
// learn whether it succeeded. Each call is dispatched from its own
// goroutine after a fixed simulated link delay.
package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"redblue-bank/internal/shadow"
)

// Delay is the simulated link latency before a fire-and-forget call is
// actually sent.
const Delay = 200 * time.Millisecond

// Link is one replica's HTTP connection to one peer.
type Link struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Link to the peer listening at baseURL, e.g.
// "http://localhost:8081".
func New(baseURL string) *Link {
	return &Link{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type tokenBody struct {
	MaxR uint64 `json:"max_r"`
}

// PassToken implements replica.PeerLink. It returns immediately; the
// handoff is posted after Delay from its own goroutine.
func (l *Link) PassToken(maxR uint64) {
	go func() {
		time.Sleep(Delay)
		if err := l.post("/replica/token", tokenBody{MaxR: maxR}); err != nil {
			log.Printf("peer: PassToken to %s: %v", l.baseURL, err)
		}
	}()
}

// AddShadowOpAsync implements replica.PeerLink. It returns immediately;
// the shadow is posted after Delay from its own goroutine.
func (l *Link) AddShadowOpAsync(op shadow.Op) {
	go func() {
		time.Sleep(Delay)
		if err := l.post("/replica/shadow", op.ToWire()); err != nil {
			log.Printf("peer: AddShadowOp to %s: %v", l.baseURL, err)
		}
	}()
}

func (l *Link) post(path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
