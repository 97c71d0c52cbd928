// Package client provides a Go SDK for talking to one RedBlue bank
// replica over HTTP.
//
// Big idea:
//
// Instead of writing raw HTTP requests everywhere,
// we wrap them inside a clean Go API.
//
// So instead of:
//
//	http.NewRequest(...)
//	json.Marshal(...)
//
// Users can simply call:
//
//	client.Deposit(ctx, 3, 50)
//	client.Check(ctx, 3)
//
// This is called a "client library" or "SDK".
//
// It hides:
//   - HTTP details
//   - JSON encoding/decoding
//   - Error handling
//
// And exposes a clean Go interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"redblue-bank/internal/replica"
)

// Client represents a connection to ONE bank replica.
//
// Important:
//
// This client talks to a single replica.
// That replica is responsible for:
//   - Classifying the operation blue or red
//   - Fanning shadow ops out to its peers
//
// So the client does NOT implement any consistency logic.
// It just talks to one replica.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client.
//
// baseURL example:
//
//	"http://localhost:8080"
//
// timeout protects us from hanging forever.
// In distributed systems:
//
//	NEVER call network without timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Deposit credits aid with amount. Always succeeds for a valid account.
func (c *Client) Deposit(ctx context.Context, aid int, amount float64) (*replica.Response, error) {
	return c.do(ctx, replica.Request{Cmd: replica.Deposit, AID: aid, Amount: amount})
}

// Withdraw debits aid by amount. May be rejected for insufficient
// balance; the replica may also take longer to answer than a blue
// operation while it waits to become primary.
func (c *Client) Withdraw(ctx context.Context, aid int, amount float64) (*replica.Response, error) {
	return c.do(ctx, replica.Request{Cmd: replica.Withdraw, AID: aid, Amount: amount})
}

// Interest applies the configured interest rate to aid's balance as
// observed by whichever replica receives the call.
func (c *Client) Interest(ctx context.Context, aid int) (*replica.Response, error) {
	return c.do(ctx, replica.Request{Cmd: replica.Interest, AID: aid})
}

// Check reads aid's balance without mutating any state.
func (c *Client) Check(ctx context.Context, aid int) (*replica.Response, error) {
	return c.do(ctx, replica.Request{Cmd: replica.Check, AID: aid})
}

// Dump fetches the replica's diagnostic state: its clock, token
// possession, and pending-queue depths. Unlike Deposit/Withdraw/
// Interest/Check, this does not round-trip a replica.Response — the
// dump format is a free-form string with no causal meaning, so callers
// get it back exactly as the replica rendered it.
func (c *Client) Dump(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/replica/dump", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bank client: dump request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus("dump", resp); err != nil {
		return "", err
	}

	var body struct {
		Dump string `json:"dump"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("bank client: decoding dump response: %w", err)
	}
	return body.Dump, nil
}

// do sends req to POST /replica/request and decodes the response.
//
// Flow:
//
//  1. Create JSON body
//  2. Build HTTP POST request
//  3. Send request
//  4. Check status
//  5. Decode response
//
// The consistency logic happens inside the server.
// This client only performs the HTTP call.
func (c *Client) do(ctx context.Context, req replica.Request) (*replica.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/replica/request", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bank client: %s request for account %d: %w", req.Cmd, req.AID, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(string(req.Cmd), resp); err != nil {
		return nil, err
	}

	var result replica.Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("bank client: decoding %s response for account %d: %w", req.Cmd, req.AID, err)
	}
	return &result, nil
}

// ─── Errors ───────────────────────────────────────────────────────────────────

// APIError carries the replica operation that failed, the HTTP status,
// and the error message from the server. Op is the Cmd ("DEPOSIT",
// "CHECK", ...) or "dump" for the diagnostic endpoint, so a caller
// juggling several concurrent operations against the same replica can
// tell which one actually failed.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bank client: %s: HTTP %d: %s", e.Op, e.Status, e.Message)
}

// checkStatus converts an HTTP error response from a replica into a Go
// error tagged with which operation produced it.
//
// If status is 2xx → success.
// Otherwise:
//
//  1. Read response body
//  2. Try parsing {"error": "..."} JSON
//  3. Return APIError
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{Op: op, Status: resp.StatusCode, Message: msg}
}
