// Package replica implements the RedBlue replica engine: request
// handling, shadow dispatch, and the single-owner main loop that
// applies remote shadows once their causal dependencies are satisfied
// and serializes red (non-commutative) operations through a rotating
// token.
//
// Each Engine is the sole owner of its account store, clock, and
// pending-work queues. All other goroutines (the HTTP transport, peer
// timers) only ever push onto one of its three mailboxes; they never
// touch engine state directly.
package replica

import (
	"context"
	"fmt"
	"log"
	"time"

	"redblue-bank/internal/bank"
	"redblue-bank/internal/rbclock"
	"redblue-bank/internal/shadow"
)

// TokenHold is the default duration a replica holds the token before
// passing it on. A var, not a const, so tests can shrink it instead of
// waiting out a production-sized hold.
var TokenHold = 1 * time.Second

const mailboxCapacity = 256

// Config is the static configuration an Engine is built from.
type Config struct {
	ID    int
	Peers []PeerLink // Peers[ID] must be nil; every other index is a live link
}

// Engine is a single RedBlue replica: one account store, one clock,
// one deferred-shadow queue, one deferred-red-request queue, and three
// ingress mailboxes.
type Engine struct {
	id    int
	peers []PeerLink

	bank *bank.Store
	now  rbclock.Clock
	maxR uint64

	hasToken bool

	opList  []shadow.Op
	redList []requestItem

	tokenInbox  chan uint64
	shadowInbox chan shadow.Op
	reqInbox    chan requestItem

	tokenTimer *time.Timer
}

// New constructs an Engine for a cluster of len(cfg.Peers) replicas.
// Only the bootstrap replica (index 0) starts holding the token.
func New(cfg Config, store *bank.Store) *Engine {
	k := len(cfg.Peers)
	e := &Engine{
		id:          cfg.ID,
		peers:       cfg.Peers,
		bank:        store,
		now:         rbclock.New(k),
		hasToken:    cfg.ID == 0,
		tokenInbox:  make(chan uint64, mailboxCapacity),
		shadowInbox: make(chan shadow.Op, mailboxCapacity),
		reqInbox:    make(chan requestItem, mailboxCapacity),
	}
	if e.hasToken {
		e.armTokenHoldTimer()
	}
	return e
}

// ID returns this replica's index in the cluster.
func (e *Engine) ID() int { return e.id }

// Request submits a client request and blocks until this replica has
// produced a response. Safe to call concurrently from many goroutines
// (e.g. one per inbound HTTP call).
func (e *Engine) Request(req Request) Response {
	item := requestItem{req: req, reply: make(chan Response, 1)}
	e.reqInbox <- item
	return <-item.reply
}

// AddShadowOp enqueues a remotely-received shadow for later causal
// application. Never rejects — callers only ever push onto the
// mailbox.
func (e *Engine) AddShadowOp(op shadow.Op) {
	e.shadowInbox <- op
}

// PassToken enqueues a token arrival carrying the previous holder's
// observed max_r.
func (e *Engine) PassToken(maxR uint64) {
	e.tokenInbox <- maxR
}

// Dump is a diagnostic-only snapshot of replica state. It is not part
// of the wire protocol and carries no causal meaning.
func (e *Engine) Dump() string {
	return fmt.Sprintf(
		"#%d now=%s max_r=%d has_token=%v pending_shadows=%d pending_reds=%d",
		e.id, e.now, e.maxR, e.hasToken, len(e.opList), len(e.redList),
	)
}

// Run drives the main loop until ctx is canceled: drain the three
// mailboxes in fixed order, apply any
// now-ready shadows to a fixed point, replay deferred reds if this
// replica just became primary, and block on mailbox activity only when
// a full pass makes no progress at all.
func (e *Engine) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		progress := e.drainTokenInbox()
		progress = e.drainShadowInbox() || progress
		progress = e.drainRequestInbox() || progress
		progress = e.applyReadyShadows() || progress
		progress = e.drainRedListIfPrimary() || progress

		if progress {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case v := <-e.tokenInbox:
			e.handleToken(v)
		case op := <-e.shadowInbox:
			e.opList = append(e.opList, op)
		case item := <-e.reqInbox:
			e.handleRequestItem(item)
		}
	}
}

// primary reports whether this replica currently holds the right to
// issue red (non-commutative) shadow operations: it holds the token
// AND has already applied every red op it had observed when the token
// arrived.
func (e *Engine) primary() bool {
	return e.hasToken && e.maxR == e.now.R
}

// ─── mailbox draining ──────────────────────────────────────────────────────

func (e *Engine) drainTokenInbox() bool {
	progress := false
	for {
		select {
		case v := <-e.tokenInbox:
			e.handleToken(v)
			progress = true
		default:
			return progress
		}
	}
}

func (e *Engine) drainShadowInbox() bool {
	progress := false
	for {
		select {
		case op := <-e.shadowInbox:
			e.opList = append(e.opList, op)
			progress = true
		default:
			return progress
		}
	}
}

func (e *Engine) drainRequestInbox() bool {
	progress := false
	for {
		select {
		case item := <-e.reqInbox:
			e.handleRequestItem(item)
			progress = true
		default:
			return progress
		}
	}
}

func (e *Engine) handleRequestItem(item requestItem) {
	if !e.doRequest(item) {
		e.redList = append(e.redList, item)
	}
}

// handleToken handles a value arriving on the token inbox. The
// timer-expiry message and a genuine incoming token message share one
// inbox and one value shape, deliberately: both are told apart only by
// has_token at the moment of consumption.
func (e *Engine) handleToken(peerMaxR uint64) {
	if e.hasToken {
		next := (e.id + 1) % len(e.peers)
		if next == e.id {
			// Single-replica cluster: nothing to rotate to, keep holding.
			e.armTokenHoldTimer()
			return
		}
		if link := e.peers[next]; link != nil {
			e.hasToken = false
			link.PassToken(e.maxR)
		}
		return
	}

	e.maxR = peerMaxR
	e.hasToken = true
	e.armTokenHoldTimer()
}

func (e *Engine) armTokenHoldTimer() {
	if e.tokenTimer != nil {
		e.tokenTimer.Stop()
	}
	e.tokenTimer = time.AfterFunc(TokenHold, func() {
		// The value carried here is never consulted: it is only read in
		// the !has_token branch of handleToken, which cannot be true for
		// a hold-expiry event (we are, by definition, still holding).
		e.tokenInbox <- 0
	})
}

// applyReadyShadows repeatedly scans op_list for ready shadows and
// applies them, stopping at a fixed point. A single pass may apply
// several ops; iteration order over op_list is the arrival order, so
// relative order within one pass is deterministic.
func (e *Engine) applyReadyShadows() bool {
	appliedAny := false
	for {
		appliedThisPass := false
		remaining := e.opList[:0]
		for _, op := range e.opList {
			if op.Ready(e.now) {
				e.applyAndTick(op)
				appliedThisPass = true
				appliedAny = true
			} else {
				remaining = append(remaining, op)
			}
		}
		e.opList = remaining
		if !appliedThisPass {
			return appliedAny
		}
	}
}

func (e *Engine) applyAndTick(op shadow.Op) {
	op.Apply(e.bank)
	e.now.Tick(op.AuthorID, op.Color == shadow.Red)
	if e.now.R > e.maxR {
		e.maxR = e.now.R
	}
}

// drainRedListIfPrimary replays deferred red requests once this
// replica becomes primary. Every replay must succeed; a rejection here
// is a protocol invariant violation.
func (e *Engine) drainRedListIfPrimary() bool {
	if !e.primary() || len(e.redList) == 0 {
		return false
	}

	pending := e.redList
	e.redList = nil
	for _, item := range pending {
		if !e.doRequest(item) {
			log.Panicf("replica %d: red request could not be accepted while primary: %+v", e.id, item.req)
		}
	}
	return true
}
