package replica

import "redblue-bank/internal/shadow"

// PeerLink is a replica's outbound adapter to one other replica. Both
// methods are asynchronous and fire-and-forget: PassToken and
// AddShadowOpAsync return immediately; the underlying network calls
// may complete later, or fail silently.
//
// A peer link is a *client* of a remote replica, not a direct
// reference to its Engine — even an in-process test harness satisfies
// this interface over the same mailbox-based ingress the real HTTP
// transport uses.
type PeerLink interface {
	PassToken(maxR uint64)
	AddShadowOpAsync(op shadow.Op)
}
