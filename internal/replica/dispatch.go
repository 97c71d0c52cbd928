package replica

import (
	"redblue-bank/internal/bank"
	"redblue-bank/internal/shadow"
)

// doRequest classifies and handles one client request.
//
// Returns whether item was fully handled (responded to) during this
// call. The only case where it returns false is a WITHDRAW submitted
// while this replica is not primary: the caller defers item onto
// red_list and no reply is written yet.
func (e *Engine) doRequest(item requestItem) bool {
	req := item.req

	if !e.bank.Valid(req.AID) {
		item.reply <- Response{Status: -1, Balance: 0, Message: "Invalid Account Id"}
		return true
	}

	s := shadow.Op{
		AID:      req.AID,
		AuthorID: e.id,
		Depend:   e.now.Snapshot(),
		Amount:   0,
		Color:    shadow.Blue,
	}
	bal := e.bank.Balance(req.AID)

	var resp Response
	switch req.Cmd {
	case Deposit:
		s.Amount = req.Amount
		resp = Response{Status: 0, Balance: bal + req.Amount}

	case Interest:
		// Interest is computed from this replica's *local* view of the
		// balance at the moment of acceptance, not from any global
		// value: the interest earned depends on which replica saw which
		// deposits first. This is a property of the protocol, not a bug.
		delta := bal * bank.InterestRate
		s.Amount = delta
		resp = Response{Status: 0, Balance: bal + delta}

	case Check:
		resp = Response{Status: 0, Balance: bal}

	case Withdraw:
		if !e.primary() {
			return false
		}
		if bal >= req.Amount {
			s.Amount = -req.Amount
			s.Color = shadow.Red
			resp = Response{Status: 0, Balance: bal - req.Amount}
		} else {
			// Rejected withdraw: blue, zero-amount, never emitted as a
			// shadow.
			resp = Response{Status: -1, Balance: bal, Message: "Insufficient balance"}
		}

	default:
		item.reply <- Response{Status: -1, Balance: 0, Message: "Unknown command"}
		return true
	}

	item.reply <- resp
	e.dispatchShadow(s)
	return true
}

// dispatchShadow handles a locally-produced shadow: apply it locally,
// tick the clock, and fan it out to every peer. A zero-amount shadow
// (a pure read, or a rejected withdraw) is not part of causal history
// and is neither applied again nor transmitted.
func (e *Engine) dispatchShadow(s shadow.Op) {
	if s.Amount == 0 {
		return
	}

	s.Apply(e.bank)
	e.now.Tick(s.AuthorID, s.Color == shadow.Red)
	if e.now.R > e.maxR {
		e.maxR = e.now.R
	}

	for i, peer := range e.peers {
		if i == e.id || peer == nil {
			continue
		}
		peer.AddShadowOpAsync(s)
	}
}
