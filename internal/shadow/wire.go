package shadow

import "redblue-bank/internal/rbclock"

// Wire is the over-the-wire shape of a shadow op: {aid, server_id,
// amount, color, depend}. Field name casing must match byte-for-byte
// so a heterogeneous-language replica can decode it.
type Wire struct {
	AID      int           `json:"aid"`
	ServerID int           `json:"server_id"`
	Amount   float64       `json:"amount"`
	Color    int           `json:"color"`
	Depend   rbclock.Clock `json:"depend"`
}

// ToWire converts op to its wire representation.
func (op Op) ToWire() Wire {
	return Wire{
		AID:      op.AID,
		ServerID: op.AuthorID,
		Amount:   op.Amount,
		Color:    int(op.Color),
		Depend:   op.Depend,
	}
}

// FromWire reconstructs an Op from its wire representation. A peer
// reconstructing a shadow this way gets a value structurally identical
// to the one the author applied locally.
func FromWire(w Wire) Op {
	color := Blue
	if w.Color != 0 {
		color = Red
	}
	return Op{
		AID:      w.AID,
		AuthorID: w.ServerID,
		Depend:   w.Depend,
		Amount:   w.Amount,
		Color:    color,
	}
}
