package rbclock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wire is the over-the-wire shape of a Clock (lowercase "b"/"r" field
// casing) so that heterogeneous-language replicas can interoperate.
type Wire struct {
	B []uint64 `json:"b"`
	R uint64   `json:"r"`
}

// MarshalJSON implements json.Marshaler using the Wire field casing.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(Wire{B: c.B, R: c.R})
}

// UnmarshalJSON implements json.Unmarshaler using the Wire field casing.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.B = w.B
	c.R = w.R
	return nil
}

// String renders the clock as "[b0 b1 ... | r]", for dump() and log
// lines only — never the wire protocol.
func (c Clock) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, b := range c.B {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", b)
	}
	sb.WriteString(" | ")
	fmt.Fprintf(&sb, "%d]", c.R)
	return sb.String()
}
