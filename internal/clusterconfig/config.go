// Package clusterconfig describes the static cluster a replica node is
// launched with: a fixed, fully-replicated set of peers known at
// startup. There is no join/leave and no consistent-hash ring for key
// partitioning, since every replica holds every account — there is
// nothing here to route by key, only a list of addresses to dial.
package clusterconfig

import "fmt"

// Node is one cluster member as given on the command line.
type Node struct {
	ID      int    `json:"id"`
	Address string `json:"address"` // host:port
}

// Config is the static, whole-cluster view every replica is started
// with: an index plus every peer address in a fixed order.
type Config struct {
	SelfID int
	Nodes  []Node
}

// New builds a Config from addrs, the ordered list of every replica's
// address including the caller's own, and selfID, the caller's index
// into that list.
func New(selfID int, addrs []string) (Config, error) {
	if selfID < 0 || selfID >= len(addrs) {
		return Config{}, fmt.Errorf("self id %d out of range for %d addresses", selfID, len(addrs))
	}
	nodes := make([]Node, len(addrs))
	for i, a := range addrs {
		nodes[i] = Node{ID: i, Address: a}
	}
	return Config{SelfID: selfID, Nodes: nodes}, nil
}

// Self returns this replica's own node entry.
func (c Config) Self() Node { return c.Nodes[c.SelfID] }

// Peers returns every node other than Self, in cluster order.
func (c Config) Peers() []Node {
	out := make([]Node, 0, len(c.Nodes)-1)
	for _, n := range c.Nodes {
		if n.ID != c.SelfID {
			out = append(out, n)
		}
	}
	return out
}

// Size returns the total number of replicas in the cluster.
func (c Config) Size() int { return len(c.Nodes) }
