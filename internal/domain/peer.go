// Package domain holds the core peer types.
// A Peer is a remote node this node is aware of and may probe for liveness.
package domain

import (
	"fmt"
	"time"
)

// PeerState tracks membership state as seen by the local node.
type PeerState string

const (
	PeerAlive   PeerState = "ALIVE"
	PeerSuspect PeerState = "SUSPECT"
	PeerDead    PeerState = "DEAD"
)

// Peer represents a known node in the Vigil network.
// Identity is empty for anonymous (federated) peers.
type Peer struct {
	Identity string    `json:"identity,omitempty"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	LastSeen time.Time `json:"last_seen"`
	State    PeerState `json:"state"`
}

// Endpoint returns the peer's host:port locator.
func (p *Peer) Endpoint() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// IsReachable returns true if the peer is alive (not dead or suspect).
func (p *Peer) IsReachable() bool {
	return p.State == PeerAlive
}

// IsAnonymous returns true if the peer carries no checksum identity.
func (p *Peer) IsAnonymous() bool {
	return p.Identity == ""
}

// RoundRecord is the archived outcome of one availability measurement round.
type RoundRecord struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Failed bool      `json:"failed"`
	Score  float64   `json:"score"`
}
