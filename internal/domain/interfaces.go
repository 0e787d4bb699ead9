package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the availability sensor depends on them.

// Directory exposes the node's current view of known peers.
// The sensor reads it and never mutates it.
type Directory interface {
	// KnownPeers returns the peers this node currently knows about.
	KnownPeers() []Peer

	// Lonely reports whether the node is intentionally solitary.
	// A lonely node never escalates on an empty peer set.
	Lonely() bool
}

// Prober performs a single liveness probe against a peer.
// A nil error means the peer answered with an OK status;
// any other response or transport failure is a non-nil error.
type Prober interface {
	Probe(ctx context.Context, peer Peer) error
}

// RoundArchive persists measurement round outcomes.
// Archive failures are logged by callers, never fatal.
type RoundArchive interface {
	SaveRound(rec RoundRecord) error
}
