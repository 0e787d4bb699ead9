// Package directory maintains the node's view of known peers.
// The availability sensor reads it; peer churn flows in through the
// daemon (bootstrap config, API) and is persisted across restarts.
package directory

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/infra/metrics"
	"github.com/vigil-network/vigil/internal/protocol"
)

// Store persists peers across restarts. May be nil for ephemeral use.
type Store interface {
	UpsertPeer(p domain.Peer) error
	DeletePeer(endpoint string) error
	ListPeers() ([]domain.Peer, error)
}

// Directory is an in-memory peer registry keyed by endpoint.
type Directory struct {
	mu     sync.RWMutex
	peers  map[string]domain.Peer
	lonely bool
	store  Store
}

// New creates a directory. lonely marks the node intentionally
// solitary, suppressing isolation escalation.
func New(lonely bool, store Store) *Directory {
	return &Directory{
		peers:  make(map[string]domain.Peer),
		lonely: lonely,
		store:  store,
	}
}

// Load restores persisted peers from the store.
func (d *Directory) Load() error {
	if d.store == nil {
		return nil
	}
	peers, err := d.store.ListPeers()
	if err != nil {
		return fmt.Errorf("load peers: %w", err)
	}
	d.mu.Lock()
	for _, p := range peers {
		d.peers[p.Endpoint()] = p
	}
	n := len(d.peers)
	d.mu.Unlock()
	metrics.KnownPeers.Set(float64(n))
	return nil
}

// Bootstrap seeds the directory from configured node locators of the
// form [identity "@"] host [":" port].
func (d *Directory) Bootstrap(locators []string, defaultPort int) error {
	for _, raw := range locators {
		host, port, identity, err := protocol.ParseNodeURIWith(raw, defaultPort, protocol.IsChecksumAddress)
		if err != nil {
			return fmt.Errorf("bootstrap locator %q: %w", raw, err)
		}
		addr := protocol.NewAddress(host, port)
		d.Add(domain.Peer{
			Identity: identity,
			Host:     addr.Host,
			Port:     addr.Port,
			LastSeen: time.Now(),
			State:    domain.PeerAlive,
		})
	}
	return nil
}

// Add inserts or refreshes a peer.
func (d *Directory) Add(p domain.Peer) {
	d.mu.Lock()
	d.peers[p.Endpoint()] = p
	n := len(d.peers)
	d.mu.Unlock()

	metrics.KnownPeers.Set(float64(n))
	if d.store != nil {
		if err := d.store.UpsertPeer(p); err != nil {
			log.Printf("[directory] persist peer %s: %v", p.Endpoint(), err)
		}
	}
}

// Remove drops a peer by endpoint.
func (d *Directory) Remove(endpoint string) error {
	d.mu.Lock()
	_, ok := d.peers[endpoint]
	if ok {
		delete(d.peers, endpoint)
	}
	n := len(d.peers)
	d.mu.Unlock()

	if !ok {
		return domain.ErrPeerNotFound
	}
	metrics.KnownPeers.Set(float64(n))
	if d.store != nil {
		if err := d.store.DeletePeer(endpoint); err != nil {
			log.Printf("[directory] delete peer %s: %v", endpoint, err)
		}
	}
	return nil
}

// KnownPeers returns a snapshot of all known peers, ordered by endpoint.
func (d *Directory) KnownPeers() []domain.Peer {
	d.mu.RLock()
	peers := make([]domain.Peer, 0, len(d.peers))
	for _, p := range d.peers {
		peers = append(peers, p)
	}
	d.mu.RUnlock()

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Endpoint() < peers[j].Endpoint()
	})
	return peers
}

// Len returns the number of known peers.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.peers)
}

// Lonely reports whether the node is intentionally solitary.
func (d *Directory) Lonely() bool {
	return d.lonely
}
