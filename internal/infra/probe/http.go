// Package probe implements the liveness probe against a peer's REST
// endpoint. Success is exactly an OK status on GET /ping; any other
// response or transport failure counts as a failed probe.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/protocol"
)

// HTTPProber probes peers over HTTPS.
type HTTPProber struct {
	client *http.Client
}

// NewHTTP creates a prober with a per-probe timeout. Peers in the
// fleet serve self-signed certificates, so verification is optional.
func NewHTTP(timeout time.Duration, allowSelfSigned bool) *HTTPProber {
	transport := &http.Transport{}
	if allowSelfSigned {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &HTTPProber{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Probe issues GET https://host:port/ping and returns nil only on 200.
func (p *HTTPProber) Probe(ctx context.Context, peer domain.Peer) error {
	addr := protocol.NewAddress(peer.Host, peer.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.FormalURI()+"/ping", nil)
	if err != nil {
		return fmt.Errorf("build probe request for %s: %w", addr.URI(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", addr.URI(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s: status %d", addr.URI(), resp.StatusCode)
	}
	return nil
}
