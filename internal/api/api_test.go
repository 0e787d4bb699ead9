package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vigil-network/vigil/internal/availability"
	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/health"
	"github.com/vigil-network/vigil/internal/infra/directory"
	"github.com/vigil-network/vigil/internal/infra/sqlite"
)

type okProber struct{}

func (okProber) Probe(context.Context, domain.Peer) error { return nil }

func newTestServer(t *testing.T) (*Server, *directory.Directory) {
	t.Helper()

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := directory.New(false, db)
	sensor, err := availability.NewSensor(availability.DefaultConfig(), "127.0.0.1:9151", dir, okProber{})
	if err != nil {
		t.Fatalf("NewSensor() error: %v", err)
	}
	checker := health.NewChecker(db, sensor, dir)

	return NewServer("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", sensor, dir, checker, db, 9151), dir
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/ping", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ping = %d, want 200", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	srv, dir := newTestServer(t)
	dir.Add(domain.Peer{Host: "peer.example", Port: 9151, State: domain.PeerAlive})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/status = %d, want 200", rec.Code)
	}

	var status NodeStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Identity != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Errorf("Identity = %q", status.Identity)
	}
	if status.PeerCount != 1 {
		t.Errorf("PeerCount = %d, want 1", status.PeerCount)
	}
	if status.Sensor.Running {
		t.Error("Sensor.Running = true, sensor was never started")
	}
}

func TestAddPeer(t *testing.T) {
	srv, dir := newTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/peers", `{"locator":"peer.example:9200"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/peers = %d, want 201: %s", rec.Code, rec.Body)
	}
	if dir.Len() != 1 {
		t.Fatalf("directory Len() = %d, want 1", dir.Len())
	}

	peers := dir.KnownPeers()
	if peers[0].Host != "peer.example" || peers[0].Port != 9200 {
		t.Errorf("added peer = %s, want peer.example:9200", peers[0].Endpoint())
	}
}

func TestAddPeer_DefaultPortAndIdentity(t *testing.T) {
	srv, dir := newTestServer(t)

	const id = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/peers", `{"locator":"`+id+`@peer.example"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/peers = %d, want 201: %s", rec.Code, rec.Body)
	}

	peers := dir.KnownPeers()
	if peers[0].Identity != id {
		t.Errorf("Identity = %q, want %q", peers[0].Identity, id)
	}
	if peers[0].Port != 9151 {
		t.Errorf("Port = %d, want default 9151", peers[0].Port)
	}
}

func TestAddPeer_RejectsBadLocator(t *testing.T) {
	srv, dir := newTestServer(t)

	for _, body := range []string{
		`{"locator":"http://peer.example"}`,
		`{"locator":"@peer.example"}`,
		`{}`,
		`not json`,
	} {
		rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/peers", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s = %d, want 400", body, rec.Code)
		}
	}
	if dir.Len() != 0 {
		t.Errorf("directory Len() = %d, want 0", dir.Len())
	}
}

func TestRemovePeer(t *testing.T) {
	srv, dir := newTestServer(t)
	dir.Add(domain.Peer{Host: "peer.example", Port: 9151, State: domain.PeerAlive})

	path := "/api/peers?endpoint=" + url.QueryEscape("peer.example:9151")
	rec := doRequest(t, srv.Handler(), http.MethodDelete, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE = %d, want 200: %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, srv.Handler(), http.MethodDelete, path, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", rec.Code)
	}
}

func TestRounds(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/rounds?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/rounds = %d, want 200", rec.Code)
	}

	var resp struct {
		Rounds []domain.RoundRecord `json:"rounds"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode rounds: %v", err)
	}
	if len(resp.Rounds) != 0 {
		t.Errorf("rounds = %d, want 0 for a fresh archive", len(resp.Rounds))
	}

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/rounds?limit=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// No checks have run yet; an empty checker reports healthy.
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
}
