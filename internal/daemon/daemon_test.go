package daemon

import (
	"testing"
	"time"

	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/protocol"
)

func TestNewWithConfig_WiresServices(t *testing.T) {
	t.Setenv("VIGIL_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Node.Lonely = true

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.Sensor.Running() {
		t.Error("sensor running before Serve()")
	}
	if !d.Peers.Lonely() {
		t.Error("directory not marked lonely")
	}
	if !protocol.IsChecksumAddress(d.Keypair.ChecksumIdentity()) {
		t.Errorf("node identity %q is not a checksum address", d.Keypair.ChecksumIdentity())
	}

	// Identity persisted in node_info.
	id, err := d.DB.GetNodeInfo("identity")
	if err != nil {
		t.Fatalf("GetNodeInfo() error: %v", err)
	}
	if id != d.Keypair.ChecksumIdentity() {
		t.Errorf("persisted identity = %q, want %q", id, d.Keypair.ChecksumIdentity())
	}
}

func TestNewWithConfig_BootstrapsPeers(t *testing.T) {
	t.Setenv("VIGIL_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Peers.Bootstrap = []string{"alpha.example", "beta.example:9300"}

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.Peers.Len() != 2 {
		t.Errorf("Peers.Len() = %d, want 2", d.Peers.Len())
	}
}

func TestNewWithConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("VIGIL_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Availability.Sensitivity = 10
	cfg.Availability.SampleSize = 2

	if _, err := NewWithConfig(cfg); err == nil {
		t.Error("NewWithConfig() accepted sensitivity > sample_size")
	}
}

func TestDaemon_PruneRounds(t *testing.T) {
	t.Setenv("VIGIL_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Node.Lonely = true

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	old := domain.RoundRecord{ID: "stale", Time: time.Now().Add(-2 * archiveRetention), Failed: true, Score: 0.1}
	fresh := domain.RoundRecord{ID: "fresh", Time: time.Now(), Failed: false, Score: 0.1}
	for _, rec := range []domain.RoundRecord{old, fresh} {
		if err := d.DB.SaveRound(rec); err != nil {
			t.Fatalf("SaveRound(%s) error: %v", rec.ID, err)
		}
	}

	d.pruneRounds()

	recs, err := d.DB.RecentRounds(10)
	if err != nil {
		t.Fatalf("RecentRounds() error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "fresh" {
		t.Errorf("rounds after prune = %+v, want only the fresh round", recs)
	}
}
