package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vigil-network/vigil/internal/api"
	"github.com/vigil-network/vigil/internal/availability"
	"github.com/vigil-network/vigil/internal/health"
	"github.com/vigil-network/vigil/internal/infra/directory"
	"github.com/vigil-network/vigil/internal/infra/probe"
	"github.com/vigil-network/vigil/internal/infra/sqlite"
	"github.com/vigil-network/vigil/internal/protocol"
	"github.com/vigil-network/vigil/internal/security"
)

// Daemon is the core Vigil runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Keypair *security.Keypair
	Peers   *directory.Directory
	Sensor  *availability.Sensor
	Health  *health.Checker
	Server  *api.Server
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	return newDaemon(cfg, vigilHome())
}

func newDaemon(cfg Config, dataDir string) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Open SQLite
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Crypto identity (Ed25519)
	kp, err := security.LoadOrCreateKeypair(dataDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	identity := kp.ChecksumIdentity()
	if err := db.SetNodeInfo("identity", identity); err != nil {
		log.Printf("[daemon] persist identity: %v", err)
	}

	// Peer directory: persisted peers first, then bootstrap locators
	peers := directory.New(cfg.Node.Lonely, db)
	if err := peers.Load(); err != nil {
		db.Close()
		return nil, err
	}
	if err := peers.Bootstrap(cfg.Peers.Bootstrap, cfg.Peers.DefaultPort); err != nil {
		db.Close()
		return nil, err
	}

	// Availability sensor
	self := protocol.NewAddress(cfg.Node.Host, cfg.API.Port)
	prober := probe.NewHTTP(time.Duration(cfg.Probe.Timeout)*time.Second, cfg.Probe.AllowSelfSigned)

	sensorCfg := availability.Config{
		Interval:         time.Duration(cfg.Availability.Interval) * time.Second,
		SampleSize:       cfg.Availability.SampleSize,
		Sensitivity:      cfg.Availability.Sensitivity,
		Retention:        cfg.Availability.Retention,
		MaximumAloneTime: time.Duration(cfg.Availability.MaximumAloneTime) * time.Second,
	}
	sensor, err := availability.NewSensor(sensorCfg, self.URI(), peers, prober, availability.WithArchive(db))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create sensor: %w", err)
	}

	// Health checker
	checker := health.NewChecker(db, sensor, peers)

	// API server
	srv := api.NewServer(identity, sensor, peers, checker, db, cfg.Peers.DefaultPort)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		DB:      db,
		Keypair: kp,
		Peers:   peers,
		Sensor:  sensor,
		Health:  checker,
		Server:  srv,
	}, nil
}

// Serve starts the sensor and HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Availability sensor: first round fires immediately
	if err := d.Sensor.Start(ctx, true); err != nil {
		return fmt.Errorf("start sensor: %w", err)
	}

	// Health checker (always runs)
	go d.Health.Run(ctx)

	// Round archive pruning
	go d.pruneArchive(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = d.Sensor.Stop()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Vigil serving on http://%s\n", addr)
	fmt.Printf("  Identity: %s\n", d.Keypair.ChecksumIdentity())
	fmt.Printf("  Known peers: %d (lonely: %v)\n", d.Peers.Len(), d.Peers.Lonely())
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// archiveRetention bounds how much round history the archive keeps.
const archiveRetention = 7 * 24 * time.Hour

// pruneArchive trims aged rounds from the archive every hour.
func (d *Daemon) pruneArchive(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pruneRounds()
		}
	}
}

func (d *Daemon) pruneRounds() {
	if _, err := d.DB.PruneRounds(time.Now().Add(-archiveRetention)); err != nil {
		log.Printf("[daemon] prune round archive: %v", err)
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Sensor != nil {
		_ = d.Sensor.Stop()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
