// Package health provides automated health checks with auto-recovery.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vigil-network/vigil/internal/availability"
	"github.com/vigil-network/vigil/internal/infra/directory"
	"github.com/vigil-network/vigil/internal/infra/sqlite"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a health checker with the standard 3 checks.
func NewChecker(db *sqlite.DB, sensor *availability.Sensor, dir *directory.Directory) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
				RecoverFn: func(ctx context.Context) error {
					return nil // SQLite auto-recovers via WAL
				},
			},
			{
				Name: "availability_sensor",
				CheckFn: func(ctx context.Context) error {
					if !sensor.Running() {
						return fmt.Errorf("availability sensor is not running")
					}
					return nil
				},
				RecoverFn: func(ctx context.Context) error {
					return sensor.Start(ctx, false)
				},
			},
			{
				Name: "peer_directory",
				CheckFn: func(ctx context.Context) error {
					if dir.Lonely() {
						return nil // Solitary nodes expect zero peers
					}
					peers := dir.KnownPeers()
					if len(peers) == 0 {
						return fmt.Errorf("no known peers")
					}
					for _, p := range peers {
						if p.IsReachable() {
							return nil
						}
					}
					return fmt.Errorf("none of %d known peers is reachable", len(peers))
				},
				RecoverFn: nil, // Peer churn flows in via bootstrap and API
			},
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			// Attempt recovery
			if check.RecoverFn != nil {
				_ = check.RecoverFn(ctx)
			}
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
