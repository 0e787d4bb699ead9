// Package daemon manages the Vigil daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/vigil-network/vigil/internal/protocol"
)

// Config holds all daemon configuration.
type Config struct {
	Node         NodeConfig         `toml:"node"`
	API          APIConfig          `toml:"api"`
	Availability AvailabilityConfig `toml:"availability"`
	Peers        PeersConfig        `toml:"peers"`
	Probe        ProbeConfig        `toml:"probe"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	// Host is the hostname this node advertises to peers.
	Host string `toml:"host"`

	// Lonely marks the node intentionally solitary: it never escalates
	// on an empty peer set.
	Lonely bool `toml:"lonely"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AvailabilityConfig controls the availability sensor.
// All values are positive integers; durations are in seconds.
type AvailabilityConfig struct {
	Interval         int `toml:"interval"`           // seconds between rounds
	SampleSize       int `toml:"sample_size"`        // peers probed per round
	Sensitivity      int `toml:"sensitivity"`        // failed probes that flag a round
	Retention        int `toml:"retention"`          // window capacity in rounds
	MaximumAloneTime int `toml:"maximum_alone_time"` // isolation timeout in seconds
}

// PeersConfig seeds the peer directory.
type PeersConfig struct {
	// DefaultPort is assumed when a bootstrap locator omits a port.
	DefaultPort int `toml:"default_port"`

	// Bootstrap locators: [identity "@"] host [":" port].
	Bootstrap []string `toml:"bootstrap"`
}

// ProbeConfig controls individual liveness probes.
type ProbeConfig struct {
	Timeout         int  `toml:"timeout"` // seconds per probe
	AllowSelfSigned bool `toml:"allow_self_signed"`
}

// TelemetryConfig controls the observability surface.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Node: NodeConfig{
			Host: "127.0.0.1",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: protocol.DefaultPort,
		},
		Availability: AvailabilityConfig{
			Interval:         120,
			SampleSize:       3,
			Sensitivity:      2,
			Retention:        10,
			MaximumAloneTime: 120,
		},
		Peers: PeersConfig{
			DefaultPort: protocol.DefaultPort,
		},
		Probe: ProbeConfig{
			Timeout:         10,
			AllowSelfSigned: true,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// Validate rejects malformed configuration before any service starts.
func (c Config) Validate() error {
	a := c.Availability
	for name, v := range map[string]int{
		"availability.interval":           a.Interval,
		"availability.sample_size":        a.SampleSize,
		"availability.sensitivity":        a.Sensitivity,
		"availability.retention":          a.Retention,
		"availability.maximum_alone_time": a.MaximumAloneTime,
		"peers.default_port":              c.Peers.DefaultPort,
		"probe.timeout":                   c.Probe.Timeout,
		"api.port":                        c.API.Port,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %d", name, v)
		}
	}
	if a.Sensitivity > a.SampleSize {
		return fmt.Errorf("availability.sensitivity (%d) cannot be greater than availability.sample_size (%d)",
			a.Sensitivity, a.SampleSize)
	}
	return nil
}

// LoadConfig reads config from $VIGIL_HOME/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(vigilHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $VIGIL_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(vigilHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// vigilHome returns the Vigil data directory.
func vigilHome() string {
	if env := os.Getenv("VIGIL_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vigil")
}

// VigilHome is exported for use by other packages.
func VigilHome() string {
	return vigilHome()
}
