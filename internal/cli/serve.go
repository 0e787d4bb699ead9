package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vigil-network/vigil/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveLonely, "lonely", false, "Run intentionally solitary (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost   string
	servePort   int
	serveLonely bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Vigil node",
	Long:  `Start the availability sensor and the node's REST endpoint.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveLonely {
		cfg.Node.Lonely = true
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}

	return d.Serve(context.Background())
}
