package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vigil-network/vigil/internal/api"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running node's availability status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status api.NodeStatus
	if err := apiGet("/api/status", &status); err != nil {
		return err
	}

	fmt.Printf("Identity:    %s\n", status.Identity)
	fmt.Printf("Uptime:      %s\n", status.Uptime)
	fmt.Printf("Known peers: %d (lonely: %v)\n", status.PeerCount, status.Lonely)
	fmt.Printf("Sensor:      running=%v score=%.2f rounds=%d\n",
		status.Sensor.Running, status.Sensor.Score, status.Sensor.Rounds)
	return nil
}
