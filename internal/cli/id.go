package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vigil-network/vigil/internal/daemon"
	"github.com/vigil-network/vigil/internal/security"
)

func init() {
	rootCmd.AddCommand(idCmd)
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print this node's checksum identity",
	Long:  `Print the identity peers use before the "@" in this node's locator.`,
	RunE:  runID,
}

func runID(cmd *cobra.Command, args []string) error {
	kp, err := security.LoadOrCreateKeypair(daemon.VigilHome())
	if err != nil {
		return err
	}
	fmt.Println(kp.ChecksumIdentity())
	return nil
}
