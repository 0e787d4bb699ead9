// Package cli implements the Vigil command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - peer availability monitoring node",
	Long: `Vigil runs a network node that watches its peers.
It periodically samples known peers, scores their responsiveness over a
sliding window, and escalates through alert levels, including detecting
total network isolation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
