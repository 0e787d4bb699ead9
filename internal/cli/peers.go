package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vigil-network/vigil/internal/domain"
)

func init() {
	rootCmd.AddCommand(peersCmd)
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List peers known to the running node",
	RunE:  runPeers,
}

func runPeers(cmd *cobra.Command, args []string) error {
	var resp struct {
		Peers []domain.Peer `json:"peers"`
	}
	if err := apiGet("/api/peers", &resp); err != nil {
		return err
	}

	if len(resp.Peers) == 0 {
		fmt.Println("No known peers.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tIDENTITY\tSTATE\tLAST SEEN")
	for _, p := range resp.Peers {
		identity := p.Identity
		if p.IsAnonymous() {
			identity = "(anonymous)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.Endpoint(),
			identity,
			p.State,
			p.LastSeen.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}
