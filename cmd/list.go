package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached split payloads",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	payloads, err := db.ListPayloads(cmd.Context())
	if err != nil {
		return fmt.Errorf("list payloads: %w", err)
	}
	if len(payloads) == 0 {
		fmt.Fprintln(os.Stdout, "No payloads cached yet. Run 'splits show <team>' to fetch one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %6s  %9s  %9s  %s\n",
		"TEAM", "PLAYER", "SEASON", "RAW", "STORED", "FETCHED")
	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %6s  %9s  %9s  %s\n",
		"──────", "──────────", "──────", "─────────", "─────────", "───────")
	for _, p := range payloads {
		player := p.Selection.PlayerID
		if player == "" {
			player = "-"
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-10s  %6d  %9s  %9s  %s\n",
			p.Selection.Team, player, p.Selection.Season,
			humanize.Bytes(uint64(p.RawSize)), humanize.Bytes(uint64(p.StoredSize)),
			humanize.Time(p.FetchedAt))
	}
	return nil
}
