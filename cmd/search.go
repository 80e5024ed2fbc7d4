package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/report"
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search players by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	hits, err := d.newSession().Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	report.PrintCandidates(os.Stdout, hits)
	return nil
}
