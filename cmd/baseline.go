package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/report"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline [season]",
	Short: "Show the league-average baseline for a season",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBaseline,
}

func runBaseline(cmd *cobra.Command, args []string) error {
	year := cfg.Season
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid season %q", args[0])
		}
		year = n
	}

	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	b, err := d.baselines.Get(cmd.Context(), year)
	if err != nil {
		return fmt.Errorf("baseline %d: %w", year, err)
	}
	report.PrintBaseline(os.Stdout, b)
	return nil
}
