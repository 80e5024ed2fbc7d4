package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <team>",
	Short: "Export a split view as CSV",
	Long: `Write the rows of one split view as CSV, in the displayed order and with the
same filter applied. Compound views write one block per group, each headed by
a "# <group>" line.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	addViewFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	view, q, err := viewQuery()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	d, sess, err := loadSelection(ctx, selection(args[0], showPlayer), false)
	if err != nil {
		return err
	}
	defer d.Close()

	table, err := sess.View(view, q)
	if err != nil {
		return err
	}

	data := export.String(q.Kind, table.SplitGroups())
	if exportOut == "" {
		fmt.Fprint(os.Stdout, data)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(data), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", table.Len(), exportOut)
	return nil
}
