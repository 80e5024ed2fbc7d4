package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the cache database",
	Long: `Run an arbitrary SQL query against the cache database and print results as a table.

Schema overview:
  payloads(team, player_id, season, body BLOB, raw_size, fetched_at)
  baselines(season, body BLOB, raw_size, fetched_at)

Bodies are zstd-compressed JSON; they print decoded, cut to --width. With
--width 0 a single body prints indented:
  splits sql --width 0 "SELECT body FROM baselines WHERE season = 2024"
player_id is '' for team splits: WHERE team = 'NYY' AND player_id = ''`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

var sqlWidth int

func init() {
	sqlCmd.Flags().IntVar(&sqlWidth, "width", 60, "cut decoded bodies to this many characters (0 = full)")
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query, sqlWidth)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	// One full body: print it indented rather than squeezed into a cell.
	if sqlWidth == 0 && len(rows) == 1 && len(cols) == 1 && gjson.Valid(rows[0][0]) {
		os.Stdout.Write(pretty.Pretty([]byte(rows[0][0])))
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
