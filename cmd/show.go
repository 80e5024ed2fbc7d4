package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/report"
	"github.com/c-tram/cycle-splits/internal/rows"
	"github.com/c-tram/cycle-splits/internal/session"
	"github.com/c-tram/cycle-splits/internal/splits"
)

var (
	showPlayer  string
	showView    string
	showKind    string
	showSort    string
	showDir     string
	showFilter  string
	showCombine string
	showLabel   string
	showRefresh bool
)

var showCmd = &cobra.Command{
	Use:   "show <team>",
	Short: "Show one split view for a team or player",
	Long: `Load the macro splits for a team (or one of its players with --player) and
print a view with every rate graded against the league baseline.

Views: location, handedness, teams, pitchers, counts, count-vs-team,
count-vs-handedness, handedness-vs-team.

Use --combine to aggregate several buckets of a flat view into one row, e.g.
  splits show NYY --view teams --combine BOS,TOR,TB,BAL --label "AL East"`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	addViewFlags(showCmd)
	showCmd.Flags().StringVar(&showCombine, "combine", "", "comma-separated bucket keys to aggregate into one row")
	showCmd.Flags().StringVar(&showLabel, "label", "", "label for the combined row")
	showCmd.Flags().BoolVar(&showRefresh, "refresh", false, "drop the cached payload and fetch again")
}

// addViewFlags registers the flags shared by show and export.
func addViewFlags(c *cobra.Command) {
	c.Flags().StringVar(&showPlayer, "player", "", "player id (default: team splits)")
	c.Flags().StringVar(&showView, "view", string(splits.Location), "split view")
	c.Flags().StringVar(&showKind, "kind", "batting", "stat kind: batting or pitching")
	c.Flags().StringVar(&showSort, "sort", "", "sort column key or label (e.g. ops, K%, split)")
	c.Flags().StringVar(&showDir, "dir", "desc", "sort direction: asc or desc")
	c.Flags().StringVar(&showFilter, "filter", "", "only rows whose label contains this text")
}

// viewQuery turns the shared flags into a view and query.
func viewQuery() (splits.View, splits.Query, error) {
	view, err := splits.ParseView(showView)
	if err != nil {
		return "", splits.Query{}, err
	}
	kind, err := model.ParseKind(showKind)
	if err != nil {
		return "", splits.Query{}, err
	}
	return view, splits.Query{
		Kind:    kind,
		SortKey: showSort,
		Dir:     rows.ParseDir(showDir),
		Filter:  showFilter,
	}, nil
}

// loadSelection opens the dependencies and loads sel into a new session.
func loadSelection(ctx context.Context, sel model.Selection, refresh bool) (*deps, *session.Session, error) {
	d, err := openDeps(ctx)
	if err != nil {
		return nil, nil, err
	}
	if refresh {
		if _, err := d.cache.DeletePayload(ctx, sel); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("drop cached payload: %w", err)
		}
	}
	sess := d.newSession()
	if err := sess.Load(ctx, sel); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, sess, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	view, q, err := viewQuery()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	d, sess, err := loadSelection(ctx, selection(args[0], showPlayer), showRefresh)
	if err != nil {
		return err
	}
	defer d.Close()

	table, err := buildTable(sess, view, q, splitKeys(showCombine), showLabel)
	if err != nil {
		return err
	}

	report.PrintHeader(os.Stdout, sess.Status(), view, q.Kind)
	report.PrintSplitTable(os.Stdout, table)
	fmt.Fprintln(os.Stdout)
	report.PrintLegend(os.Stdout)
	return nil
}

// buildTable computes view v, or a single aggregated row when keys is set.
func buildTable(sess *session.Session, v splits.View, q splits.Query, keys []string, label string) (splits.Table, error) {
	if len(keys) == 0 {
		return sess.View(v, q)
	}
	p, err := sess.Payload()
	if err != nil {
		return splits.Table{}, err
	}
	row, err := p.Combine(v, keys, label)
	if err != nil {
		return splits.Table{}, err
	}
	q.Baseline = sess.Baseline()
	return splits.Explore([]model.SplitGroup{{Rows: []model.SplitRow{row}}}, q), nil
}
