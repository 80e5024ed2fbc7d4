package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/export"
	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/report"
	"github.com/c-tram/cycle-splits/internal/rows"
	"github.com/c-tram/cycle-splits/internal/session"
	"github.com/c-tram/cycle-splits/internal/splits"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent explorer session: search, load a selection, then switch views, sort and filter. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shell holds the REPL's explorer state on top of a session.
type shell struct {
	ctx   context.Context
	d     *deps
	sess  *session.Session
	view  splits.View
	query splits.Query
	hits  []model.Candidate
}

func runShell(cmd *cobra.Command, _ []string) error {
	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sh := &shell{
		ctx:   cmd.Context(),
		d:     d,
		sess:  d.newSession(),
		view:  splits.Location,
		query: splits.Query{Dir: rows.Desc},
	}

	cGreeting.Println("splits shell")
	cMuted.Printf("season %d, type 'help' or 'exit'\n", sh.sess.Season())
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("splits")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		var err error
		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "search":
			err = sh.search(args)
		case "load":
			err = sh.load(args, false)
		case "refresh":
			err = sh.refresh()
		case "views":
			err = sh.views()
		case "view":
			err = sh.setView(args)
		case "kind":
			err = sh.setKind(args)
		case "sort":
			err = sh.setSort(args)
		case "filter":
			sh.query.Filter = strings.Join(args, " ")
			err = sh.render()
		case "combine":
			err = sh.combine(args)
		case "season":
			err = sh.setSeason(args)
		case "baseline":
			err = sh.baseline()
		case "recent":
			err = sh.recent(args)
		case "status":
			sh.status()
		case "export":
			err = sh.export(args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"search <name>", "search players by name"},
		{"load <team> [player]", "load team (or player) splits for the season"},
		{"load #<n>", "load the n-th hit of the last search"},
		{"refresh", "drop the cached payload and load it again"},
		{"views", "list the views the loaded payload carries"},
		{"view <name>", "switch view (location, handedness, teams, counts, ...)"},
		{"kind <batting|pitching>", "switch stat kind"},
		{"sort <column> [asc|desc]", "sort rows; 'sort split' sorts by label"},
		{"filter [text]", "keep rows whose label contains text; blank clears"},
		{"combine <k1,k2,...> [label]", "aggregate buckets of the current view"},
		{"season <year>", "switch season (reloads the current selection)"},
		{"baseline", "show the league baseline"},
		{"recent [n]", "list recent selections, or reload the n-th"},
		{"status", "show fetch state"},
		{"export <file.csv>", "write the current view as CSV"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (sh *shell) search(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <name>")
	}
	hits, err := sh.sess.Search(sh.ctx, strings.Join(args, " "))
	if errors.Is(err, session.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	sh.hits = hits
	report.PrintCandidates(os.Stdout, hits)
	return nil
}

func (sh *shell) load(args []string, refresh bool) error {
	if len(args) == 0 {
		return errors.New("usage: load <team> [player] | load #<n>")
	}
	var sel model.Selection
	if n, ok := strings.CutPrefix(args[0], "#"); ok {
		i, err := strconv.Atoi(n)
		if err != nil || i < 1 || i > len(sh.hits) {
			return fmt.Errorf("no search hit %s", args[0])
		}
		hit := sh.hits[i-1]
		if hit.Team == "" {
			return fmt.Errorf("%s has no team", hit.Name)
		}
		sel = model.Selection{Team: normalizeTeam(hit.Team), PlayerID: hit.ID, Season: sh.sess.Season()}
	} else {
		sel = model.Selection{Team: normalizeTeam(args[0]), Season: sh.sess.Season()}
		if len(args) > 1 {
			sel.PlayerID = args[1]
		}
	}
	return sh.loadSelection(sel, refresh)
}

func (sh *shell) loadSelection(sel model.Selection, refresh bool) error {
	if refresh {
		if _, err := sh.d.cache.DeletePayload(sh.ctx, sel); err != nil {
			return fmt.Errorf("drop cached payload: %w", err)
		}
	}
	err := sh.sess.Load(sh.ctx, sel)
	if errors.Is(err, session.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	if st := sh.sess.Status(); st.BaselineState == session.Failed {
		cWarn.Fprintf(os.Stderr, "baseline unavailable (%v), tiers use percentiles\n", st.BaselineErr)
	}
	return sh.render()
}

func (sh *shell) refresh() error {
	st := sh.sess.Status()
	if st.Selection == nil {
		return session.ErrNotLoaded
	}
	return sh.loadSelection(*st.Selection, true)
}

func (sh *shell) views() error {
	p, err := sh.sess.Payload()
	if err != nil {
		return err
	}
	for _, v := range p.Available() {
		marker := "  "
		if v == sh.view {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, v)
	}
	return nil
}

func (sh *shell) setView(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: view <name>")
	}
	v, err := splits.ParseView(args[0])
	if err != nil {
		return err
	}
	sh.view = v
	return sh.render()
}

func (sh *shell) setKind(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kind <batting|pitching>")
	}
	k, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	sh.query.Kind = k
	return sh.render()
}

func (sh *shell) setSort(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: sort <column> [asc|desc]")
	}
	sh.query.SortKey = args[0]
	sh.query.Dir = rows.Desc
	if len(args) == 2 {
		sh.query.Dir = rows.ParseDir(args[1])
	}
	return sh.render()
}

func (sh *shell) combine(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: combine <k1,k2,...> [label]")
	}
	table, err := buildTable(sh.sess, sh.view, sh.query, splitKeys(args[0]), strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	report.PrintSplitTable(os.Stdout, table)
	return nil
}

func (sh *shell) setSeason(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: season <year>")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid season %q", args[0])
	}
	sh.sess.SetSeason(year)
	st := sh.sess.Status()
	if st.Selection == nil {
		cMuted.Printf("season set to %d\n", year)
		return nil
	}
	sel := *st.Selection
	sel.Season = year
	return sh.loadSelection(sel, false)
}

func (sh *shell) baseline() error {
	if b := sh.sess.Baseline(); b != nil {
		report.PrintBaseline(os.Stdout, b)
		return nil
	}
	err := sh.sess.LoadBaseline(sh.ctx, sh.sess.Season())
	if err != nil {
		return err
	}
	report.PrintBaseline(os.Stdout, sh.sess.Baseline())
	return nil
}

func (sh *shell) recent(args []string) error {
	recent := sh.sess.Recent()
	if len(args) == 0 {
		report.PrintRecent(os.Stdout, recent)
		return nil
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > len(recent) {
		return fmt.Errorf("no recent selection %s", args[0])
	}
	sel := recent[i-1]
	if sel.Season != sh.sess.Season() {
		sh.sess.SetSeason(sel.Season)
	}
	return sh.loadSelection(sel, false)
}

func (sh *shell) status() {
	st := sh.sess.Status()
	cHeader.Println("Session")
	fmt.Printf("  season    %d\n", st.Season)
	if st.Selection != nil {
		fmt.Printf("  selection %s\n", st.Selection)
	} else {
		fmt.Println("  selection -")
	}
	fmt.Printf("  splits    %s\n", stateText(st.SplitsState, st.SplitsErr))
	fmt.Printf("  baseline  %s\n", stateText(st.BaselineState, st.BaselineErr))
	fmt.Printf("  view      %s, %s", sh.view, sh.query.Kind)
	if sh.query.SortKey != "" {
		fmt.Printf(", sort %s %s", sh.query.SortKey, sh.query.Dir)
	}
	if sh.query.Filter != "" {
		fmt.Printf(", filter %q", sh.query.Filter)
	}
	fmt.Println()
}

func stateText(s session.State, err error) string {
	if err != nil {
		return fmt.Sprintf("%s (%v)", s, err)
	}
	return s.String()
}

func (sh *shell) export(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <file.csv>")
	}
	table, err := sh.sess.View(sh.view, sh.query)
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, sh.query.Kind, table.SplitGroups()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cMuted.Printf("wrote %d rows to %s\n", table.Len(), args[0])
	return nil
}

// render prints the current view, if a payload is loaded.
func (sh *shell) render() error {
	table, err := sh.sess.View(sh.view, sh.query)
	if errors.Is(err, session.ErrNotLoaded) {
		return nil
	}
	if err != nil {
		return err
	}
	report.PrintHeader(os.Stdout, sh.sess.Status(), sh.view, sh.query.Kind)
	report.PrintSplitTable(os.Stdout, table)
	return nil
}
