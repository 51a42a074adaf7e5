package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"sift/internal/fetch"
)

var candidatesFlags struct {
	criteria criteriaFlags
	stats    bool
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List failing tests matching the filter criteria",
	Long: `Fetches and filters failing tests without classifying them, so the
selection can be inspected (and the criteria tuned) before spending
backend calls on a full analysis.`,
	RunE: runCandidates,
}

func init() {
	f := candidatesCmd.Flags()
	candidatesFlags.criteria.register(f)
	f.BoolVar(&candidatesFlags.stats, "stats", false, "Print per-launch and per-defect-type counts instead of the full list")
}

func runCandidates(cmd *cobra.Command, _ []string) error {
	criteria := mergeCriteria(cfg.Criteria, candidatesFlags.criteria)

	client, err := newRPClient(cfg)
	if err != nil {
		return err
	}
	fetcher := fetch.NewFetcher(client, cfg.RP.Project)

	cands, err := fetcher.Fetch(cmd.Context(), criteria)
	if err != nil {
		return err
	}
	cands = fetch.Truncate(fetch.Filter(cands, criteria), criteria.MaxTests)

	if candidatesFlags.stats {
		printCandidateStats(cands)
		return nil
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"ID", "Test", "Launch", "Status", "Defect Type"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, WidthMax: 40},
	})
	for _, c := range cands {
		w.AppendRow(table.Row{c.ID, c.Name, c.LaunchName, c.Status, c.DefectType})
	}
	w.AppendFooter(table.Row{"", fmt.Sprintf("%d candidate(s)", len(cands)), "", "", ""})
	fmt.Println(w.Render())
	return nil
}

func printCandidateStats(cands []fetch.Candidate) {
	byLaunch := make(map[string]int)
	byDefect := make(map[string]int)
	for _, c := range cands {
		byLaunch[c.LaunchName]++
		dt := c.DefectType
		if dt == "" {
			dt = "(none)"
		}
		byDefect[dt]++
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Launch", "Failures"})
	for name, n := range byLaunch {
		w.AppendRow(table.Row{name, n})
	}
	fmt.Println(w.Render())

	w = table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Defect Type", "Failures"})
	for dt, n := range byDefect {
		w.AppendRow(table.Row{dt, n})
	}
	w.AppendFooter(table.Row{"Total", len(cands)})
	fmt.Println(w.Render())
}
