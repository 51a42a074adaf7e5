package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and recall recorded analysis runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's report and per-item classifications",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum runs to list (0 = all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled; set history_path in the config file")
	}
	defer store.Close()

	runs, err := store.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"ID", "Started", "Project", "Total", "Classified", "Timeouts", "Errors", "High"})
	for _, r := range runs {
		w.AppendRow(table.Row{
			r.ID, r.StartedAt.Format(time.RFC3339), r.Project,
			r.Total, r.Classified, r.Timeouts, r.Errors, r.HighPriority,
		})
	}
	fmt.Println(w.Render())
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run ID must be a number, got %q", args[0])
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled; set history_path in the config file")
	}
	defer store.Close()

	run, failures, err := store.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Print(run.Report)

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Item", "Test", "Category", "Confidence", "Priority"})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
	for _, f := range failures {
		w.AppendRow(table.Row{
			f.ItemID, f.Name, f.Category.Title(),
			fmt.Sprintf("%.0f%%", f.Confidence*100), f.Priority,
		})
	}
	fmt.Println(w.Render())
	return nil
}
