package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sift/internal/classify"
	"sift/internal/fetch"
	"sift/internal/history"
	"sift/internal/logging"
	"sift/internal/report"
	"sift/internal/schedule"
	"sift/internal/writeback"
)

var analyzeFlags struct {
	criteria       criteriaFlags
	updateComments bool
	updateStatus   bool
	jsonOut        bool
	outputPath     string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch, classify, and report on recent test failures",
	Long: `Runs the full pipeline: fetch failing tests from ReportPortal, filter
them by the configured criteria, classify each failure with the AI
backend, and print the analysis report.

With --update-comments the analysis is posted back to each test item as
a comment; with --update-status the item's defect status is set from the
failure category. A write failure on one item never aborts the rest.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	analyzeFlags.criteria.register(f)
	f.BoolVar(&analyzeFlags.updateComments, "update-comments", false, "Post analysis comments to test items")
	f.BoolVar(&analyzeFlags.updateStatus, "update-status", false, "Set defect statuses from failure categories")
	f.BoolVar(&analyzeFlags.jsonOut, "json", false, "Print a JSON artifact instead of the markdown report")
	f.StringVarP(&analyzeFlags.outputPath, "output", "o", "", "Also write the report (or JSON artifact) to a file")
}

// analyzeArtifact is the machine-readable output of one run.
type analyzeArtifact struct {
	Total          int               `json:"total"`
	HighPriority   int               `json:"high_priority"`
	SystemIssues   int               `json:"system_issues"`
	ProductionBugs int               `json:"production_bugs"`
	ByCategory     map[string]int    `json:"by_category"`
	Comments       *writeback.Result `json:"comments,omitempty"`
	Statuses       *writeback.Result `json:"statuses,omitempty"`
	Report         string            `json:"report"`
	RunID          int64             `json:"run_id,omitempty"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	logger := logging.New("analyze")
	criteria := mergeCriteria(cfg.Criteria, analyzeFlags.criteria)

	client, err := newRPClient(cfg)
	if err != nil {
		return err
	}
	scheduler, err := newScheduler(cfg)
	if err != nil {
		return err
	}
	fetcher := fetch.NewFetcher(client, cfg.RP.Project)

	deadline := schedule.RunDeadline(criteria.MaxTests, criteria.HoursBack)
	ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
	defer cancel()

	started := time.Now()
	logger.Info("starting analysis",
		"project", cfg.RP.Project, "hours_back", criteria.HoursBack,
		"max_tests", criteria.MaxTests, "deadline", deadline)

	cands, err := fetcher.Fetch(ctx, criteria)
	if err != nil {
		return err
	}
	cands = fetch.Truncate(fetch.Filter(cands, criteria), criteria.MaxTests)
	logger.Info("candidates selected", "count", len(cands))

	failures, err := scheduler.Run(ctx, cands)
	if err != nil && !errors.Is(err, schedule.ErrDeadline) {
		return err
	}
	if errors.Is(err, schedule.ErrDeadline) {
		logger.Warn("deadline hit, reporting partial results", "classified", len(failures))
	}

	agg := report.Aggregate(failures)
	rendered := report.Render(agg, time.Now())

	artifact := analyzeArtifact{
		Total:          agg.Total,
		HighPriority:   agg.HighPriority,
		SystemIssues:   agg.SystemIssues,
		ProductionBugs: agg.ProductionBugs,
		ByCategory:     make(map[string]int, len(agg.ByCategory)),
		Report:         rendered,
	}
	for cat, fs := range agg.ByCategory {
		artifact.ByCategory[string(cat)] = len(fs)
	}

	if analyzeFlags.updateComments || analyzeFlags.updateStatus {
		updater := writeback.NewUpdater(client.Project(cfg.RP.Project).Items(), cfg.SubmittedBy)
		comments, statuses := runWriteBacks(ctx, updater, failures,
			analyzeFlags.updateComments, analyzeFlags.updateStatus)
		artifact.Comments = comments
		artifact.Statuses = statuses
	}

	if store, err := openHistory(cfg); err != nil {
		logger.Warn("history store unavailable", "error", err)
	} else if store != nil {
		defer store.Close()
		run := history.Summarize(cfg.RP.Project, criteria.HoursBack, started, failures, rendered)
		if id, err := store.RecordRun(run, failures); err != nil {
			logger.Warn("history record failed", "error", err)
		} else {
			artifact.RunID = id
		}
	}

	out, err := renderOutput(artifact, rendered)
	if err != nil {
		return err
	}

	fmt.Print(out)
	if analyzeFlags.outputPath != "" {
		if err := os.WriteFile(analyzeFlags.outputPath, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("output written", "path", analyzeFlags.outputPath)
	}
	return nil
}

// runWriteBacks posts comments and status updates for the classified
// failures. The write-back context is detached from the run deadline:
// when the scheduler stopped on the deadline, the partial results still
// get written back instead of failing wholesale on an expired context.
func runWriteBacks(runCtx context.Context, updater *writeback.Updater, failures []classify.Failure, comments, statuses bool) (*writeback.Result, *writeback.Result) {
	ctx := context.WithoutCancel(runCtx)

	var commentRes, statusRes *writeback.Result
	if comments {
		res := updater.UpdateComments(ctx, failures)
		commentRes = &res
	}
	if statuses {
		res := updater.UpdateStatus(ctx, failures)
		statusRes = &res
	}
	return commentRes, statusRes
}

func renderOutput(artifact analyzeArtifact, rendered string) (string, error) {
	if analyzeFlags.jsonOut {
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal artifact: %w", err)
		}
		return string(data) + "\n", nil
	}

	out := rendered
	if artifact.Comments != nil {
		out += fmt.Sprintf("\nComments: %d updated, %d failed\n",
			artifact.Comments.Updated, artifact.Comments.Failed)
	}
	if artifact.Statuses != nil {
		out += fmt.Sprintf("Statuses: %d updated, %d failed\n",
			artifact.Statuses.Updated, artifact.Statuses.Failed)
	}
	return out, nil
}
