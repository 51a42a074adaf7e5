package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"sift/internal/classify"
	"sift/internal/config"
	"sift/internal/fetch"
	"sift/internal/history"
	"sift/internal/rp"
	"sift/internal/schedule"
)

// newRPClient wires a ReportPortal client from the resolved config.
func newRPClient(cfg config.Config) (*rp.Client, error) {
	if cfg.RP.URL == "" {
		return nil, fmt.Errorf("ReportPortal URL is required\n\n" +
			"Set it in the config file (report_portal.url) or:\n" +
			"  export SIFT_RP_URL=https://your-rp-instance.example.com")
	}
	if cfg.RP.Project == "" {
		return nil, fmt.Errorf("ReportPortal project is required\n\n" +
			"Set it in the config file (report_portal.project) or:\n" +
			"  export SIFT_RP_PROJECT=your-project")
	}

	token := cfg.RP.Token
	if token == "" && cfg.RP.TokenFile != "" {
		var err error
		token, err = rp.ReadAPIKey(cfg.RP.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read token file: %w", err)
		}
	}
	if token == "" {
		return nil, fmt.Errorf("ReportPortal API token is required\n\n" +
			"To get your token:\n" +
			"  1. Log in to your ReportPortal instance\n" +
			"  2. Go to User Profile and copy the API token\n" +
			"  3. Set report_portal.token_file in the config, or export SIFT_RP_TOKEN")
	}

	var opts []rp.Option
	if cfg.RP.TimeoutSec > 0 {
		opts = append(opts, rp.WithTimeout(time.Duration(cfg.RP.TimeoutSec)*time.Second))
	}
	if cfg.RP.Insecure {
		opts = append(opts, rp.WithInsecureTLS())
	}
	if cfg.RP.RateLimit > 0 {
		opts = append(opts, rp.WithRateLimit(cfg.RP.RateLimit, 1))
	}
	return rp.New(cfg.RP.URL, token, opts...)
}

// newScheduler wires the backend, classifier, and scheduler.
func newScheduler(cfg config.Config) (*schedule.Scheduler, error) {
	backend, err := classify.NewBackend(cfg.Backend.Kind, cfg.Backend.BackendConfig)
	if err != nil {
		return nil, err
	}

	var opts []schedule.Option
	if cfg.Schedule.BatchSize > 0 {
		opts = append(opts, schedule.WithBatchSize(cfg.Schedule.BatchSize))
	}
	if cfg.Schedule.MaxConcurrency > 0 {
		opts = append(opts, schedule.WithMaxConcurrency(cfg.Schedule.MaxConcurrency))
	}
	opts = append(opts, schedule.WithItemTimeout(cfg.Schedule.ItemTimeout()))

	return schedule.NewScheduler(classify.NewClassifier(backend), opts...)
}

// openHistory opens the history store, or returns nil when persistence is
// disabled (empty path).
func openHistory(cfg config.Config) (*history.Store, error) {
	if cfg.HistoryPath == "" {
		return nil, nil
	}
	return history.Open(cfg.HistoryPath)
}

// pipeline adapts the fetcher and scheduler to the MCP server's view of
// the analysis flow.
type pipeline struct {
	fetcher   *fetch.Fetcher
	scheduler *schedule.Scheduler
}

func (p *pipeline) Fetch(ctx context.Context, criteria fetch.Criteria) ([]fetch.Candidate, error) {
	return p.fetcher.Fetch(ctx, criteria)
}

func (p *pipeline) Classify(ctx context.Context, cands []fetch.Candidate) ([]classify.Failure, error) {
	return p.scheduler.Run(ctx, cands)
}

// mergeCriteria overlays non-zero flag values on the config criteria.
func mergeCriteria(base fetch.Criteria, f criteriaFlags) fetch.Criteria {
	if f.hoursBack > 0 {
		base.HoursBack = f.hoursBack
	}
	if len(f.components) > 0 {
		base.Components = f.components
	}
	if len(f.versions) > 0 {
		base.Versions = f.versions
	}
	if len(f.statuses) > 0 {
		base.Statuses = f.statuses
	}
	if len(f.defectTypes) > 0 {
		base.DefectTypes = f.defectTypes
	}
	if f.maxTests > 0 {
		base.MaxTests = f.maxTests
	}
	if base.HoursBack <= 0 {
		base.HoursBack = 24
	}
	if base.MaxTests <= 0 {
		base.MaxTests = 50
	}
	return base
}

// criteriaFlags is the shared flag set for commands that filter candidates.
type criteriaFlags struct {
	hoursBack   int
	components  []string
	versions    []string
	statuses    []string
	defectTypes []string
	maxTests    int
}

func (f *criteriaFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.hoursBack, "hours-back", 0, "How far back to look, in hours (default from config)")
	fs.StringSliceVar(&f.components, "component", nil, "Component substrings to match (repeatable)")
	fs.StringSliceVar(&f.versions, "version", nil, "Version substrings to match (repeatable)")
	fs.StringSliceVar(&f.statuses, "status", nil, "Test statuses to include (repeatable)")
	fs.StringSliceVar(&f.defectTypes, "defect-type", nil, "Defect type substrings to match (repeatable)")
	fs.IntVar(&f.maxTests, "max-tests", 0, "Cap on analyzed tests (default from config)")
}
