package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sift/internal/logging"
	"sift/internal/rp"
)

// Fetcher pulls failing test items for a time window from Report Portal.
// A fetch error is fatal for the run: there is no meaningful partial
// candidate set.
type Fetcher struct {
	client  *rp.Client
	project string
	logger  *slog.Logger
}

// NewFetcher returns a Fetcher for the given client and project.
func NewFetcher(client *rp.Client, project string) *Fetcher {
	return &Fetcher{
		client:  client,
		project: project,
		logger:  logging.New("fetch"),
	}
}

// Fetch lists launches started inside the criteria's time window, then
// collects their failed items. Pagination is handled by the client; the
// caller always sees the complete set.
func (f *Fetcher) Fetch(ctx context.Context, criteria Criteria) ([]Candidate, error) {
	from, to := criteria.Window(time.Now())
	scope := f.client.Project(f.project)

	launches, err := scope.Launches().ListAll(ctx, rp.WithStartedBetween(from, to))
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: list launches: %w", err)
	}
	f.logger.Info("launches in window", "count", len(launches), "from", from, "to", to)

	var candidates []Candidate
	for _, launch := range launches {
		items, err := scope.Items().ListAll(ctx,
			rp.WithLaunchID(launch.ID),
			rp.WithStatus("FAILED"),
		)
		if err != nil {
			return nil, fmt.Errorf("fetch candidates: launch %d items: %w", launch.ID, err)
		}
		for _, it := range items {
			candidates = append(candidates, toCandidate(it, launch))
		}
	}

	f.logger.Info("failed candidates fetched", "count", len(candidates))
	return candidates, nil
}

func toCandidate(it rp.TestItemResource, launch rp.LaunchResource) Candidate {
	c := Candidate{
		ID:                it.ID,
		Name:              it.Name,
		LaunchID:          launch.ID,
		LaunchName:        launch.Name,
		LaunchDescription: launch.Description,
		Status:            it.Status,
	}
	if it.Issue != nil {
		c.DefectType = it.Issue.IssueType
		c.Message = it.Issue.Message
		if c.Message == "" {
			c.Message = it.Issue.Comment
		}
		c.StackTrace = it.Issue.StackTrace
	}
	if it.StartTime != nil {
		c.StartTime = it.StartTime.Time()
		if it.EndTime != nil {
			c.Duration = it.EndTime.Time().Sub(it.StartTime.Time())
		}
	}
	return c
}
