// Package schedule runs classification over candidate sets with bounded
// concurrency, per-candidate timeouts, and an overall run deadline.
//
// Candidates are processed in sequential batches. Within a batch, workers
// run under an errgroup whose limit bounds how many backend calls are in
// flight at once. A worker never loses its candidate: timeouts and backend
// errors are converted into degraded manual-review failures, so the output
// always has one Failure per input candidate, in input order.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sift/internal/classify"
	"sift/internal/fetch"
	"sift/internal/logging"
)

const (
	DefaultBatchSize      = 50
	DefaultMaxConcurrency = 3
	DefaultItemTimeout    = 30 * time.Second

	baseRunDeadline = 10 * time.Minute
	maxRunDeadline  = 30 * time.Minute
)

// ErrDeadline reports that the run deadline expired before every batch was
// processed. Results for completed batches are still returned alongside it.
var ErrDeadline = errors.New("run deadline exceeded")

// Scheduler fans candidates out to a classifier under fixed concurrency
// and timeout bounds.
type Scheduler struct {
	classifier     *classify.Classifier
	batchSize      int
	maxConcurrency int
	itemTimeout    time.Duration
	logger         *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithBatchSize sets how many candidates each sequential batch holds.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		s.batchSize = n
		return nil
	}
}

// WithMaxConcurrency bounds the number of in-flight backend calls.
func WithMaxConcurrency(n int) Option {
	return func(s *Scheduler) error {
		if n <= 0 {
			return fmt.Errorf("max concurrency must be positive, got %d", n)
		}
		s.maxConcurrency = n
		return nil
	}
}

// WithItemTimeout sets the per-candidate classification timeout.
func WithItemTimeout(d time.Duration) Option {
	return func(s *Scheduler) error {
		if d <= 0 {
			return fmt.Errorf("item timeout must be positive, got %v", d)
		}
		s.itemTimeout = d
		return nil
	}
}

// NewScheduler builds a Scheduler around the given classifier.
func NewScheduler(classifier *classify.Classifier, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		classifier:     classifier,
		batchSize:      DefaultBatchSize,
		maxConcurrency: DefaultMaxConcurrency,
		itemTimeout:    DefaultItemTimeout,
		logger:         logging.New("schedule"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run classifies every candidate and returns one Failure per candidate, in
// the same order. Batches run sequentially; candidates within a batch run
// concurrently up to the scheduler's limit. A candidate whose backend call
// times out or errors is represented by a degraded manual-review Failure
// rather than being dropped.
//
// If ctx expires between batches, Run returns the failures accumulated so
// far together with ErrDeadline.
func (s *Scheduler) Run(ctx context.Context, cands []fetch.Candidate) ([]classify.Failure, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	failures := make([]classify.Failure, 0, len(cands))
	batches := (len(cands) + s.batchSize - 1) / s.batchSize

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("run deadline reached, returning partial results",
				"completed_batches", b, "total_batches", batches, "classified", len(failures))
			return failures, fmt.Errorf("%w after %d of %d batches", ErrDeadline, b, batches)
		}

		lo := b * s.batchSize
		hi := min(lo+s.batchSize, len(cands))
		batch := cands[lo:hi]

		s.logger.Info("processing batch",
			"batch", b+1, "batches", batches, "size", len(batch), "workers", s.maxConcurrency)

		failures = append(failures, s.runBatch(ctx, batch)...)
	}

	return failures, nil
}

// runBatch classifies one batch. The result slice is indexed by candidate
// position so concurrent workers never contend on it.
func (s *Scheduler) runBatch(ctx context.Context, batch []fetch.Candidate) []classify.Failure {
	results := make([]classify.Failure, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, cand := range batch {
		g.Go(func() error {
			results[i] = s.classifyOne(gctx, cand)
			return nil
		})
	}
	_ = g.Wait() // errors are folded into degraded results

	return results
}

func (s *Scheduler) classifyOne(ctx context.Context, cand fetch.Candidate) classify.Failure {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	failure, err := s.classifier.Classify(itemCtx, cand)
	switch {
	case err == nil:
		return failure
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("classification timed out",
			"item_id", cand.ID, "name", cand.Name, "timeout", s.itemTimeout)
		return classify.Fallback(cand, "classification timeout",
			classify.TagTimeout, classify.TagManualReview)
	default:
		s.logger.Error("classification failed",
			"item_id", cand.ID, "name", cand.Name, "error", err)
		return classify.Fallback(cand, fmt.Sprintf("classification error: %v", err),
			classify.TagError, classify.TagManualReview)
	}
}

// RunDeadline computes the overall deadline for a run. The base allowance
// scales with the size of the time window and the candidate cap, capped at
// a hard ceiling so a misconfigured run cannot hang for hours.
func RunDeadline(maxTests, hoursBack int) time.Duration {
	windowFactor := hoursBack / 24
	if windowFactor < 1 {
		windowFactor = 1
	}
	sizeFactor := maxTests / 50
	if sizeFactor < 1 {
		sizeFactor = 1
	}

	d := baseRunDeadline * time.Duration(windowFactor) * time.Duration(sizeFactor)
	return min(d, maxRunDeadline)
}
