package classify

import (
	"context"
	"log/slog"

	"sift/internal/fetch"
	"sift/internal/logging"
)

// Classifier builds the analysis prompt for a candidate, invokes the
// backend, and parses the response into a Failure.
type Classifier struct {
	backend Backend
	logger  *slog.Logger
}

// NewClassifier returns a Classifier using the given backend.
func NewClassifier(backend Backend) *Classifier {
	return &Classifier{
		backend: backend,
		logger:  logging.New("classify"),
	}
}

// Backend returns the backend this classifier dispatches to.
func (c *Classifier) Backend() Backend { return c.backend }

// Classify analyzes one candidate. The only error source is the backend
// call itself; response parsing always succeeds and fills in defaults.
// Timeout and error fallbacks are the scheduler's responsibility.
func (c *Classifier) Classify(ctx context.Context, cand fetch.Candidate) (Failure, error) {
	prompt := BuildPrompt(cand.Name, cand.Message, cand.StackTrace)

	response, err := c.backend.Complete(ctx, prompt)
	if err != nil {
		return Failure{}, err
	}

	analysis := ParseAnalysis(response)
	c.logger.DebugContext(ctx, "candidate classified",
		"item_id", cand.ID, "category", analysis.Category, "confidence", analysis.Confidence)

	return Failure{
		ItemID:       cand.ID,
		Name:         cand.Name,
		Message:      cand.Message,
		StackTrace:   cand.StackTrace,
		Timestamp:    cand.StartTime,
		Duration:     cand.Duration,
		Category:     analysis.Category,
		Confidence:   analysis.Confidence,
		Analysis:     analysis.Text,
		SuggestedFix: analysis.SuggestedFix,
		Priority:     analysis.Priority,
		Tags:         analysis.Tags,
	}, nil
}

// Fallback synthesizes the degraded Failure used when classification could
// not produce a result. The reason becomes the analysis text and the tags
// mark the failure for manual review.
func Fallback(cand fetch.Candidate, reason string, tags ...string) Failure {
	return Failure{
		ItemID:       cand.ID,
		Name:         cand.Name,
		Message:      cand.Message,
		StackTrace:   cand.StackTrace,
		Timestamp:    cand.StartTime,
		Duration:     cand.Duration,
		Category:     Unknown,
		Confidence:   0.0,
		Analysis:     reason,
		SuggestedFix: "Manual investigation required",
		Priority:     PriorityMedium,
		Tags:         tags,
	}
}
