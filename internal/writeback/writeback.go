// Package writeback pushes analysis results back to the test reporting
// system as item comments and defect-status updates.
//
// Updates are per-item and independent: one failed write is recorded and
// processing continues with the next item, so a single flaky call cannot
// void a whole run's worth of analysis.
package writeback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sift/internal/classify"
	"sift/internal/logging"
)

// ItemWriter is the slice of the reporting API the updater needs.
// *rp.ItemScope satisfies it.
type ItemWriter interface {
	AddComment(ctx context.Context, itemID int, message, level string) error
	Update(ctx context.Context, itemID int, status, issueType, comment string) error
}

// ItemError records one failed write.
type ItemError struct {
	ID      int    `json:"test_id"`
	Message string `json:"error"`
}

// Result summarizes a write-back pass.
type Result struct {
	Updated int         `json:"updated"`
	Failed  int         `json:"failed"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// Updater writes analysis results back through an ItemWriter.
type Updater struct {
	items       ItemWriter
	submittedBy string
	logger      *slog.Logger
}

// NewUpdater returns an Updater. submittedBy appears in the comment
// attribution line; empty means "automated analysis".
func NewUpdater(items ItemWriter, submittedBy string) *Updater {
	if submittedBy == "" {
		submittedBy = "automated analysis"
	}
	return &Updater{
		items:       items,
		submittedBy: submittedBy,
		logger:      logging.New("writeback"),
	}
}

// UpdateComments posts one analysis comment per failure. Each item gets a
// single attempt; failures are recorded in the result and the pass
// continues.
func (u *Updater) UpdateComments(ctx context.Context, failures []classify.Failure) Result {
	var res Result
	now := time.Now()

	for _, f := range failures {
		if err := u.items.AddComment(ctx, f.ItemID, BuildComment(f, now, u.submittedBy), "INFO"); err != nil {
			u.logger.Error("comment write failed", "item_id", f.ItemID, "error", err)
			res.Failed++
			res.Errors = append(res.Errors, ItemError{ID: f.ItemID, Message: err.Error()})
			continue
		}
		res.Updated++
	}

	u.logger.Info("comments written", "updated", res.Updated, "failed", res.Failed)
	return res
}

// UpdateStatus sets each item's defect status from its category, posts
// the category itself as the defect issue type, and attaches a short
// status comment. Same partial-failure semantics as UpdateComments.
func (u *Updater) UpdateStatus(ctx context.Context, failures []classify.Failure) Result {
	var res Result

	for _, f := range failures {
		status := StatusFor(f.Category)
		comment := fmt.Sprintf("Automated analysis: %s (%.0f%% confidence)",
			f.Category.Title(), f.Confidence*100)
		if err := u.items.Update(ctx, f.ItemID, status, string(f.Category), comment); err != nil {
			u.logger.Error("status update failed", "item_id", f.ItemID, "error", err)
			res.Failed++
			res.Errors = append(res.Errors, ItemError{ID: f.ItemID, Message: err.Error()})
			continue
		}
		res.Updated++
	}

	u.logger.Info("statuses updated", "updated", res.Updated, "failed", res.Failed)
	return res
}

// StatusFor maps a category to the defect status written back. Only
// genuine code defects become bugs; everything else stays queued for a
// human decision.
func StatusFor(c classify.Category) string {
	switch c {
	case classify.ProductionBug, classify.RaceCondition:
		return "BUG"
	default:
		return "TO_INVESTIGATE"
	}
}

// BuildComment renders the markdown comment body for one failure.
func BuildComment(f classify.Failure, now time.Time, submittedBy string) string {
	var sb strings.Builder

	sb.WriteString("**Automated Failure Analysis**\n\n")
	fmt.Fprintf(&sb, "- Category: %s\n", f.Category.Title())
	fmt.Fprintf(&sb, "- Confidence: %.0f%%\n", f.Confidence*100)
	fmt.Fprintf(&sb, "- Priority: %s\n", f.Priority)
	if f.Analysis != "" {
		fmt.Fprintf(&sb, "\n**Analysis**\n%s\n", f.Analysis)
	}
	if f.SuggestedFix != "" {
		fmt.Fprintf(&sb, "\n**Suggested Fix**\n%s\n", f.SuggestedFix)
	}
	if len(f.Tags) > 0 {
		fmt.Fprintf(&sb, "\nTags: %s\n", strings.Join(f.Tags, ", "))
	}
	fmt.Fprintf(&sb, "\n_Submitted by %s at %s_\n",
		submittedBy, now.UTC().Format(time.RFC3339))

	return sb.String()
}
