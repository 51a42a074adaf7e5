package writeback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sift/internal/classify"
)

// fakeWriter records calls and fails for marked item IDs.
type fakeWriter struct {
	comments   map[int]string
	statuses   map[int]string
	issueTypes map[int]string
	failIDs    map[int]bool
}

func newFakeWriter(failIDs ...int) *fakeWriter {
	w := &fakeWriter{
		comments:   make(map[int]string),
		statuses:   make(map[int]string),
		issueTypes: make(map[int]string),
		failIDs:    make(map[int]bool),
	}
	for _, id := range failIDs {
		w.failIDs[id] = true
	}
	return w
}

func (w *fakeWriter) AddComment(_ context.Context, itemID int, message, level string) error {
	if w.failIDs[itemID] {
		return errors.New("503 service unavailable")
	}
	w.comments[itemID] = message
	return nil
}

func (w *fakeWriter) Update(_ context.Context, itemID int, status, issueType, comment string) error {
	if w.failIDs[itemID] {
		return errors.New("503 service unavailable")
	}
	w.statuses[itemID] = status
	w.issueTypes[itemID] = issueType
	return nil
}

func failures(n int) []classify.Failure {
	out := make([]classify.Failure, n)
	for i := range out {
		out[i] = classify.Failure{
			ItemID:     i + 1,
			Name:       "TestSomething",
			Category:   classify.Network,
			Confidence: 0.75,
			Priority:   classify.PriorityMedium,
			Analysis:   "connection reset during setup",
		}
	}
	return out
}

func TestUpdateCommentsPartialFailure(t *testing.T) {
	// Item 3 of 5 fails; the other four are still written.
	w := newFakeWriter(3)
	u := NewUpdater(w, "sift")

	res := u.UpdateComments(context.Background(), failures(5))

	if res.Updated != 4 {
		t.Errorf("Updated = %d, want 4", res.Updated)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if len(res.Errors) != 1 || res.Errors[0].ID != 3 {
		t.Fatalf("Errors = %+v, want one entry for item 3", res.Errors)
	}
	if !strings.Contains(res.Errors[0].Message, "503") {
		t.Errorf("error message = %q, want the underlying cause", res.Errors[0].Message)
	}
	for _, id := range []int{1, 2, 4, 5} {
		if _, ok := w.comments[id]; !ok {
			t.Errorf("item %d not written despite earlier failure", id)
		}
	}
}

func TestUpdateCommentsAllOK(t *testing.T) {
	w := newFakeWriter()
	u := NewUpdater(w, "sift")

	res := u.UpdateComments(context.Background(), failures(3))
	if res.Updated != 3 || res.Failed != 0 || len(res.Errors) != 0 {
		t.Errorf("result = %+v, want 3/0/none", res)
	}
}

func TestUpdateStatusMapping(t *testing.T) {
	w := newFakeWriter()
	u := NewUpdater(w, "sift")

	fs := []classify.Failure{
		{ItemID: 1, Category: classify.ProductionBug},
		{ItemID: 2, Category: classify.RaceCondition},
		{ItemID: 3, Category: classify.Network},
		{ItemID: 4, Category: classify.Unknown},
	}
	res := u.UpdateStatus(context.Background(), fs)
	if res.Updated != 4 {
		t.Fatalf("Updated = %d, want 4", res.Updated)
	}

	want := map[int]string{1: "BUG", 2: "BUG", 3: "TO_INVESTIGATE", 4: "TO_INVESTIGATE"}
	for id, status := range want {
		if w.statuses[id] != status {
			t.Errorf("item %d status = %q, want %q", id, w.statuses[id], status)
		}
	}

	// The defect issue type carries the category itself, not the status.
	wantIssue := map[int]string{
		1: string(classify.ProductionBug),
		2: string(classify.RaceCondition),
		3: string(classify.Network),
		4: string(classify.Unknown),
	}
	for id, issueType := range wantIssue {
		if w.issueTypes[id] != issueType {
			t.Errorf("item %d issue type = %q, want %q", id, w.issueTypes[id], issueType)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(classify.ProductionBug); got != "BUG" {
		t.Errorf("StatusFor(production_bug) = %q", got)
	}
	if got := StatusFor(classify.Timeout); got != "TO_INVESTIGATE" {
		t.Errorf("StatusFor(timeout) = %q", got)
	}
}

func TestBuildComment(t *testing.T) {
	f := classify.Failure{
		ItemID:       7,
		Name:         "TestCheckout",
		Category:     classify.ProductionBug,
		Confidence:   0.92,
		Priority:     classify.PriorityHigh,
		Analysis:     "nil pointer dereference in cart handler",
		SuggestedFix: "guard against empty cart before total calculation",
		Tags:         []string{"checkout", "panic"},
	}
	now := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)

	c := BuildComment(f, now, "sift")
	for _, want := range []string{
		"**Automated Failure Analysis**",
		"Category: Production Bug",
		"Confidence: 92%",
		"Priority: high",
		"nil pointer dereference in cart handler",
		"guard against empty cart",
		"Tags: checkout, panic",
		"_Submitted by sift at 2026-08-30T09:30:00Z_",
	} {
		if !strings.Contains(c, want) {
			t.Errorf("comment missing %q:\n%s", want, c)
		}
	}
}
