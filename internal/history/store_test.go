package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sift/internal/classify"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGetRun(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	failures := []classify.Failure{
		{ItemID: 1, Name: "TestA", Category: classify.Network, Confidence: 0.9, Priority: classify.PriorityHigh},
		{ItemID: 2, Name: "TestB", Category: classify.Unknown, Confidence: 0,
			Priority: classify.PriorityMedium, Tags: []string{classify.TagTimeout, classify.TagManualReview}},
	}
	run := Summarize("openshift", 24, started, failures, "# Report")

	id, err := s.RecordRun(run, failures)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, gotFailures, err := s.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Project != "openshift" || got.HoursBack != 24 {
		t.Errorf("run = %+v", got)
	}
	if got.Total != 2 || got.Classified != 1 || got.Timeouts != 1 || got.HighPriority != 1 {
		t.Errorf("counters = %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Report != "# Report" {
		t.Errorf("Report = %q", got.Report)
	}
	if len(gotFailures) != 2 {
		t.Fatalf("got %d failures, want 2", len(gotFailures))
	}
	if gotFailures[0].ItemID != 1 || gotFailures[0].Category != classify.Network {
		t.Errorf("failure 0 = %+v", gotFailures[0])
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.GetRun(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		run := Run{StartedAt: time.Now(), Project: "p", HoursBack: 24}
		if _, err := s.RecordRun(run, nil); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Error("runs not ordered newest first")
	}

	all, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d runs, want 3", len(all))
	}
}

func TestSummarizeCounters(t *testing.T) {
	failures := []classify.Failure{
		{ItemID: 1, Priority: classify.PriorityHigh},
		{ItemID: 2, Tags: []string{classify.TagTimeout}},
		{ItemID: 3, Tags: []string{classify.TagError}},
		{ItemID: 4, Priority: classify.PriorityLow},
	}
	run := Summarize("p", 24, time.Now(), failures, "")
	if run.Total != 4 || run.Classified != 2 || run.Timeouts != 1 || run.Errors != 1 || run.HighPriority != 1 {
		t.Errorf("run = %+v", run)
	}
}
