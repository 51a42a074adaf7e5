package classify

import "time"

// Priority levels a failure can be assigned.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Tags attached to degraded (fallback) classifications.
const (
	TagTimeout      = "timeout"
	TagError        = "error"
	TagManualReview = "manual-review"
)

// Failure is the pipeline's primary output: one candidate with its
// AI-derived classification. Created exactly once by the scheduler and
// read-only afterwards.
type Failure struct {
	ItemID       int           `json:"item_id"`
	Name         string        `json:"name"`
	Message      string        `json:"message,omitempty"`
	StackTrace   string        `json:"stack_trace,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	Duration     time.Duration `json:"duration"`
	Category     Category      `json:"category"`
	Confidence   float64       `json:"confidence"`
	Analysis     string        `json:"analysis"`
	SuggestedFix string        `json:"suggested_fix"`
	Priority     string        `json:"priority"`
	Tags         []string      `json:"tags,omitempty"`
}

// HasTag reports whether the failure carries the given tag.
func (f Failure) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
