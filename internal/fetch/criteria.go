// Package fetch retrieves failing test candidates from Report Portal and
// narrows them along the filter dimensions Report Portal cannot query
// natively (component, version, status, defect type).
package fetch

import "time"

// Criteria selects which failing tests a run operates on. The time window is
// mandatory; every other dimension is optional and absent means
// "no constraint".
type Criteria struct {
	HoursBack   int      `yaml:"hours_back" json:"hours_back"`
	Components  []string `yaml:"components,omitempty" json:"components,omitempty"`
	Versions    []string `yaml:"versions,omitempty" json:"versions,omitempty"`
	Statuses    []string `yaml:"statuses,omitempty" json:"statuses,omitempty"`
	DefectTypes []string `yaml:"defect_types,omitempty" json:"defect_types,omitempty"`
	MaxTests    int      `yaml:"max_tests,omitempty" json:"max_tests,omitempty"`
}

// Window returns the [from, to] time range the criteria covers, ending now.
func (c Criteria) Window(now time.Time) (time.Time, time.Time) {
	hours := c.HoursBack
	if hours <= 0 {
		hours = 24
	}
	return now.Add(-time.Duration(hours) * time.Hour), now
}

// Constrained reports whether any optional dimension is present.
func (c Criteria) Constrained() bool {
	return len(c.Components) > 0 || len(c.Versions) > 0 ||
		len(c.Statuses) > 0 || len(c.DefectTypes) > 0
}

// Candidate is one failing test fetched from Report Portal, carried through
// the pipeline unchanged after creation.
type Candidate struct {
	ID                int           `json:"id"`
	Name              string        `json:"name"`
	LaunchID          int           `json:"launch_id"`
	LaunchName        string        `json:"launch_name"`
	LaunchDescription string        `json:"launch_description,omitempty"`
	Status            string        `json:"status"`
	Message           string        `json:"message,omitempty"`
	StackTrace        string        `json:"stack_trace,omitempty"`
	DefectType        string        `json:"defect_type,omitempty"`
	StartTime         time.Time     `json:"start_time"`
	Duration          time.Duration `json:"duration"`
}
