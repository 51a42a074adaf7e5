// Package classify turns a failing test candidate into a categorized
// failure by prompting an AI backend and tolerantly parsing whatever
// comes back. Parsing never fails: malformed responses degrade to the
// Unknown category with a manual-review tag.
package classify

import "strings"

// Category is the closed set of failure categories the pipeline assigns.
type Category string

const (
	SystemIssue     Category = "system_issue"
	ProductionBug   Category = "production_bug"
	TestEnvironment Category = "test_environment"
	Infrastructure  Category = "infrastructure"
	Network         Category = "network"
	DataIssue       Category = "data_issue"
	Configuration   Category = "configuration"
	Timeout         Category = "timeout"
	RaceCondition   Category = "race_condition"
	Unknown         Category = "unknown"
)

// Categories lists every valid category in prompt order.
func Categories() []Category {
	return []Category{
		SystemIssue, ProductionBug, TestEnvironment, Infrastructure,
		Network, DataIssue, Configuration, Timeout, RaceCondition, Unknown,
	}
}

// ParseCategory maps a free-form category string onto the closed enum.
// Both "SYSTEM_ISSUE" and "system_issue" forms are accepted; anything
// else maps to Unknown rather than erroring.
func ParseCategory(s string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range Categories() {
		if normalized == c {
			return c
		}
	}
	return Unknown
}

// Title returns the category in display form, e.g. "System Issue".
func (c Category) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
