// Package report aggregates classified failures and renders the run report.
package report

import (
	"sort"
	"strings"

	"sift/internal/classify"
)

// Report is the aggregate view over one run's classified failures.
type Report struct {
	Total          int
	ByCategory     map[classify.Category][]classify.Failure
	ByPriority     map[string][]classify.Failure
	HighPriority   int
	SystemIssues   int
	ProductionBugs int

	// Duplicates groups failures sharing a signature (category plus the
	// leading fragment of the message). Display grouping only; every
	// failure still counts individually everywhere else.
	Duplicates map[string][]classify.Failure
}

// signaturePrefixLen bounds how much of the message participates in the
// duplicate signature. Long tracebacks differ in the tail, not the head.
const signaturePrefixLen = 120

// Aggregate builds a Report in a single pass over the failures.
func Aggregate(failures []classify.Failure) Report {
	r := Report{
		Total:      len(failures),
		ByCategory: make(map[classify.Category][]classify.Failure),
		ByPriority: make(map[string][]classify.Failure),
		Duplicates: make(map[string][]classify.Failure),
	}

	for _, f := range failures {
		r.ByCategory[f.Category] = append(r.ByCategory[f.Category], f)
		r.ByPriority[f.Priority] = append(r.ByPriority[f.Priority], f)

		switch f.Priority {
		case classify.PriorityHigh:
			r.HighPriority++
		}
		switch f.Category {
		case classify.SystemIssue:
			r.SystemIssues++
		case classify.ProductionBug:
			r.ProductionBugs++
		}

		sig := Signature(f)
		r.Duplicates[sig] = append(r.Duplicates[sig], f)
	}

	return r
}

// Signature derives the duplicate-grouping key for a failure.
func Signature(f classify.Failure) string {
	msg := strings.TrimSpace(f.Message)
	if len(msg) > signaturePrefixLen {
		msg = msg[:signaturePrefixLen]
	}
	return string(f.Category) + "|" + strings.ToLower(msg)
}

// categoriesByCount returns the report's categories, most failures first,
// ties broken alphabetically so output is stable.
func (r Report) categoriesByCount() []classify.Category {
	cats := make([]classify.Category, 0, len(r.ByCategory))
	for c := range r.ByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		ni, nj := len(r.ByCategory[cats[i]]), len(r.ByCategory[cats[j]])
		if ni != nj {
			return ni > nj
		}
		return cats[i] < cats[j]
	})
	return cats
}
