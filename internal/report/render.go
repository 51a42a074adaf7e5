package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"sift/internal/classify"
)

// topPerGroup bounds how many failures are listed per priority group
// before the remainder collapses into a single count line.
const topPerGroup = 5

var priorityOrder = []string{classify.PriorityHigh, classify.PriorityMedium, classify.PriorityLow}

// Render produces the markdown analysis report: a summary table, one
// section per category ordered by failure count, and recommendation
// callouts derived from the aggregate counts.
func Render(r Report, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Test Failure Analysis Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	if r.Total == 0 {
		sb.WriteString("No test failures matched the analysis criteria.\n")
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(summaryTable(r, true))
	sb.WriteString("\n\n")

	for _, cat := range r.categoriesByCount() {
		failures := r.ByCategory[cat]
		fmt.Fprintf(&sb, "## %s (%d)\n\n", cat.Title(), len(failures))
		renderPriorityGroups(&sb, failures)
	}

	renderRecommendations(&sb, r)

	return sb.String()
}

// SummaryTable renders the aggregate counts as a terminal table.
func SummaryTable(r Report) string {
	return summaryTable(r, false)
}

func summaryTable(r Report, markdown bool) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Category", "Total", "High", "Medium", "Low"})

	for _, cat := range r.categoriesByCount() {
		failures := r.ByCategory[cat]
		var counts [3]int
		for _, f := range failures {
			switch f.Priority {
			case classify.PriorityHigh:
				counts[0]++
			case classify.PriorityMedium:
				counts[1]++
			default:
				counts[2]++
			}
		}
		w.AppendRow(table.Row{cat.Title(), len(failures), counts[0], counts[1], counts[2]})
	}
	w.AppendFooter(table.Row{"Total", r.Total, r.HighPriority, "", ""})

	if markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

func renderPriorityGroups(sb *strings.Builder, failures []classify.Failure) {
	for _, prio := range priorityOrder {
		var group []classify.Failure
		for _, f := range failures {
			if f.Priority == prio {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(sb, "### %s priority (%d)\n\n", titleCase(prio), len(group))

		entries := collapseDuplicates(group)
		shown := entries
		if len(shown) > topPerGroup {
			shown = shown[:topPerGroup]
		}
		listed := 0
		for _, e := range shown {
			listed += e.count
			if e.count > 1 {
				fmt.Fprintf(sb, "- **%s** (%.0f%% confidence, %d occurrences)\n",
					e.first.Name, e.first.Confidence*100, e.count)
			} else {
				fmt.Fprintf(sb, "- **%s** (%.0f%% confidence)\n", e.first.Name, e.first.Confidence*100)
			}
			if e.first.Analysis != "" {
				fmt.Fprintf(sb, "  - Analysis: %s\n", e.first.Analysis)
			}
			if e.first.SuggestedFix != "" {
				fmt.Fprintf(sb, "  - Suggested fix: %s\n", e.first.SuggestedFix)
			}
			if len(e.first.Tags) > 0 {
				fmt.Fprintf(sb, "  - Tags: %s\n", strings.Join(e.first.Tags, ", "))
			}
		}
		if rest := len(group) - listed; rest > 0 {
			fmt.Fprintf(sb, "- ... and %d more\n", rest)
		}
		sb.WriteString("\n")
	}
}

// dupEntry is one rendered line: the first failure of a signature group
// plus how many failures share that signature within the priority group.
type dupEntry struct {
	first classify.Failure
	count int
}

// collapseDuplicates folds failures with the same signature into a single
// entry, preserving first-seen order. Counts elsewhere in the report are
// unaffected; this only stops a repeated crash from drowning the listing.
func collapseDuplicates(group []classify.Failure) []dupEntry {
	index := make(map[string]int, len(group))
	var entries []dupEntry
	for _, f := range group {
		sig := Signature(f)
		if i, ok := index[sig]; ok {
			entries[i].count++
			continue
		}
		index[sig] = len(entries)
		entries = append(entries, dupEntry{first: f, count: 1})
	}
	return entries
}

func renderRecommendations(sb *strings.Builder, r Report) {
	sb.WriteString("## Recommendations\n\n")

	any := false
	if r.HighPriority > 0 {
		fmt.Fprintf(sb, "- **Immediate action required**: %d high-priority failure(s) need attention.\n", r.HighPriority)
		any = true
	}
	if r.SystemIssues > 0 {
		fmt.Fprintf(sb, "- **System issues detected**: %d failure(s) point at infrastructure or environment problems.\n", r.SystemIssues)
		any = true
	}
	if r.ProductionBugs > 0 {
		fmt.Fprintf(sb, "- **Production bugs found**: %d failure(s) indicate real application defects; file bug reports.\n", r.ProductionBugs)
		any = true
	}
	if !any {
		sb.WriteString("- No urgent follow-ups; review medium and low priority failures as time permits.\n")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
