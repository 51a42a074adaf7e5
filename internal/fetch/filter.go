package fetch

import "strings"

// Filter applies the criteria's optional dimensions to a candidate set.
// Component, version, and defect-type matching is a case-insensitive
// substring check against the candidate's name, launch name, and launch
// description, because Report Portal does not expose these as queryable
// fields. Status matching compares against the candidate's own status.
// Present dimensions are ANDed; with no dimensions Filter is the identity.
// The result preserves input order, so Filter is idempotent and
// deterministic.
func Filter(candidates []Candidate, criteria Criteria) []Candidate {
	if !criteria.Constrained() {
		return candidates
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !matchesAnySubstring(c, criteria.Components) {
			continue
		}
		if !matchesAnySubstring(c, criteria.Versions) {
			continue
		}
		if !matchesStatus(c.Status, criteria.Statuses) {
			continue
		}
		if !matchesDefectType(c.DefectType, criteria.DefectTypes) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Truncate caps the candidate set at max entries, keeping the first max in
// original fetch order. Non-positive max means no cap. Truncation happens
// after filtering, never before.
func Truncate(candidates []Candidate, max int) []Candidate {
	if max <= 0 || len(candidates) <= max {
		return candidates
	}
	return candidates[:max]
}

// matchesAnySubstring reports whether any of wanted appears (case-insensitive)
// in the candidate's name, launch name, or launch description. An empty
// wanted set matches everything.
func matchesAnySubstring(c Candidate, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	name := strings.ToUpper(c.Name)
	launchName := strings.ToUpper(c.LaunchName)
	launchDesc := strings.ToUpper(c.LaunchDescription)

	for _, w := range wanted {
		upper := strings.ToUpper(w)
		if strings.Contains(name, upper) ||
			strings.Contains(launchName, upper) ||
			strings.Contains(launchDesc, upper) {
			return true
		}
	}
	return false
}

func matchesStatus(status string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if strings.EqualFold(status, w) {
			return true
		}
	}
	return false
}

// matchesDefectType keeps candidates whose defect type contains one of the
// wanted codes. Candidates with no defect type at all pass, matching the
// triage convention that untyped items are still open for investigation.
func matchesDefectType(defectType string, wanted []string) bool {
	if len(wanted) == 0 || defectType == "" {
		return true
	}
	upper := strings.ToUpper(defectType)
	for _, w := range wanted {
		if strings.Contains(upper, strings.ToUpper(w)) {
			return true
		}
	}
	return false
}
