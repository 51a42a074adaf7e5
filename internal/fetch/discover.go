package fetch

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"sift/internal/rp"
)

// componentKeywords maps canonical component names to the markers that
// betray them in a test or launch name. Derived from the sig-tag and
// component naming conventions of the QE suites this tool targets.
var componentKeywords = map[string][]string{
	"API_SERVER":     {"API_SERVER", "[SIG-API-MACHINERY]"},
	"STORAGE":        {"STORAGE", "[SIG-STORAGE]"},
	"NETWORK":        {"NETWORK", "SDN", "[SIG-NETWORK]"},
	"NODE":           {"NODE", "[SIG-NODE]"},
	"OLM":            {"OLM", "OPERATOR"},
	"WORKLOADS":      {"WORKLOADS", "[SIG-APPS]"},
	"AUTH":           {"AUTHENTICATION", "AUTH"},
	"INFRASTRUCTURE": {"INFRASTRUCTURE"},
	"OBSERVABILITY":  {"OBSERVABILITY", "MONITORING"},
	"SECURITY":       {"SECURITY", "COMPLIANCE"},
	"LOGGING":        {"LOGGING"},
	"REGISTRY":       {"REGISTRY", "IMAGE_REGISTRY"},
	"ETCD":           {"ETCD"},
	"INSTALLER":      {"INSTALLER", "INSTALL"},
	"UPGRADE":        {"UPGRADE", "OTA"},
	"PERFORMANCE":    {"PERFSCALE", "PERFORMANCE"},
	"UI":             {"USERINTERFACE", "CYPRESS", "CONSOLE"},
}

var versionPattern = regexp.MustCompile(`\d+\.\d+`)

// ExtractComponent returns the canonical component for a test name, or
// "UNKNOWN" when no marker matches.
func ExtractComponent(testName string) string {
	upper := strings.ToUpper(testName)
	best := "UNKNOWN"
	bestLen := 0
	for component, markers := range componentKeywords {
		for _, m := range markers {
			// Prefer the longest marker so API_SERVER does not lose to
			// a bare AUTH or NODE substring hit.
			if strings.Contains(upper, m) && len(m) > bestLen {
				best = component
				bestLen = len(m)
			}
		}
	}
	return best
}

// ExtractVersion returns the first version-looking token ("4.19") in a
// launch name, or "" when none is present.
func ExtractVersion(launchName string) string {
	return versionPattern.FindString(launchName)
}

// Discovery summarizes the filterable dimensions observed in recent data.
// It backs the `sift discover` command so operators can see which filter
// values will actually select something.
type Discovery struct {
	Components  []string `json:"components"`
	Versions    []string `json:"versions"`
	DefectTypes []string `json:"defect_types"`
}

// Discover scans the launches of the last hoursBack hours and collects the
// component, version, and defect-type values present in them.
func (f *Fetcher) Discover(ctx context.Context, hoursBack int) (*Discovery, error) {
	from, to := Criteria{HoursBack: hoursBack}.Window(time.Now())
	scope := f.client.Project(f.project)

	launches, err := scope.Launches().ListAll(ctx, rp.WithStartedBetween(from, to))
	if err != nil {
		return nil, fmt.Errorf("discover: list launches: %w", err)
	}

	components := make(map[string]bool)
	versions := make(map[string]bool)
	defects := make(map[string]bool)

	for _, launch := range launches {
		if v := ExtractVersion(launch.Name); v != "" {
			versions[v] = true
		}
		items, err := scope.Items().ListAll(ctx, rp.WithLaunchID(launch.ID))
		if err != nil {
			return nil, fmt.Errorf("discover: launch %d items: %w", launch.ID, err)
		}
		for _, it := range items {
			if c := ExtractComponent(it.Name); c != "UNKNOWN" {
				components[c] = true
			}
			if v := ExtractVersion(it.Name); v != "" {
				versions[v] = true
			}
			if it.Issue != nil && it.Issue.IssueType != "" {
				defects[it.Issue.IssueType] = true
			}
		}
	}

	return &Discovery{
		Components:  sortedKeys(components),
		Versions:    sortedKeys(versions),
		DefectTypes: sortedKeys(defects),
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
