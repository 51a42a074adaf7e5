package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Analysis is the structured payload extracted from an AI response.
type Analysis struct {
	Category     Category
	Confidence   float64
	Text         string
	SuggestedFix string
	Priority     string
	Tags         []string
}

// rawAnalysis matches the JSON shape requested in the prompt. Pointer
// fields distinguish "absent" from zero values so defaults apply only
// where the model omitted something.
type rawAnalysis struct {
	Category     string   `json:"category"`
	Confidence   *float64 `json:"confidence"`
	Analysis     string   `json:"analysis"`
	SuggestedFix string   `json:"suggested_fix"`
	Priority     string   `json:"priority"`
	Tags         []string `json:"tags"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseAnalysis extracts structured data from an AI response. It is a
// parse-or-default chain: fenced JSON block, then the whole body as JSON,
// then a fixed manual-review default. Every step is total; ParseAnalysis never
// returns an error.
func ParseAnalysis(response string) Analysis {
	var raw rawAnalysis
	if !tryDecode(response, &raw) {
		return Analysis{
			Category:     Unknown,
			Confidence:   0.0,
			Text:         "classification unparseable",
			SuggestedFix: "Manual investigation required",
			Priority:     PriorityMedium,
			Tags:         []string{TagManualReview},
		}
	}

	a := Analysis{
		Category:     ParseCategory(raw.Category),
		Confidence:   0.5,
		Text:         raw.Analysis,
		SuggestedFix: raw.SuggestedFix,
		Priority:     normalizePriority(raw.Priority),
		Tags:         raw.Tags,
	}
	if raw.Confidence != nil {
		a.Confidence = clamp01(*raw.Confidence)
	}
	if a.Text == "" {
		a.Text = "Analysis not available"
	}
	if a.SuggestedFix == "" {
		a.SuggestedFix = "No fix suggested"
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}

// tryDecode attempts the fenced block first, then the whole response.
func tryDecode(response string, dst *rawAnalysis) bool {
	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		if json.Unmarshal([]byte(m[1]), dst) == nil {
			return true
		}
	}
	return json.Unmarshal([]byte(strings.TrimSpace(response)), dst) == nil
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
