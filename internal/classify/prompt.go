package classify

import (
	"strings"
)

// BuildPrompt renders the deterministic analysis prompt for one candidate.
// The taxonomy and the requested JSON shape are spelled out so that even
// small local models produce something the tolerant parser can use.
func BuildPrompt(testName, failureMessage, stackTrace string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert QA engineer analyzing test failures. ")
	sb.WriteString("Analyze the following test failure and categorize it.\n\n")

	sb.WriteString("Test Information:\n")
	sb.WriteString("- Test Name: ")
	sb.WriteString(testName)
	sb.WriteString("\n- Failure Message: ")
	sb.WriteString(failureMessage)
	sb.WriteString("\n- Stack Trace: ")
	sb.WriteString(stackTrace)
	sb.WriteString("\n\n")

	sb.WriteString("Categorize the failure into exactly one of:\n")
	for _, line := range taxonomy {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(`
Provide a detailed analysis of the root cause, a suggested fix with
actionable steps, a priority (high/medium/low) based on impact, and
relevant tags.

Return your analysis in this JSON format:

` + "```json" + `
{
    "category": "SYSTEM_ISSUE",
    "confidence": 0.85,
    "analysis": "Why this category was chosen...",
    "suggested_fix": "Specific steps to resolve the issue...",
    "priority": "high",
    "tags": ["infrastructure", "timeout", "network"]
}
` + "```" + `
Return only the JSON block.`)

	return sb.String()
}

var taxonomy = []string{
	"SYSTEM_ISSUE: infrastructure, environment, or system-level problems",
	"PRODUCTION_BUG: actual bugs in the application code",
	"TEST_ENVIRONMENT: test environment configuration issues",
	"INFRASTRUCTURE: network, database, or service connectivity issues",
	"NETWORK: network timeouts, connectivity problems",
	"DATA_ISSUE: test data problems, missing or corrupted data",
	"CONFIGURATION: configuration errors, missing settings",
	"TIMEOUT: test timeouts, slow performance",
	"RACE_CONDITION: timing-related issues, concurrency problems",
	"UNKNOWN: cannot determine category",
}
