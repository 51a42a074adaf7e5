// sift is the test-failure triage CLI: fetch failing tests from
// ReportPortal, classify them with an AI backend, and push the results
// back as comments and defect statuses.
//
// Usage:
//
//	sift analyze    [--config sift.yaml] [--update-comments] [--update-status]
//	sift candidates [--hours-back 24] [--component NETWORK] [--stats]
//	sift discover   [--hours-back 168]
//	sift history    [list|show <run-id>]
//	sift serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
