package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sift/internal/fetch"
)

var discoverFlags struct {
	hoursBack int
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover filterable components, versions, and defect types",
	Long: `Scans recent launches and lists the component names, versions, and
defect types seen in failing tests, to use as --component/--version/
--defect-type values for analyze and candidates.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverFlags.hoursBack, "hours-back", 168, "How far back to scan, in hours")
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	client, err := newRPClient(cfg)
	if err != nil {
		return err
	}
	fetcher := fetch.NewFetcher(client, cfg.RP.Project)

	d, err := fetcher.Discover(cmd.Context(), discoverFlags.hoursBack)
	if err != nil {
		return err
	}

	printList := func(label string, values []string) {
		if len(values) == 0 {
			fmt.Printf("%s: (none found)\n", label)
			return
		}
		fmt.Printf("%s:\n  %s\n", label, strings.Join(values, "\n  "))
	}
	printList("Components", d.Components)
	printList("Versions", d.Versions)
	printList("Defect types", d.DefectTypes)
	return nil
}
