package main

import (
	"github.com/spf13/cobra"

	"sift/internal/config"
	"sift/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is the resolved run configuration, loaded before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "AI-assisted triage for ReportPortal test failures",
	Long: "Sift fetches failing tests from ReportPortal, classifies each failure\n" +
		"with an AI backend under bounded concurrency, and writes the analysis\n" +
		"back as comments and defect statuses.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)

		cfg, err = config.Load(rootFlags.configPath)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.configPath, "config", "c", "", "Path to config file (YAML or JSON)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
