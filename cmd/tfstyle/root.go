package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile           string
	profile           string
	format            string
	changed           bool
	verbose           bool
	severityThreshold string
)

var rootCmd = &cobra.Command{
	Use:   "tfstyle",
	Short: "tfstyle - Terraform style checker",
	Long: `tfstyle checks Terraform and tfvars files for consistent style.

It validates that equals signs are aligned within parameter groups and
that indentation follows two spaces per nesting level, without
requiring the files to parse cleanly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tfstyle.yaml)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "profile to use from config")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "output format (text|json|json-compact|sarif)")
	rootCmd.PersistentFlags().BoolVar(&changed, "changed", false, "only check files changed in git")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "include line numbers in text output")
	rootCmd.PersistentFlags().StringVar(&severityThreshold, "severity-threshold", "", "minimum severity level to report (info|warning|error)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
