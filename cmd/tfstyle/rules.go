package main

import (
	"fmt"

	"github.com/santosr2/tfstyle/internal/rules/align"
	"github.com/santosr2/tfstyle/internal/rules/indent"
	"github.com/santosr2/tfstyle/pkg/sdk"
	"github.com/spf13/cobra"
)

func builtinRules() []sdk.LineRule {
	return []sdk.LineRule{align.New(), indent.New()}
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Rule management commands",
	Long:  `Inspect the built-in tfstyle rules.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, rule := range builtinRules() {
			fmt.Printf("%s  %s\n", rule.ID(), rule.Name())
		}
		return nil
	},
}

var rulesDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate rule documentation",
	Long:  `Generate markdown documentation for all rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("# tfstyle rules")
		fmt.Println()
		for _, rule := range builtinRules() {
			fmt.Printf("## %s: %s\n\n", rule.ID(), rule.Name())
			fmt.Printf("%s\n\n", rule.Description())
		}
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesDocsCmd)
	rootCmd.AddCommand(rulesCmd)
}
