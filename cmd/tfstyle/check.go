package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/cobra"
)

var checkValidate bool

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run all style checks",
	Long: `Run every enabled style rule. This is the recommended command for
CI/CD. The checks are line oriented and keep working on files that do
not parse; pass --validate to also surface HCL syntax diagnostics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if checkValidate {
			if err := validateSyntax(args); err != nil {
				return err
			}
		}

		rules := enabledRules(cfg)
		if len(rules) == 0 {
			fmt.Println("No rules enabled")
			return nil
		}
		return runCheck(cfg, rules, args)
	},
}

// validateSyntax runs the HCL parser over the target .tf files and
// prints any syntax diagnostics. Parse failures are informational:
// the style rules still run on broken files.
func validateSyntax(args []string) error {
	files, err := getTargetFiles(args, changed)
	if err != nil {
		return fmt.Errorf("finding files: %w", err)
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if !strings.HasSuffix(file, ".tf") {
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		if _, diags := parser.ParseHCL(content, file); diags.HasErrors() {
			for _, d := range diags.Errs() {
				fmt.Printf("⚠ %s\n", d)
			}
		}
	}
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkValidate, "validate", false, "also report HCL syntax errors")
	rootCmd.AddCommand(checkCmd)
}
