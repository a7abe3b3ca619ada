package main

import (
	"github.com/santosr2/tfstyle/internal/rules/indent"
	"github.com/santosr2/tfstyle/pkg/sdk"
	"github.com/spf13/cobra"
)

var indentCmd = &cobra.Command{
	Use:   "indent [paths...]",
	Short: "Check indentation levels",
	Long: `Check that every line is indented two spaces per enclosing brace or
bracket, with top-level declarations flush left.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runCheck(cfg, []sdk.LineRule{indent.New()}, args)
	},
}

func init() {
	rootCmd.AddCommand(indentCmd)
}
