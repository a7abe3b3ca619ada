package main

import (
	"github.com/santosr2/tfstyle/internal/rules/align"
	"github.com/santosr2/tfstyle/pkg/sdk"
	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align [paths...]",
	Short: "Check equals sign alignment",
	Long: `Check that equals signs within each parameter group sit in the same
column, one space past the longest parameter name, with exactly one
space after '='.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runCheck(cfg, []sdk.LineRule{align.New()}, args)
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)
}
