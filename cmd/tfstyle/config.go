// Package main provides configuration management commands for tfstyle.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santosr2/tfstyle/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configOutputFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Manage tfstyle configuration files.

Use subcommands to show, validate, or initialize configurations.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration",
	Long: `Display the final configuration after all imports and merges.

This command loads the configuration file, processes all imports,
applies profile settings, and shows the final resolved configuration.`,
	Example: `  # Show resolved config
  tfstyle config show

  # Show config in JSON format
  tfstyle config show --format json`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration file and all imports.

This command checks for syntax errors, invalid values, and unknown
profile references in the configuration.`,
	RunE: runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long:  `Create a .tfstyle.yaml with the default rule settings.`,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configOutputFormat, "format", "yaml", "output format (yaml|json)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var out []byte
	switch strings.ToLower(configOutputFormat) {
	case "json":
		out, err = json.MarshalIndent(cfg, "", "  ")
	case "yaml", "":
		out, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("unsupported format: %s", configOutputFormat)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

func runConfigValidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if profile != "" {
		if _, err := cfg.GetProfile(profile); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

const starterConfig = `version: 1

rules:
  align:
    enabled: true
    severity: error
  indent:
    enabled: true
    severity: error

severity_threshold: warning
parallel: true
`

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = ".tfstyle.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", path)
	return nil
}
