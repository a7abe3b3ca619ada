// Package main provides CLI helpers for tfstyle commands.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santosr2/tfstyle/internal/config"
	"github.com/santosr2/tfstyle/internal/output"
	"github.com/santosr2/tfstyle/internal/runner"
	"github.com/santosr2/tfstyle/internal/rules/align"
	"github.com/santosr2/tfstyle/internal/rules/indent"
	"github.com/santosr2/tfstyle/internal/vcs"
	"github.com/santosr2/tfstyle/pkg/sdk"
)

// loadConfig loads the configuration and applies the selected profile.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if profile != "" {
		if err := cfg.ApplyProfile(profile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// runCheck is the shared driver behind the align, indent, and check
// commands: resolve target files, run the rules, render findings, and
// fail when errors remain.
func runCheck(cfg *config.Config, rules []sdk.LineRule, args []string) error {
	files, err := getTargetFiles(args, changed)
	if err != nil {
		return fmt.Errorf("finding files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No Terraform files found")
		return nil
	}

	r := runner.New(&runner.Config{
		Parallel: cfg.Parallel,
		Severity: severityMap(cfg),
	}, rules...)

	findings, err := r.Run(context.Background(), files)
	if err != nil {
		return err
	}

	threshold := severityThreshold
	if threshold == "" {
		threshold = cfg.SeverityThreshold
	}
	findings = filterBySeverity(findings, threshold)

	formatter, err := output.GetFormatter(format, verbose, version)
	if err != nil {
		return err
	}
	if err := formatter.Format(findings, os.Stdout); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	errors := 0
	for _, f := range findings {
		if f.Severity == sdk.SeverityError {
			errors++
		}
	}
	if errors > 0 {
		return fmt.Errorf("found %d issue(s) in %s", errors, formatFileCount(len(files)))
	}
	return nil
}

// enabledRules returns the rules switched on by the configuration,
// honoring per-rule-ID overrides.
func enabledRules(cfg *config.Config) []sdk.LineRule {
	var rules []sdk.LineRule
	if ruleEnabled(cfg, align.RuleID, cfg.Rules.Align) {
		rules = append(rules, align.New())
	}
	if ruleEnabled(cfg, indent.RuleID, cfg.Rules.Indent) {
		rules = append(rules, indent.New())
	}
	return rules
}

func ruleEnabled(cfg *config.Config, id string, rc config.RuleConfig) bool {
	if override, ok := cfg.Overrides.Rules[id]; ok {
		return override.Enabled
	}
	return rc.Enabled
}

// severityMap resolves the configured severity per rule ID.
func severityMap(cfg *config.Config) map[string]sdk.Severity {
	m := map[string]sdk.Severity{
		align.RuleID:  parseSeverity(cfg.Rules.Align.Severity),
		indent.RuleID: parseSeverity(cfg.Rules.Indent.Severity),
	}
	for id, override := range cfg.Overrides.Rules {
		if override.Severity != "" {
			m[id] = parseSeverity(override.Severity)
		}
	}
	return m
}

// getTargetFiles returns the list of files to process based on the provided paths
// and global flags. When --changed is set, it uses VCS to detect changed files.
func getTargetFiles(paths []string, changedOnly bool) ([]string, error) {
	if changedOnly {
		return getChangedFiles(paths)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return findTerraformFiles(paths)
}

// getChangedFiles uses VCS to get only changed Terraform files.
// If paths are provided, it filters the changed files to only those within the paths.
func getChangedFiles(filterPaths []string) ([]string, error) {
	git := vcs.NewGit(".")

	if !git.IsGitRepo() {
		return nil, fmt.Errorf("not a git repository; --changed requires git")
	}

	changedFiles, err := git.GetAllChangedTerraformFiles()
	if err != nil {
		return nil, fmt.Errorf("getting changed files: %w", err)
	}

	// If no filter paths provided, return all changed files
	if len(filterPaths) == 0 || (len(filterPaths) == 1 && filterPaths[0] == ".") {
		return vcs.FilterExisting(changedFiles), nil
	}

	var filteredFiles []string
	for _, file := range changedFiles {
		for _, filterPath := range filterPaths {
			absFilterPath, err := filepath.Abs(filterPath)
			if err != nil {
				continue
			}
			if isPathWithin(file, absFilterPath) {
				filteredFiles = append(filteredFiles, file)
				break
			}
		}
	}

	return vcs.FilterExisting(filteredFiles), nil
}

// isPathWithin checks if a file path is within a directory path.
func isPathWithin(filePath, dirPath string) bool {
	filePath = filepath.Clean(filePath)
	dirPath = filepath.Clean(dirPath)

	if strings.HasPrefix(filePath, dirPath) {
		// Make sure it's actually within (not just a prefix match)
		remainder := strings.TrimPrefix(filePath, dirPath)
		return remainder == "" || strings.HasPrefix(remainder, string(filepath.Separator))
	}
	return false
}

// findTerraformFiles recursively finds all .tf and .tfvars files in the given paths.
func findTerraformFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && shouldSkipDir(info.Name()) {
					return filepath.SkipDir
				}
				if !info.IsDir() && isTerraformFile(p) && !seen[p] {
					absPath, err := filepath.Abs(p)
					if err != nil {
						absPath = p
					}
					files = append(files, absPath)
					seen[absPath] = true
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", path, err)
			}
		} else if isTerraformFile(path) && !seen[path] {
			absPath, err := filepath.Abs(path)
			if err != nil {
				absPath = path
			}
			files = append(files, absPath)
			seen[absPath] = true
		}
	}

	return files, nil
}

// shouldSkipDir returns true if the directory should be skipped during traversal.
func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	skipDirs := map[string]bool{
		"node_modules":      true,
		"vendor":            true,
		".terraform":        true,
		".terragrunt-cache": true,
	}
	return skipDirs[name]
}

// isTerraformFile checks if a file has a .tf or .tfvars extension.
func isTerraformFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tf" || ext == ".tfvars"
}

// formatFileCount returns a human-readable file count string.
func formatFileCount(count int) string {
	if count == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", count)
}

// filterBySeverity keeps findings at or above the threshold severity.
func filterBySeverity(findings []sdk.Finding, threshold string) []sdk.Finding {
	if threshold == "" {
		return findings
	}
	thresholdLevel := severityLevel(threshold)
	var filtered []sdk.Finding
	for _, f := range findings {
		if severityLevel(string(f.Severity)) >= thresholdLevel {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// severityLevel converts severity string to a numeric level for comparison.
func severityLevel(severity string) int {
	switch strings.ToLower(severity) {
	case "info":
		return 1
	case "warning":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func parseSeverity(s string) sdk.Severity {
	switch strings.ToLower(s) {
	case "warning":
		return sdk.SeverityWarning
	case "info":
		return sdk.SeverityInfo
	default:
		return sdk.SeverityError
	}
}
