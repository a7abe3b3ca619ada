// Package main provides the watch command for tfstyle.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santosr2/tfstyle/internal/runner"
	"github.com/santosr2/tfstyle/pkg/sdk"
	"github.com/spf13/cobra"
)

var watchTarget string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch files and re-run checks on change",
	Long: `Run the style checks, then keep watching the target directory and
re-run them whenever a Terraform file changes.`,
	Example: `  # Watch the current directory
  tfstyle watch

  # Watch a specific module
  tfstyle watch --target ./modules/vpc`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchTarget, "target", ".", "directory to watch and check")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules := enabledRules(cfg)
	if len(rules) == 0 {
		return fmt.Errorf("no rules enabled")
	}

	fmt.Println("Starting watch mode...")
	fmt.Printf("  Target: %s\n", watchTarget)
	fmt.Println()

	targetFiles, err := getTargetFiles([]string{watchTarget}, false)
	if err != nil {
		return fmt.Errorf("finding target files: %w", err)
	}
	if len(targetFiles) == 0 {
		return fmt.Errorf("no Terraform files found in target directory: %s", watchTarget)
	}

	fmt.Printf("Found %s\n\n", formatFileCount(len(targetFiles)))

	r := runner.New(&runner.Config{
		Parallel: cfg.Parallel,
		Severity: severityMap(cfg),
	}, rules...)

	// Run initial check
	if err := runWatchCheck(r, targetFiles); err != nil {
		fmt.Printf("Initial check error: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory and subdirectories
	err = filepath.Walk(watchTarget, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting up watch: %w", err)
	}

	fmt.Println("Watching for changes... (Ctrl+C to stop)")
	fmt.Println()

	// Debounce timer
	var debounceTimer *time.Timer
	debounceDelay := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Only react to write and create events
			if event.Op&fsnotify.Write == 0 && event.Op&fsnotify.Create == 0 {
				continue
			}
			if !isTerraformFile(event.Name) {
				continue
			}

			// Debounce multiple rapid events
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				fmt.Printf("\n[%s] File changed: %s\n\n", time.Now().Format("15:04:05"), event.Name)

				// Refresh target files in case new files were added
				refreshedFiles, err := getTargetFiles([]string{watchTarget}, false)
				if err != nil {
					fmt.Printf("Error refreshing files: %v\n", err)
					return
				}
				if err := runWatchCheck(r, refreshedFiles); err != nil {
					fmt.Printf("Check error: %v\n", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("Watcher error: %v\n", err)
		}
	}
}

func runWatchCheck(r *runner.Runner, files []string) error {
	findings, err := r.Run(context.Background(), files)
	if err != nil {
		return err
	}

	if len(findings) == 0 {
		fmt.Println("  No issues found")
		fmt.Println()
		return nil
	}

	var errors, warnings, info int
	for _, f := range findings {
		switch f.Severity {
		case sdk.SeverityError:
			errors++
		case sdk.SeverityWarning:
			warnings++
		case sdk.SeverityInfo:
			info++
		}
	}

	for _, finding := range findings {
		fmt.Printf("  [%s] %s:%d\n", finding.Rule, finding.File, finding.Line)
		fmt.Printf("      %s\n", finding.Message)
		fmt.Println()
	}

	fmt.Printf("---\n")
	fmt.Printf("Summary: %d error(s), %d warning(s), %d info\n", errors, warnings, info)
	fmt.Println()

	return nil
}
