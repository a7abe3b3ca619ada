// Package runner executes style rules over a set of files and
// collects their findings.
package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/santosr2/tfstyle/pkg/sdk"
)

// Config holds the runner configuration
type Config struct {
	// Parallel fans files out to a worker per CPU. Findings are
	// sorted afterwards so the output is identical either way.
	Parallel bool

	// Severity maps rule IDs to the severity their findings carry.
	// Rules without an entry report errors.
	Severity map[string]sdk.Severity
}

// Runner runs a fixed set of rules over files
type Runner struct {
	config *Config
	rules  []sdk.LineRule
}

// New creates a runner for the given rules
func New(config *Config, rules ...sdk.LineRule) *Runner {
	if config == nil {
		config = &Config{}
	}
	return &Runner{config: config, rules: rules}
}

// Run checks every file with every rule and returns the combined
// findings ordered by file, line, and rule.
func (r *Runner) Run(ctx context.Context, files []string) ([]sdk.Finding, error) {
	var findings []sdk.Finding
	var err error

	if r.config.Parallel && len(files) > 1 {
		findings, err = r.runParallel(ctx, files)
	} else {
		findings, err = r.runSequential(ctx, files)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	return findings, nil
}

func (r *Runner) runSequential(ctx context.Context, files []string) ([]sdk.Finding, error) {
	var all []sdk.Finding
	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		findings, err := r.checkFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, findings...)
	}
	return all, nil
}

func (r *Runner) runParallel(ctx context.Context, files []string) ([]sdk.Finding, error) {
	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var all []sdk.Finding
	var firstErr error
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				findings, err := r.checkFile(file)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				all = append(all, findings...)
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- file:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

// checkFile runs every rule over one file. Rules see the file content
// as a string and report through a collector that stamps the
// configured severity.
func (r *Runner) checkFile(path string) ([]sdk.Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var findings []sdk.Finding
	for _, rule := range r.rules {
		collector := &sdk.Collector{Severity: r.severityFor(rule.ID())}
		rule.Check(path, string(content), collector.Report)
		findings = append(findings, collector.Findings...)
	}
	return findings, nil
}

func (r *Runner) severityFor(ruleID string) sdk.Severity {
	if sev, ok := r.config.Severity[ruleID]; ok {
		return sev
	}
	return sdk.SeverityError
}
