package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/navegante/internal/harness"
	"github.com/roach88/navegante/internal/transport"
)

// codeScenarioFailed marks a test report with at least one failing scenario.
const codeScenarioFailed = "SCENARIO_FAILED"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files from the current traces
	Filter string // glob over scenario file names
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "matched", "updated" or "mismatch"
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run operation scenarios",
		Long: `Run YAML operation scenarios, each against a fresh in-memory database.

Expect clauses and assertions are checked, and the recorded trace is
compared with <scenarios-dir>/golden/<name>.golden when that file exists.

Exit codes:
  0 - every scenario passed
  1 - at least one scenario failed
  2 - the scenarios directory is missing or unreadable

Examples:
  navegante test ./scenarios
  navegante test ./scenarios --filter "order_*"
  navegante test ./scenarios --update
  navegante test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files matching this glob")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	files, err := harness.FindScenarios(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	out := newOutput(opts.RootOptions, cmd)
	result := TestResult{Scenarios: []ScenarioResult{}}
	if len(files) == 0 {
		return out.Report(result, "No scenarios found.\n")
	}

	for _, file := range files {
		sr := checkScenario(file, opts.Update)
		if opts.Format != "json" {
			printScenario(out.Writer, sr)
		}
		result.add(sr)
	}

	text := summaryText(result)
	if result.Failed == 0 {
		return out.Report(result, text)
	}
	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	_ = out.Rejected(result, transport.ErrorBody{Code: codeScenarioFailed, Message: msg}, text)
	return NewExitError(ExitFailure, msg)
}

// checkScenario loads and runs one file, then settles its golden trace.
// Assertion failures and golden mismatches are both reported.
func checkScenario(file string, update bool) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file)}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	run, err := harness.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr
	}
	sr.Errors = run.Errors

	golden, err := settleGolden(goldenFilePath(file, scenario.Name), scenario.Name, run, update)
	if err != nil {
		sr.Errors = append(sr.Errors, err.Error())
	}
	sr.Golden = golden
	if golden == "mismatch" {
		sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
	}

	sr.Pass = run.Pass && err == nil && golden != "mismatch"
	return sr
}

// settleGolden writes the trace when update is set and otherwise compares
// it with an existing golden file. A missing file is not a failure.
func settleGolden(path, name string, run *harness.Result, update bool) (string, error) {
	trace, err := harness.Snapshot(name, run)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("golden: %w", err)
		}
		if err := os.WriteFile(path, trace, 0644); err != nil {
			return "", fmt.Errorf("golden: %w", err)
		}
		return "updated", nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("golden: %w", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), trace) {
		return "mismatch", nil
	}
	return "matched", nil
}

// goldenFilePath names the golden file after the scenario, the same way
// harness.RunWithGolden does.
func goldenFilePath(scenarioFile, scenarioName string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", scenarioName+".golden")
}

func printScenario(w io.Writer, sr ScenarioResult) {
	mark := "✓"
	if !sr.Pass {
		mark = "✗"
	}
	suffix := ""
	if sr.Golden == "updated" {
		suffix = " (golden updated)"
	}
	fmt.Fprintf(w, "%s %s%s\n", mark, sr.Name, suffix)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func summaryText(r TestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		b.WriteString("✓ All scenarios passed\n")
	}
	return b.String()
}
