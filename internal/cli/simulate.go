package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tandem/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Update     bool   // regenerate golden files
	Filter     string // scenario filter (glob pattern)
	Transcript bool   // print each transcript
}

// ScenarioResult holds the result of a single scenario.
type ScenarioResult struct {
	Name       string   `json:"name"`
	Pass       bool     `json:"pass"`
	Errors     []string `json:"errors,omitempty"`
	Transcript string   `json:"transcript,omitempty"`
}

// SimulateResult holds the overall result.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// WriteText prints one line per scenario and a summary.
func (r SimulateResult) WriteText(w io.Writer) error {
	for _, s := range r.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", mark, s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		if s.Transcript != "" {
			fmt.Fprintln(w)
			io.WriteString(w, s.Transcript)
			fmt.Fprintln(w)
		}
	}
	_, err := fmt.Fprintf(w, "\nSummary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	return err
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario-file-or-dir>",
		Short: "Run scenarios against an in-memory engine",
		Long: `Run YAML scenarios against a fresh in-memory engine and check their
expectations. When a golden transcript exists next to the scenario
(golden/<name>.golden) the transcript must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable scenarios)

Examples:
  tandem simulate ./scenarios
  tandem simulate ./scenarios --filter "mutual*" --transcript
  tandem simulate ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Transcript, "transcript", false, "print each transcript")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *SimulateOptions, path string) error {
	f := opts.formatter(cmd)

	files, err := findScenarioFiles(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	f.VerboseLog("Found %d scenario(s) in %s", len(files), path)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := SimulateResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := simulateOne(ctx, opts, file)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := f.Error(ErrCodeFailed, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result)
}

func simulateOne(ctx context.Context, opts *SimulateOptions, file string) ScenarioResult {
	sc, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{Name: filepath.Base(file), Errors: []string{err.Error()}}
	}

	res, err := harness.Run(ctx, sc)
	if err != nil {
		return ScenarioResult{Name: sc.Name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}

	transcript := harness.FormatTranscript(sc.Name, res)
	sr := ScenarioResult{Name: sc.Name, Pass: res.Pass, Errors: res.Errors}
	if opts.Transcript {
		sr.Transcript = transcript
	}

	golden := goldenFilePath(file)
	if opts.Update {
		if err := writeGolden(golden, transcript); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
		return sr
	}

	want, err := os.ReadFile(golden)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("read golden file: %v", err))
	case string(want) != transcript:
		sr.Pass = false
		sr.Errors = append(sr.Errors, "transcript does not match golden file (run with --update to regenerate)")
	}
	return sr
}

// findScenarioFiles returns path itself when it is a file, or every .yaml
// and .yml file below it.
func findScenarioFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(filepath.Base(p), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	return files, err
}

// goldenFilePath returns the golden transcript path for a scenario file:
// golden/<name>.golden in the scenario's directory.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGolden(path, transcript string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(transcript), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
