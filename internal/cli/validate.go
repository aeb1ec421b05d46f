package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/tandem/internal/harness"
	"github.com/roach88/tandem/internal/policy"
)

// FileResult is the validation outcome for one file.
type FileResult struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"` // "policy" or "scenario"
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results for every file.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// WriteText prints one line per file.
func (r ValidationResult) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		if f.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", f.Path, f.Kind)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s)\n  %s\n", f.Path, f.Kind, f.Error)
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check policy and scenario files",
		Long: `Check CUE policy files (.cue) against the policy schema and YAML
scenario files (.yaml, .yml) for structure, without running anything.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	f := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		fr := validateFile(path)
		f.VerboseLog("Validated %s: valid=%t", path, fr.Valid)
		if !fr.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	if !result.Valid {
		if err := f.Error(ErrCodeInvalid, "validation failed", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}
	return f.Success(result)
}

func validateFile(path string) FileResult {
	var (
		kind string
		err  error
	)
	switch filepath.Ext(path) {
	case ".cue":
		kind = "policy"
		_, err = policy.Load(path)
	case ".yaml", ".yml":
		kind = "scenario"
		_, err = harness.LoadScenario(path)
	default:
		return FileResult{Path: path, Kind: "unknown", Error: "unsupported file type (want .cue, .yaml or .yml)"}
	}

	if err != nil {
		return FileResult{Path: path, Kind: kind, Error: err.Error()}
	}
	return FileResult{Path: path, Kind: kind, Valid: true}
}
