package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/temporalq/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                    `json:"valid"`
	Entities []EntitySummary         `json:"entities,omitempty"`
	Errors   []model.ValidationError `json:"errors,omitempty"`
}

// EntitySummary describes one entity of a valid model.
type EntitySummary struct {
	Name     string `json:"name"`
	Table    string `json:"table"`
	Temporal bool   `json:"temporal"`
	History  string `json:"history,omitempty"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ model valid (%d entities)", len(r.Entities))
	for _, e := range r.Entities {
		if e.Temporal {
			fmt.Fprintf(&b, "\n  %s -> %s (history %s)", e.Name, e.Table, e.History)
		} else {
			fmt.Fprintf(&b, "\n  %s -> %s", e.Name, e.Table)
		}
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model-dir>",
		Short: "Validate an entity model",
		Long: `Load the CUE entity model in a directory and check it: key and
foreign-key columns, navigation targets, period columns and table names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("model directory not found: %s", dir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("model directory not found: %s", dir))
	}

	m, err := model.Load(dir)
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "load model", err)
	}

	result := ValidationResult{Valid: true}
	for _, e := range m.Entities() {
		formatter.VerboseLog("Validated entity: %s", e.Name)
		s := EntitySummary{Name: e.Name, Table: e.Table, Temporal: e.IsTemporal()}
		if e.Schema != "" {
			s.Table = e.Schema + "." + e.Table
		}
		if e.IsTemporal() {
			s.History = e.Temporal.History
		}
		result.Entities = append(result.Entities, s)
	}
	return formatter.Success(result)
}

func outputValidationErrors(formatter *OutputFormatter, errs model.ValidationErrors) error {
	if formatter.Format == "json" {
		_ = formatter.Error(errs[0].Code, fmt.Sprintf("%d validation error(s)", len(errs)), ValidationResult{Errors: errs})
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %d validation error(s)\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, "model validation failed")
}
