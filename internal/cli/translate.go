package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/temporalq/internal/harness"
)

// TranslateResult is the output of the translate command.
type TranslateResult struct {
	Scenario   string            `json:"scenario"`
	Query      string            `json:"query"`
	SQL        string            `json:"sql"`
	Parameters []string          `json:"parameters"`
	Tags       map[string]string `json:"tags"`
	Warnings   []string          `json:"warnings,omitempty"`
}

func (r TranslateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\nParameters: ", r.Query, r.SQL)
	if len(r.Parameters) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(r.Parameters, ", "))
	}
	b.WriteString("\nTables:")
	for _, line := range harness.TagLines(r.Tags) {
		b.WriteString("\n  " + line)
	}
	for _, w := range r.Warnings {
		b.WriteString("\nwarning: " + w)
	}
	return b.String()
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <scenario.yaml>",
		Short: "Print the SQL and tagged tables for a scenario's query",
		Long: `Compile the query of a scenario file and print the generated SQL,
the late-bound parameters in placeholder order and the point-in-time
marker of every table. Assertions and seed data are ignored.

Examples:
  temporalq translate scenarios/include_as_of.yaml
  temporalq translate --dialect sqlserver scenarios/include_as_of.yaml
  temporalq translate --unresolved-marker fail --format json q.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(rootOpts, args[0], cmd)
		},
	}
}

func runTranslate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load scenario", err)
	}
	formatter.VerboseLog("Translating %s", harness.Describe(scenario))

	only := *scenario
	only.Assertions = nil
	only.ExpectError = ""

	result, err := harness.Run(context.Background(), &only, opts.harnessConfig(cmd))
	if err != nil {
		_ = formatter.Error(ErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "translate", err)
	}
	if !result.Pass {
		msg := strings.Join(result.Errors, "; ")
		_ = formatter.Error(ErrorCode(result.CompileErr), msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	return formatter.Success(TranslateResult{
		Scenario:   scenario.Name,
		Query:      harness.Describe(scenario),
		SQL:        result.SQL,
		Parameters: result.Parameters,
		Tags:       result.Tags,
		Warnings:   result.Warnings,
	})
}

