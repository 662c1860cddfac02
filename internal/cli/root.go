package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/temporalq/internal/config"
	"github.com/roach88/temporalq/internal/harness"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/temporal"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose          bool
	Format           string // "json" | "text"
	Dialect          string
	UnresolvedMarker string // "drop" | "fail"
	RelationalNulls  bool

	dialect sqlgen.Dialect
	policy  temporal.UnresolvedPolicy
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Flag defaults come from the
// TEMPORALQ_* environment.
func NewRootCommand() *cobra.Command {
	cfg, envErr := config.Load()
	if envErr != nil {
		cfg = &config.Config{Dialect: "sqlite", Format: "text"}
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "temporalq",
		Short: "temporalq - point-in-time query translation",
		Long: `Translate entity queries into SQL that reads system-versioned tables
as of a late-bound instant.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			return opts.resolve()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", cfg.Dialect, "SQL dialect (sqlite|sqlserver)")
	cmd.PersistentFlags().StringVar(&opts.UnresolvedMarker, "unresolved-marker", cfg.UnresolvedMarker.String(),
		"what to do when AsOf is given a non-parameter value (drop|fail)")
	cmd.PersistentFlags().BoolVar(&opts.RelationalNulls, "relational-nulls", cfg.RelationalNulls,
		"keep x = @p comparisons when @p is null")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// resolve validates the flags and parses the typed values.
func (o *RootOptions) resolve() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	d, err := sqlgen.ParseDialect(o.Dialect)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --dialect", err)
	}
	p, err := temporal.ParsePolicy(o.UnresolvedMarker)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --unresolved-marker", err)
	}
	o.dialect, o.policy = d, p
	return nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// harnessConfig builds the run configuration. Pipeline logs go to stderr
// at debug level in verbose mode and are dropped otherwise.
func (o *RootOptions) harnessConfig(cmd *cobra.Command) harness.Config {
	var logger *slog.Logger
	if o.Verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return harness.Config{
		Dialect:         o.dialect,
		Policy:          o.policy,
		RelationalNulls: o.RelationalNulls,
		Logger:          logger,
	}
}
