package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/temporal"
	"github.com/roach88/temporalq/internal/translate"
)

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"sql": "SELECT 1"}))
	require.NoError(t, formatter.Error("E301", "unsupported method", []string{"Foo"}))

	dec := json.NewDecoder(buf)
	var ok, failed CLIResponse
	require.NoError(t, dec.Decode(&ok))
	require.NoError(t, dec.Decode(&failed))

	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, map[string]any{"sql": "SELECT 1"}, ok.Data)

	assert.Equal(t, "error", failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "E301", failed.Error.Code)
	assert.Equal(t, "unsupported method", failed.Error.Message)
	assert.Equal(t, []any{"Foo"}, failed.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		absent  []string
	}{
		{"quiet", false, []string{"Error [E302]: unknown entity"}, []string{"Details:"}},
		{"verbose", true, []string{"Error [E302]: unknown entity", "Details: Nope"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}
			require.NoError(t, formatter.Error("E302", "unknown entity", "Nope"))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("loaded %d scenarios", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 scenarios\n", diag.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.Equal(t, "loaded 3 scenarios\n", diag.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "failed"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "load", errors.New("missing"))
	assert.Equal(t, "load: missing", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "missing")
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"translate", fmt.Errorf("compile: %w", &translate.Error{Code: translate.CodeUnknownEntity}), "E302"},
		{"marker", &temporal.MarkerError{Value: "1"}, ErrCodeMarker},
		{"model", model.ValidationErrors{{Code: model.ErrMissingKey}}, model.ErrMissingKey},
		{"other", errors.New("x"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}
