package harness

import "github.com/roach88/temporalq/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	CompilationID string `json:"compilation_id,omitempty"`

	// SQL is the generated command text.
	SQL string `json:"sql,omitempty"`

	// Parameters lists the late-bound parameters in placeholder order.
	Parameters []string `json:"parameters,omitempty"`

	// Tags maps each table alias to its marker parameter name, or "" when
	// the table is untagged.
	Tags map[string]string `json:"tags,omitempty"`

	// Rows holds the executed result; nil when the query was not run.
	Rows []ir.IRObject `json:"rows,omitempty"`

	// Warnings are structural diagnostics that did not stop compilation.
	Warnings []string `json:"warnings,omitempty"`

	// CompileErr is the compilation failure, if any.
	CompileErr error `json:"-"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Tags:     make(map[string]string),
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
