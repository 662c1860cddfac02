package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/temporalq/internal/model"
)

// Scenario defines one translation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is a directory of CUE files, relative to the scenario file.
	Model string `yaml:"model,omitempty"`

	// ModelSource is inline CUE, used instead of Model.
	ModelSource string `yaml:"model_source,omitempty"`

	// Dialect overrides the configured dialect ("sqlite", "sqlserver").
	Dialect string `yaml:"dialect,omitempty"`

	// Policy overrides the configured unresolved-marker policy.
	Policy string `yaml:"policy,omitempty"`

	Query QuerySpec `yaml:"query"`

	// Params are the late-bound parameter values for execution.
	Params map[string]any `yaml:"params,omitempty"`

	// Setup seeds the database before the query runs.
	Setup []SeedStep `yaml:"setup,omitempty"`

	// ExpectError makes the scenario pass only when compilation fails
	// with an error containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SeedStep writes one row. With Entity the row becomes a new version of
// that entity valid from At; with Table it is inserted as written, period
// columns included.
type SeedStep struct {
	Entity string         `yaml:"entity,omitempty"`
	Table  string         `yaml:"table,omitempty"`
	At     string         `yaml:"at,omitempty"`
	Row    map[string]any `yaml:"row"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of tags, rows, row_count, sql_contains.
	Type string `yaml:"type"`

	// Tables maps table alias to marker parameter name (tags).
	// An empty name means the table must be untagged.
	Tables map[string]string `yaml:"tables,omitempty"`

	// Rows are the expected rows (rows). Only listed columns are compared.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Text must appear in the generated SQL (sql_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertTags        = "tags"
	AssertRows        = "rows"
	AssertRowCount    = "row_count"
	AssertSQLContains = "sql_contains"
)

// LoadScenario reads and parses a scenario YAML file. A relative model
// path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every .yaml and .yml file in dir, ordered by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sc.Name]; ok {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", sc.Name, prev, path)
		}
		seen[sc.Name] = path
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// LoadModel compiles the scenario's model.
func (s *Scenario) LoadModel() (*model.Model, error) {
	if s.ModelSource != "" {
		return model.CompileString(s.ModelSource)
	}
	return model.Load(s.Model)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Model == "") == (s.ModelSource == "") {
		return fmt.Errorf("exactly one of model or model_source is required")
	}
	if s.Query.From == "" {
		return fmt.Errorf("query.from is required")
	}

	for i, step := range s.Setup {
		if (step.Entity == "") == (step.Table == "") {
			return fmt.Errorf("setup[%d]: exactly one of entity or table is required", i)
		}
		if len(step.Row) == 0 {
			return fmt.Errorf("setup[%d]: row is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(a Assertion, index int) error {
	switch a.Type {
	case AssertTags:
		if len(a.Tables) == 0 {
			return fmt.Errorf("assertions[%d]: tables is required for tags", index)
		}
	case AssertRows:
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows is required for rows", index)
		}
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertSQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sql_contains", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
