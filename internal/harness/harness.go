package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/pipeline"
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/store"
	"github.com/roach88/temporalq/internal/temporal"
	"github.com/roach88/temporalq/internal/testutil"
)

// Config holds the defaults a scenario may override.
type Config struct {
	Dialect         sqlgen.Dialect // nil means SQLite
	Policy          temporal.UnresolvedPolicy
	RelationalNulls bool
	Logger          *slog.Logger // nil discards
	Parallelism     int          // RunAll concurrency; 0 means GOMAXPROCS
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// Run executes a scenario and returns the result.
//
// Failures of the scenario itself (compile errors, failed assertions) are
// reported in the result. The returned error is for problems running it:
// an unloadable model, a broken query spec or a database failure.
func Run(ctx context.Context, scenario *Scenario, cfg Config) (*Result, error) {
	m, err := scenario.LoadModel()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	q, err := scenario.Query.Build()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	dialect := cfg.Dialect
	if scenario.Dialect != "" {
		if dialect, err = sqlgen.ParseDialect(scenario.Dialect); err != nil {
			return nil, err
		}
	}
	if dialect == nil {
		dialect = sqlgen.SQLite
	}

	policy := cfg.Policy
	if scenario.Policy != "" {
		if policy, err = temporal.ParsePolicy(scenario.Policy); err != nil {
			return nil, err
		}
	}

	values, err := paramValues(scenario.Params)
	if err != nil {
		return nil, err
	}

	services := temporal.Register(pipeline.DefaultServices(), temporal.WithPolicy(policy))
	services.Logger = cfg.logger().With("scenario", scenario.Name)
	services.IDs = testutil.NewFixedIDGenerator(scenario.Name)
	compiler := pipeline.NewCompiler(m, services,
		pipeline.WithDialect(dialect),
		pipeline.WithRelationalNulls(cfg.RelationalNulls),
	)

	result := NewResult(scenario.Name)
	diag := expr.Validate(q.Expr)
	result.Warnings = append(diag.Warnings, diag.Errors...)
	for _, w := range result.Warnings {
		services.Logger.Warn("query diagnostic", "detail", w)
	}

	compiled, err := compiler.Compile(q.Expr)
	if scenario.ExpectError != "" {
		checkExpectedError(result, scenario.ExpectError, err)
		return result, nil
	}
	if err != nil {
		result.CompileErr = err
		result.AddError(err.Error())
		return result, nil
	}

	result.CompilationID = compiled.ID
	result.Tags = tagsOf(compiled.Tables())

	exec, err := compiled.Prepare(values)
	if err != nil {
		result.AddError(fmt.Sprintf("prepare: %v", err))
		return result, nil
	}
	result.SQL = exec.Command.SQL
	result.Parameters = exec.Command.ParameterNames()

	if needsExecution(scenario) {
		if dialect != sqlgen.SQLite {
			result.AddError(fmt.Sprintf("row assertions need the sqlite dialect, not %s", dialect.Name()))
			return result, nil
		}
		rows, err := execute(ctx, m, scenario.Setup, exec.Command, values)
		if err != nil {
			return nil, err
		}
		result.Rows = rows
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// RunAll runs scenarios concurrently. Results are in input order. The first
// error stops the remaining runs.
func RunAll(ctx context.Context, scenarios []*Scenario, cfg Config) ([]*Result, error) {
	limit := cfg.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Run(ctx, sc, cfg)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkExpectedError(result *Result, want string, err error) {
	switch {
	case err == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, compilation succeeded", want))
	case !containsFold(err.Error(), want):
		result.AddError(fmt.Sprintf("expected error containing %q, got %q", want, err.Error()))
	}
}

func needsExecution(s *Scenario) bool {
	for _, a := range s.Assertions {
		if a.Type == AssertRows || a.Type == AssertRowCount {
			return true
		}
	}
	return false
}

// execute seeds a fresh in-memory database and runs cmd against it.
func execute(ctx context.Context, m *model.Model, setup []SeedStep, cmd *sqlgen.Command, values map[string]ir.IRValue) ([]ir.IRObject, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx, m); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	for i, step := range setup {
		row, err := toIRObject(step.Row)
		if err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Table != "" {
			err = st.Insert(ctx, step.Table, row)
		} else {
			e, ok := m.Entity(step.Entity)
			if !ok {
				return nil, fmt.Errorf("setup[%d]: unknown entity %q", i, step.Entity)
			}
			err = st.Upsert(ctx, e, row, ir.IRString(step.At))
		}
		if err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	return st.Query(ctx, cmd, values)
}

// tagsOf maps each table alias to the name of its marker parameter.
func tagsOf(tables []relational.TableExpr) map[string]string {
	tags := make(map[string]string, len(tables))
	for _, t := range tables {
		name := ""
		if p := temporal.MarkerOf(t); p != nil {
			name = p.Name
		}
		tags[t.TableRef().Alias] = name
	}
	return tags
}

func paramValues(params map[string]any) (map[string]ir.IRValue, error) {
	values := make(map[string]ir.IRValue, len(params))
	for name, raw := range params {
		v, err := ir.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("params[%s]: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

func toIRObject(row map[string]any) (ir.IRObject, error) {
	obj := make(ir.IRObject, len(row))
	for k, raw := range row {
		v, err := ir.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", k, err)
		}
		obj[k] = v
	}
	return obj, nil
}

// sortedAliases returns the aliases of tags in order.
func sortedAliases(tags map[string]string) []string {
	aliases := make([]string, 0, len(tags))
	for a := range tags {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}

// Describe renders a scenario's query as written, for error messages.
func Describe(s *Scenario) string {
	q, err := s.Query.Build()
	if err != nil {
		return fmt.Sprintf("<invalid query: %v>", err)
	}
	return expr.Format(q.Expr)
}
