package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/nullability"
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/translate"
)

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithDialect sets the SQL dialect.
//
// Default: sqlgen.SQLite
func WithDialect(d sqlgen.Dialect) CompilerOption {
	return func(c *Compiler) {
		c.dialect = d
	}
}

// WithRelationalNulls keeps `x = @p` comparisons even when @p is null.
func WithRelationalNulls(enabled bool) CompilerOption {
	return func(c *Compiler) {
		c.useRelationalNulls = enabled
	}
}

// Compiler translates queries against one model.
//
// Thread-safety: Compile may be called concurrently; every compilation
// gets its own visitor and relational tree.
type Compiler struct {
	model              *model.Model
	services           *Services
	dialect            sqlgen.Dialect
	useRelationalNulls bool
}

// NewCompiler creates a compiler. A nil services uses DefaultServices.
func NewCompiler(m *model.Model, s *Services, opts ...CompilerOption) *Compiler {
	if s == nil {
		s = DefaultServices()
	}
	c := &Compiler{
		model:    m,
		services: s.withDefaults(),
		dialect:  sqlgen.SQLite,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the compiler's SQL dialect.
func (c *Compiler) Dialect() sqlgen.Dialect {
	return c.dialect
}

// Compile translates q with a fresh top-level visitor.
func (c *Compiler) Compile(q expr.Expr) (*Query, error) {
	id := c.services.IDs.Generate()
	logger := c.services.Logger.With("compilation_id", id)

	visitor := c.services.Translators.Create(translate.Dependencies{
		Model:  c.model,
		Tables: c.services.Tables,
		Logger: logger,
	})

	shaped, err := translate.Translate(visitor, q)
	if err != nil {
		logger.Debug("compilation failed", "error", err)
		return nil, fmt.Errorf("compile %s: %w", expr.Format(q), err)
	}

	logger.Info("query compiled",
		"entity", shaped.Shape.Entity,
		"tables", len(relational.Tables(shaped)),
	)

	return &Query{
		ID:        id,
		Expr:      q,
		Shaped:    shaped,
		processor: c.services.Processors.Create(c.useRelationalNulls),
		generator: c.services.Generators.Create(c.dialect),
		logger:    logger,
	}, nil
}

// Query is a compiled query.
type Query struct {
	ID     string
	Expr   expr.Expr
	Shaped *relational.ShapedQuery

	processor *nullability.Processor
	generator *sqlgen.Generator
	logger    *slog.Logger
}

// Execution is a query prepared for one set of parameter values.
type Execution struct {
	Select   *relational.Select // processed select the command was generated from
	Command  *sqlgen.Command
	Args     []any
	CanCache bool // false when the SQL depends on which values were null
}

// Prepare processes and renders the query for values.
func (q *Query) Prepare(values map[string]ir.IRValue) (*Execution, error) {
	sel, canCache, err := q.processor.Process(q.Shaped.Select, values)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	cmd, err := q.generator.Generate(sel)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	args, err := cmd.Args(values)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("command prepared",
		"query_hash", ir.QueryHash(cmd.SQL, cmd.ParameterNames()),
		"can_cache", canCache,
	)

	return &Execution{Select: sel, Command: cmd, Args: args, CanCache: canCache}, nil
}

// Command is Prepare without the processed tree.
func (q *Query) Command(values map[string]ir.IRValue) (*sqlgen.Command, error) {
	exec, err := q.Prepare(values)
	if err != nil {
		return nil, err
	}
	return exec.Command, nil
}

// Tables returns the table references of the compiled tree.
func (q *Query) Tables() []relational.TableExpr {
	return relational.Tables(q.Shaped)
}
