package translate

import (
	"fmt"
	"log/slog"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/relational"
)

// TableFactory creates the table node for a query root.
type TableFactory interface {
	NewTable(entity *model.Entity, alias string) relational.TableExpr
}

// DefaultTableFactory creates plain *relational.Table nodes.
type DefaultTableFactory struct{}

// NewTable implements TableFactory.
func (DefaultTableFactory) NewTable(entity *model.Entity, alias string) relational.TableExpr {
	return &relational.Table{
		Name:   entity.Table,
		Schema: entity.Schema,
		Alias:  alias,
		Entity: entity.Name,
	}
}

// Dependencies are the collaborators of a translator.
type Dependencies struct {
	Model  *model.Model
	Tables TableFactory // nil uses DefaultTableFactory
	Logger *slog.Logger // nil uses slog.Default()
}

// Aliases hands out source aliases unique within one compilation.
//
// Not safe for concurrent use; a compilation is single-threaded.
type Aliases struct {
	next map[string]int
}

// NewAliases creates an empty alias generator.
func NewAliases() *Aliases {
	return &Aliases{next: make(map[string]int)}
}

// Next returns prefix followed by the next counter value for that prefix.
func (a *Aliases) Next(prefix string) string {
	n := a.next[prefix]
	a.next[prefix] = n + 1
	return fmt.Sprintf("%s%d", prefix, n)
}

// Translator is the base visitor. Child translators share the
// compilation's dependencies and alias generator.
type Translator struct {
	deps    Dependencies
	aliases *Aliases
}

// New creates a top-level translator with a fresh alias generator.
func New(deps Dependencies) *Translator {
	if deps.Tables == nil {
		deps.Tables = DefaultTableFactory{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Translator{deps: deps, aliases: NewAliases()}
}

// Child returns a translator for a sub-traversal of the same compilation.
func (t *Translator) Child() *Translator {
	return &Translator{deps: t.deps, aliases: t.aliases}
}

// Dependencies returns the translator's collaborators.
func (t *Translator) Dependencies() Dependencies {
	return t.deps
}

// Logger returns the compilation logger.
func (t *Translator) Logger() *slog.Logger {
	return t.deps.Logger
}

// VisitSource implements Visitor.
func (t *Translator) VisitSource(src *expr.Source) (relational.Node, error) {
	return t.TranslateSource(src)
}

// VisitCall implements Visitor.
func (t *Translator) VisitCall(call *expr.Call) (relational.Node, error) {
	return t.TranslateCall(t, call)
}

// Subquery implements Visitor.
func (t *Translator) Subquery() Visitor {
	return t.Child()
}

// TranslateSource builds the shaped query reading every row of an entity.
func (t *Translator) TranslateSource(src *expr.Source) (*relational.ShapedQuery, error) {
	entity, ok := t.deps.Model.Entity(src.Entity)
	if !ok {
		return nil, errorf(CodeUnknownEntity, "", "unknown entity %q", src.Entity)
	}

	alias := t.aliases.Next("t")
	table := t.deps.Tables.NewTable(entity, alias)

	projection := make([]*relational.Column, len(entity.Columns))
	for i, c := range entity.Columns {
		projection[i] = &relational.Column{Table: alias, Name: c.Name}
	}

	t.deps.Logger.Debug("translated query root",
		"entity", entity.Name,
		"table", entity.Table,
		"alias", alias,
	)

	return &relational.ShapedQuery{
		Select: &relational.Select{From: table, Projection: projection},
		Shape: relational.Shape{
			Entity:  entity.Name,
			Sources: []relational.Binding{{Entity: entity.Name, Alias: alias}},
		},
	}, nil
}

// TranslateCall translates one method call, recursing through self.
func (t *Translator) TranslateCall(self Visitor, call *expr.Call) (relational.Node, error) {
	if err := checkArity(call); err != nil {
		return nil, err
	}

	switch call.Method {
	case expr.MethodWhere:
		return t.translateWhere(self, call)
	case expr.MethodSelect:
		return t.translateSelect(self, call)
	case expr.MethodOrderBy, expr.MethodOrderByDescending:
		return t.translateOrderBy(self, call)
	case expr.MethodTake:
		return t.translateTake(self, call)
	case expr.MethodJoin:
		return t.translateJoin(self, call)
	case expr.MethodUnion, expr.MethodConcat, expr.MethodIntersect, expr.MethodExcept:
		return t.translateSetOperation(self, call)
	case expr.MethodInclude:
		return t.translateInclude(self, call)
	case expr.MethodAny:
		return nil, errorf(CodeUnexpectedNode, call.MethodName(), "only valid inside a predicate")
	case expr.MethodAsOf:
		return nil, errorf(CodeTemporalRequired, call.MethodName(), "requires temporal translator")
	default:
		return nil, errorf(CodeUnsupportedMethod, call.MethodName(), "method is not supported")
	}
}

// methodArity holds accepted argument counts, source included. A negative
// maximum means unbounded.
var methodArity = map[expr.Method][2]int{
	expr.MethodWhere:             {2, 2},
	expr.MethodSelect:            {2, -1},
	expr.MethodOrderBy:           {2, 2},
	expr.MethodOrderByDescending: {2, 2},
	expr.MethodTake:              {2, 2},
	expr.MethodJoin:              {4, 4},
	expr.MethodUnion:             {2, 2},
	expr.MethodConcat:            {2, 2},
	expr.MethodIntersect:         {2, 2},
	expr.MethodExcept:            {2, 2},
	expr.MethodInclude:           {2, 2},
	expr.MethodAny:               {1, 2},
	expr.MethodAsOf:              {2, 2},
}

func checkArity(call *expr.Call) error {
	bounds, ok := methodArity[call.Method]
	if !ok {
		return errorf(CodeUnsupportedMethod, call.MethodName(), "method is not supported")
	}
	n := len(call.Args)
	if n < bounds[0] || (bounds[1] >= 0 && n > bounds[1]) {
		return errorf(CodeUnsupportedMethod, call.MethodName(), "no overload takes %d arguments", n)
	}
	return nil
}
