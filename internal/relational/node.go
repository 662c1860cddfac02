package relational

import (
	"fmt"

	"github.com/roach88/temporalq/internal/ir"
)

// Node is any node of the relational tree.
type Node interface {
	relNode() // Marker method - seals interface
}

// Source is an item of a FROM clause.
type Source interface {
	Node
	source()
}

// Scalar is a value-producing expression.
type Scalar interface {
	Node
	scalar()
}

// TableExpr is a physical table reference.
//
// *Table implements TableExpr, as does any struct embedding Table.
type TableExpr interface {
	Source
	// TableRef returns the embedded plain table.
	TableRef() *Table
}

// Table reads a physical table.
type Table struct {
	Name   string // physical table name
	Schema string // optional schema
	Alias  string // alias unique within a compilation
	Entity string // entity the table was produced for
}

func (*Table) relNode() {}
func (*Table) source()  {}

// TableRef implements TableExpr.
func (t *Table) TableRef() *Table { return t }

func (t *Table) String() string {
	name := t.Name
	if t.Schema != "" {
		name = t.Schema + "." + t.Name
	}
	if t.Alias == "" {
		return name
	}
	return name + " AS " + t.Alias
}

// JoinKind enumerates join types.
type JoinKind int

const (
	InnerJoin JoinKind = iota + 1
	LeftJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	default:
		return fmt.Sprintf("JoinKind(%d)", int(k))
	}
}

// Join combines two sources.
type Join struct {
	Kind  JoinKind
	Left  Source
	Right Source
	On    Scalar
}

func (*Join) relNode() {}
func (*Join) source()  {}

// Subquery is a derived table.
type Subquery struct {
	Select *Select
	Alias  string
}

func (*Subquery) relNode() {}
func (*Subquery) source()  {}

// SetKind enumerates set operations.
type SetKind int

const (
	Union SetKind = iota + 1
	UnionAll
	Intersect
	Except
)

func (k SetKind) String() string {
	switch k {
	case Union:
		return "UNION"
	case UnionAll:
		return "UNION ALL"
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return fmt.Sprintf("SetKind(%d)", int(k))
	}
}

// SetOperation is a derived table combining two selects row-wise.
type SetOperation struct {
	Kind  SetKind
	Left  *Select
	Right *Select
	Alias string
}

func (*SetOperation) relNode() {}
func (*SetOperation) source()  {}

// Ordering is one ORDER BY term.
type Ordering struct {
	Column     *Column
	Descending bool
}

// Select is a SELECT statement.
type Select struct {
	From       Source
	Where      Scalar // nil = no filter
	Projection []*Column
	OrderBy    []Ordering
	Limit      Scalar // nil = no limit
}

func (*Select) relNode() {}

// IsSimple reports whether s is a plain filtered read that can be merged
// into an enclosing FROM clause without a derived table.
func (s *Select) IsSimple() bool {
	return len(s.OrderBy) == 0 && s.Limit == nil
}

// Binding names an entity visible to field references and the source alias
// its columns are read from.
type Binding struct {
	Entity  string
	Alias   string
	Prefix  string   // output-name prefix for joined entities; empty for the primary
	Columns []string // available columns; nil means every column of Entity
}

// Shape describes how rows of a select materialize.
type Shape struct {
	Entity   string    // primary entity
	Includes []string  // eagerly loaded navigations, in order
	Sources  []Binding // Sources[0] is the primary entity
}

// ShapedQuery pairs a select with its materialization shape. It is the
// intermediate result of translating every query stage.
type ShapedQuery struct {
	Select *Select
	Shape  Shape
}

func (*ShapedQuery) relNode() {}

// Column references a column of a source alias.
type Column struct {
	Table string // source alias
	Name  string // column name within the source
	As    string // output name; empty means Name
}

func (*Column) relNode() {}
func (*Column) scalar()  {}

// OutputName is the name the column has in the result set.
func (c *Column) OutputName() string {
	if c.As != "" {
		return c.As
	}
	return c.Name
}

// Param is a late-bound parameter reference.
type Param struct {
	Name string
}

func (*Param) relNode() {}
func (*Param) scalar()  {}

// Literal is a constant value.
type Literal struct {
	Value ir.IRValue
}

func (*Literal) relNode() {}
func (*Literal) scalar()  {}

// BinaryOp enumerates SQL binary operators.
type BinaryOp int

const (
	OpEq BinaryOp = iota + 1
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpSQL = map[BinaryOp]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "AND",
	OpOr:  "OR",
}

// String returns the SQL spelling of op.
func (op BinaryOp) String() string {
	if s, ok := binaryOpSQL[op]; ok {
		return s
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// IsComparison reports whether op compares two values.
func (op BinaryOp) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    BinaryOp
	Left  Scalar
	Right Scalar
}

func (*Binary) relNode() {}
func (*Binary) scalar()  {}

// IsNull tests Operand for NULL (IS NOT NULL when Negated).
type IsNull struct {
	Operand Scalar
	Negated bool
}

func (*IsNull) relNode() {}
func (*IsNull) scalar()  {}

// Exists is true when Select returns at least one row.
type Exists struct {
	Select *Select
}

func (*Exists) relNode() {}
func (*Exists) scalar()  {}

// And conjoins two predicates, treating nil as TRUE.
func And(left, right Scalar) Scalar {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	default:
		return &Binary{Op: OpAnd, Left: left, Right: right}
	}
}
