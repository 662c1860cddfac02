package expr

import (
	"fmt"

	"github.com/roach88/temporalq/internal/ir"
)

// Expr is a node of the query expression tree.
//
// Node types:
//   - Source: a query root over an entity
//   - Param: a late-bound parameter, valued at execution time
//   - Const: a literal value
//   - Field: a column reference inside a predicate or projection
//   - Binary: a comparison or boolean connective
//   - Call: a query method applied to its arguments
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Source is a query root: "all rows of Entity".
type Source struct {
	Entity string // Entity name from the model (e.g., "Employee")
}

func (*Source) exprNode() {}

// Param is a late-bound value supplied when the compiled query executes.
// The same compiled query may run many times with different values.
type Param struct {
	Name string
}

func (*Param) exprNode() {}

// Const is a literal value embedded in the query.
type Const struct {
	Value ir.IRValue
}

func (*Const) exprNode() {}

// Field references a column of an entity in scope.
// An empty Entity means the primary entity of the enclosing source.
type Field struct {
	Entity string
	Name   string
}

func (*Field) exprNode() {}

// BinaryOp enumerates comparison and boolean operators.
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

var binaryOpNames = map[BinaryOp]string{
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "&&",
	OpOr:  "||",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Call applies a query method. Args[0] is always the source being operated
// on; the remaining arguments depend on Method.
type Call struct {
	Method Method
	Name   string // Original method name; informational for MethodUnknown
	Args   []Expr
}

func (*Call) exprNode() {}

// Arg returns the i-th argument or nil when out of range.
func (c *Call) Arg(i int) Expr {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// MethodName returns Name if set, otherwise the Method's canonical name.
func (c *Call) MethodName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Method.String()
}
