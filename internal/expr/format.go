package expr

import (
	"strings"

	"github.com/roach88/temporalq/internal/ir"
)

// Format renders e in method-chain syntax, e.g.
//
//	Employee.Where(Salary > @minSalary).AsOf(@asOf)
func Format(e Expr) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Source:
		b.WriteString(n.Entity)
	case *Param:
		b.WriteString("@" + n.Name)
	case *Const:
		b.WriteString(ir.String(n.Value))
	case *Field:
		if n.Entity != "" {
			b.WriteString(n.Entity + ".")
		}
		b.WriteString(n.Name)
	case *Binary:
		b.WriteString("(")
		format(b, n.Left)
		b.WriteString(" " + n.Op.String() + " ")
		format(b, n.Right)
		b.WriteString(")")
	case *Call:
		if len(n.Args) == 0 {
			b.WriteString(n.MethodName() + "()")
			return
		}
		format(b, n.Args[0])
		b.WriteString("." + n.MethodName() + "(")
		for i, arg := range n.Args[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, arg)
		}
		b.WriteString(")")
	default:
		b.WriteString("?")
	}
}

// String implements fmt.Stringer for Query.
func (q Query) String() string {
	return Format(q.Expr)
}
