package temporal

import (
	"github.com/roach88/temporalq/internal/nullability"
	"github.com/roach88/temporalq/internal/relational"
)

// Guard is a nullability.TableVisitor that passes temporal tables through
// untouched and hands every other table to Next.
type Guard struct {
	Next nullability.TableVisitor // nil uses nullability.DefaultTableVisitor
}

// VisitTable implements nullability.TableVisitor.
func (g Guard) VisitTable(t relational.TableExpr) relational.TableExpr {
	if tagged, ok := t.(*Table); ok {
		return tagged
	}
	next := g.Next
	if next == nil {
		next = nullability.DefaultTableVisitor{}
	}
	return next.VisitTable(t)
}
