package relational

import (
	"fmt"
	"strings"

	"github.com/roach88/temporalq/internal/ir"
)

// Print renders n as an indented tree for debugging and golden files.
// Table nodes are rendered with their String method, so types embedding
// Table can add their own annotations.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n, 0)
	return b.String()
}

func printNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node := n.(type) {
	case nil:
		fmt.Fprintf(b, "%s<nil>\n", indent)
	case *ShapedQuery:
		fmt.Fprintf(b, "%sShapedQuery entity=%s", indent, node.Shape.Entity)
		if len(node.Shape.Includes) > 0 {
			fmt.Fprintf(b, " includes=%s", strings.Join(node.Shape.Includes, ","))
		}
		b.WriteString("\n")
		printNode(b, node.Select, depth+1)
	case *Select:
		cols := make([]string, len(node.Projection))
		for i, c := range node.Projection {
			cols[i] = FormatScalar(c)
		}
		fmt.Fprintf(b, "%sSelect [%s]\n", indent, strings.Join(cols, ", "))
		if node.From != nil {
			printNode(b, node.From, depth+1)
		}
		if node.Where != nil {
			fmt.Fprintf(b, "%s  Where %s\n", indent, FormatScalar(node.Where))
		}
		for _, o := range node.OrderBy {
			dir := "ASC"
			if o.Descending {
				dir = "DESC"
			}
			fmt.Fprintf(b, "%s  OrderBy %s %s\n", indent, FormatScalar(o.Column), dir)
		}
		if node.Limit != nil {
			fmt.Fprintf(b, "%s  Limit %s\n", indent, FormatScalar(node.Limit))
		}
	case *Join:
		fmt.Fprintf(b, "%s%s ON %s\n", indent, node.Kind, FormatScalar(node.On))
		printNode(b, node.Left, depth+1)
		printNode(b, node.Right, depth+1)
	case *Subquery:
		fmt.Fprintf(b, "%sSubquery AS %s\n", indent, node.Alias)
		printNode(b, node.Select, depth+1)
	case *SetOperation:
		fmt.Fprintf(b, "%s%s AS %s\n", indent, node.Kind, node.Alias)
		printNode(b, node.Left, depth+1)
		printNode(b, node.Right, depth+1)
	case TableExpr:
		fmt.Fprintf(b, "%sTable %v\n", indent, node)
	case Scalar:
		fmt.Fprintf(b, "%s%s\n", indent, FormatScalar(node))
	default:
		fmt.Fprintf(b, "%s%T\n", indent, n)
	}
}

// FormatScalar renders a scalar in SQL-like infix form.
func FormatScalar(s Scalar) string {
	switch node := s.(type) {
	case nil:
		return "TRUE"
	case *Column:
		name := node.Name
		if node.Table != "" {
			name = node.Table + "." + node.Name
		}
		if node.As != "" {
			name += " AS " + node.As
		}
		return name
	case *Param:
		return "@" + node.Name
	case *Literal:
		return ir.String(node.Value)
	case *Binary:
		return "(" + FormatScalar(node.Left) + " " + node.Op.String() + " " + FormatScalar(node.Right) + ")"
	case *IsNull:
		if node.Negated {
			return FormatScalar(node.Operand) + " IS NOT NULL"
		}
		return FormatScalar(node.Operand) + " IS NULL"
	case *Exists:
		tables := Tables(node.Select)
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = fmt.Sprint(t)
		}
		return "EXISTS(" + strings.Join(names, ", ") + ")"
	default:
		return fmt.Sprintf("%T", s)
	}
}
