package expr

import "fmt"

// ValidationResult contains the structural analysis of a query.
type ValidationResult struct {
	// Errors are shapes no translator accepts (wrong arity, bad operands).
	Errors []string

	// Warnings are accepted shapes with surprising runtime behavior, such as
	// an AsOf value that is a literal and therefore cannot be captured as a
	// late-bound parameter.
	Warnings []string
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate walks the query and reports structural problems.
//
// Validate is a pure function with no side effects. Translators do not
// require it; it exists for tooling that wants diagnostics before
// compiling.
func Validate(e Expr) ValidationResult {
	v := &validator{}
	v.validateSource(e)
	return ValidationResult{Errors: v.errors, Warnings: v.warnings}
}

type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// arity holds the accepted argument counts (including the source) per method.
var arity = map[Method][2]int{
	MethodWhere:             {2, 2},
	MethodOrderBy:           {2, 2},
	MethodOrderByDescending: {2, 2},
	MethodTake:              {2, 2},
	MethodSelect:            {2, -1},
	MethodJoin:              {4, 4},
	MethodUnion:             {2, 2},
	MethodConcat:            {2, 2},
	MethodIntersect:         {2, 2},
	MethodExcept:            {2, 2},
	MethodInclude:           {2, 2},
	MethodAny:               {1, 2},
	MethodAsOf:              {2, 2},
}

// validateSource validates an expression in query-source position.
func (v *validator) validateSource(e Expr) {
	switch n := e.(type) {
	case nil:
		v.addError("nil query source")
	case *Source:
		if n.Entity == "" {
			v.addError("query root without entity")
		}
	case *Call:
		v.validateCall(n)
	default:
		v.addError("%T is not a query source", e)
	}
}

func (v *validator) validateCall(c *Call) {
	if c.Method == MethodUnknown {
		v.addError("unknown method %q", c.MethodName())
		return
	}
	bounds := arity[c.Method]
	if len(c.Args) < bounds[0] || (bounds[1] >= 0 && len(c.Args) > bounds[1]) {
		v.addError("%s: unexpected argument count %d", c.Method, len(c.Args))
		return
	}
	if c.Method == MethodAny {
		v.addError("Any is only valid inside a predicate")
		return
	}

	v.validateSource(c.Args[0])

	switch c.Method {
	case MethodWhere:
		v.validatePredicate(c.Args[1])
	case MethodSelect, MethodOrderBy, MethodOrderByDescending:
		for _, arg := range c.Args[1:] {
			if _, ok := arg.(*Field); !ok {
				v.addError("%s: expected field, got %T", c.Method, arg)
			}
		}
	case MethodTake:
		switch c.Args[1].(type) {
		case *Const, *Param:
		default:
			v.addError("Take: count must be a constant or parameter, got %T", c.Args[1])
		}
	case MethodJoin:
		v.validateSource(c.Args[1])
		for _, key := range c.Args[2:] {
			if _, ok := key.(*Field); !ok {
				v.addError("Join: key must be a field, got %T", key)
			}
		}
	case MethodUnion, MethodConcat, MethodIntersect, MethodExcept:
		v.validateSource(c.Args[1])
	case MethodInclude:
		if _, ok := c.Args[1].(*Const); !ok {
			v.addError("Include: navigation must be a constant name, got %T", c.Args[1])
		}
	case MethodAsOf:
		switch c.Args[1].(type) {
		case *Param:
		case *Const:
			v.addWarning("AsOf with a literal value cannot be captured as a parameter; temporal tagging depends on the unresolved-marker policy")
		default:
			v.addError("AsOf: value must be a parameter, got %T", c.Args[1])
		}
	}
}

// validatePredicate validates an expression in predicate position.
func (v *validator) validatePredicate(e Expr) {
	switch n := e.(type) {
	case nil:
		v.addError("nil predicate")
	case *Binary:
		v.validateOperand(n.Left)
		v.validateOperand(n.Right)
	case *Call:
		if n.Method != MethodAny {
			v.addError("%s is not a predicate", n.MethodName())
			return
		}
		if len(n.Args) < 1 || len(n.Args) > 2 {
			v.addError("Any: unexpected argument count %d", len(n.Args))
			return
		}
		v.validateSource(n.Args[0])
		if len(n.Args) == 2 {
			v.validatePredicate(n.Args[1])
		}
	case *Const:
		// Boolean literal predicates are accepted.
	default:
		v.addError("%T is not a predicate", e)
	}
}

func (v *validator) validateOperand(e Expr) {
	switch e.(type) {
	case *Field, *Param, *Const:
	case *Binary, *Call:
		v.validatePredicate(e)
	default:
		v.addError("%T is not a valid operand", e)
	}
}
