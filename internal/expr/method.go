package expr

import "strings"

// Method is the closed set of query methods the translators recognize.
type Method int

const (
	MethodUnknown Method = iota

	// Shape-preserving operators.
	MethodWhere             // source, predicate
	MethodOrderBy           // source, key field
	MethodOrderByDescending // source, key field
	MethodTake              // source, count (Const or Param)

	// Projection.
	MethodSelect // source, fields...

	// Composition.
	MethodJoin      // outer, inner, outer key, inner key
	MethodUnion     // left, right
	MethodConcat    // left, right
	MethodIntersect // left, right
	MethodExcept    // left, right
	MethodInclude   // source, navigation name (Const string)

	// Predicates over subqueries.
	MethodAny // source[, predicate]

	// Temporal annotation: source, point-in-time value.
	MethodAsOf
)

var methodNames = map[Method]string{
	MethodUnknown:           "Unknown",
	MethodWhere:             "Where",
	MethodOrderBy:           "OrderBy",
	MethodOrderByDescending: "OrderByDescending",
	MethodTake:              "Take",
	MethodSelect:            "Select",
	MethodJoin:              "Join",
	MethodUnion:             "Union",
	MethodConcat:            "Concat",
	MethodIntersect:         "Intersect",
	MethodExcept:            "Except",
	MethodInclude:           "Include",
	MethodAny:               "Any",
	MethodAsOf:              "AsOf",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "Unknown"
}

// ParseMethod maps a method name (case-insensitive, underscores ignored)
// to its Method. Unrecognized names return MethodUnknown.
func ParseMethod(name string) Method {
	key := strings.ToLower(strings.ReplaceAll(name, "_", ""))
	for m, s := range methodNames {
		if m != MethodUnknown && strings.ToLower(s) == key {
			return m
		}
	}
	return MethodUnknown
}

// IsSetOperation reports whether m combines two sources row-wise.
func (m Method) IsSetOperation() bool {
	switch m {
	case MethodUnion, MethodConcat, MethodIntersect, MethodExcept:
		return true
	default:
		return false
	}
}
