package translate

import "fmt"

// Error codes for translation failures.
const (
	CodeUnsupportedMethod = "E301" // unknown method or wrong argument count
	CodeUnknownEntity     = "E302" // query root names no entity of the model
	CodeUnknownField      = "E303" // field reference resolves to no visible column
	CodeBadArgument       = "E304" // argument has the wrong node kind or value
	CodeUnexpectedNode    = "E305" // node kind not valid in this position
	CodeTemporalRequired  = "E306" // AsOf reached the base translator
)

// Error is a translation failure.
type Error struct {
	Code    string
	Method  string // method being translated; empty for roots
	Message string
}

func (e *Error) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Method, e.Message)
}

func errorf(code, method, format string, args ...any) *Error {
	return &Error{Code: code, Method: method, Message: fmt.Sprintf(format, args...)}
}
