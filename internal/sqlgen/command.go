package sqlgen

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/temporalq/internal/ir"
)

// ErrMissingParameter is returned by Args when a late-bound parameter has
// no value.
var ErrMissingParameter = errors.New("missing parameter value")

// Binding is one placeholder of a command.
type Binding struct {
	Name  string     // parameter name, or generated name for a constant
	Param bool       // true when the value is supplied at execution
	Value ir.IRValue // constant value when Param is false
}

// Command is generated SQL with its placeholder bindings.
type Command struct {
	SQL      string
	Bindings []Binding
	Named    bool // bind with sql.Named instead of positionally
}

// Args binds values to the command's placeholders, in placeholder order.
func (c *Command) Args(values map[string]ir.IRValue) ([]any, error) {
	args := make([]any, 0, len(c.Bindings))
	for _, b := range c.Bindings {
		v := b.Value
		if b.Param {
			var ok bool
			v, ok = values[b.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingParameter, b.Name)
			}
		}

		arg, err := ir.ToDriver(v)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.Name, err)
		}
		if c.Named {
			args = append(args, sql.Named(b.Name, arg))
		} else {
			args = append(args, arg)
		}
	}
	return args, nil
}

// ParameterNames returns the late-bound parameter names in placeholder
// order. Repeated placeholders repeat the name.
func (c *Command) ParameterNames() []string {
	var names []string
	for _, b := range c.Bindings {
		if b.Param {
			names = append(names, b.Name)
		}
	}
	return names
}
