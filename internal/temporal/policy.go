package temporal

import (
	"errors"
	"fmt"
	"strings"
)

// UnresolvedPolicy decides what happens when an AsOf value is not a
// late-bound parameter.
type UnresolvedPolicy int

const (
	// PolicyDrop clears the capture for the annotated scope, logs a
	// warning and lets translation continue without temporal tagging.
	PolicyDrop UnresolvedPolicy = iota

	// PolicyFail aborts translation with a *MarkerError.
	PolicyFail
)

func (p UnresolvedPolicy) String() string {
	switch p {
	case PolicyDrop:
		return "drop"
	case PolicyFail:
		return "fail"
	default:
		return fmt.Sprintf("UnresolvedPolicy(%d)", int(p))
	}
}

// ParsePolicy parses "drop" or "fail".
func ParsePolicy(s string) (UnresolvedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return PolicyDrop, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicyDrop, fmt.Errorf("unknown unresolved-marker policy %q (expected drop or fail)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *UnresolvedPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p UnresolvedPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ErrUnresolvableMarker is matched by every *MarkerError.
var ErrUnresolvableMarker = errors.New("point-in-time value is not a late-bound parameter")

// MarkerError reports an AsOf value that could not be captured.
type MarkerError struct {
	Value string // the value expression as written
	Cause error  // translation failure of the value, if any
}

func (e *MarkerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AsOf(%s): %v: %v", e.Value, ErrUnresolvableMarker, e.Cause)
	}
	return fmt.Sprintf("AsOf(%s): %v", e.Value, ErrUnresolvableMarker)
}

// Unwrap exposes ErrUnresolvableMarker and the cause.
func (e *MarkerError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnresolvableMarker}
	}
	return []error{ErrUnresolvableMarker, e.Cause}
}
