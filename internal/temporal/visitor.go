package temporal

import (
	"log/slog"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/translate"
)

// Option configures a Visitor.
type Option func(*options)

type options struct {
	marker *relational.Param
	policy UnresolvedPolicy
	logger *slog.Logger
}

// WithMarker seeds the top-level visitor with a marker, as if the whole
// query were wrapped in AsOf(p).
func WithMarker(p *relational.Param) Option {
	return func(o *options) {
		o.marker = p
	}
}

// WithPolicy sets the unresolved-marker policy.
//
// Default: PolicyDrop.
func WithPolicy(p UnresolvedPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger overrides the translator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Visitor is a translate.Visitor that propagates AsOf markers.
//
// The capture slot belongs to this instance. Subquery copies it into the
// child; nothing flows back.
type Visitor struct {
	base   *translate.Translator
	marker *relational.Param
	policy UnresolvedPolicy
	logger *slog.Logger
}

// NewVisitor wraps base.
func NewVisitor(base *translate.Translator, opts ...Option) *Visitor {
	o := options{policy: PolicyDrop}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = base.Logger()
	}
	return &Visitor{base: base, marker: o.marker, policy: o.policy, logger: o.logger}
}

// Marker returns the currently captured marker, or nil.
func (v *Visitor) Marker() *relational.Param {
	return v.marker
}

// VisitSource translates a query root and stamps the held marker onto its
// temporal tables.
func (v *Visitor) VisitSource(src *expr.Source) (relational.Node, error) {
	sq, err := v.base.TranslateSource(src)
	if err != nil {
		return nil, err
	}
	if n := v.Stamp(sq); n > 0 {
		v.logger.Debug("stamped point-in-time marker",
			"entity", src.Entity,
			"marker", v.marker.Name,
			"tables", n,
		)
	}
	return sq, nil
}

// Stamp applies the held marker to every untagged temporal table reachable
// from n. It is a no-op without a marker and idempotent with one.
func (v *Visitor) Stamp(n relational.Node) int {
	return StampTables(n, v.marker)
}

// VisitCall captures AsOf markers and delegates every other call.
func (v *Visitor) VisitCall(call *expr.Call) (relational.Node, error) {
	switch call.Method {
	case expr.MethodAsOf:
		if len(call.Args) != 2 {
			break
		}
		if err := v.capture(call.Args[1]); err != nil {
			return nil, err
		}
		return translate.Visit(v, call.Args[0])
	}
	return v.base.TranslateCall(v, call)
}

// capture resolves value and stores it in the slot, overwriting any
// previous capture.
func (v *Visitor) capture(value expr.Expr) error {
	resolved, err := translate.Visit(v, value)
	if err == nil {
		if p, ok := resolved.(*relational.Param); ok {
			v.marker = p
			v.logger.Debug("captured point-in-time marker", "marker", p.Name)
			return nil
		}
	}

	merr := &MarkerError{Value: expr.Format(value), Cause: err}
	if v.policy == PolicyFail {
		return merr
	}
	v.marker = nil
	v.logger.Warn("point-in-time value is not a parameter; temporal tagging dropped",
		"value", merr.Value,
		"policy", v.policy.String(),
	)
	return nil
}

// Subquery returns a child visitor holding a copy of the current marker.
func (v *Visitor) Subquery() translate.Visitor {
	return &Visitor{
		base:   v.base.Child(),
		marker: v.marker,
		policy: v.policy,
		logger: v.logger,
	}
}
