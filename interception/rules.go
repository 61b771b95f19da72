package interception

import (
	"context"
	"reflect"
	"strings"
)

// Rule decides which behaviors apply to a target. Type applicability is
// evaluated once per target when its chain is built; method narrowing is
// re-checked on every invocation so a single chain can serve all of a
// target's methods.
type Rule interface {
	// AppliesTo reports whether the rule contributes behaviors for the target type
	AppliesTo(target reflect.Type) bool

	// MatchesMethod reports whether the rule's behaviors run for the named method
	MatchesMethod(method string) bool

	// Behaviors returns the behaviors the rule attaches, in order
	Behaviors() []Behavior

	// Name returns the rule name for logging and debugging
	Name() string
}

// TypeRule applies its behaviors to every method of any matching target type
type TypeRule struct {
	name      string
	match     func(reflect.Type) bool
	behaviors []Behavior
}

// NewTypeRule creates a rule matched purely on the target type
func NewTypeRule(name string, match func(reflect.Type) bool, behaviors ...Behavior) *TypeRule {
	return &TypeRule{name: name, match: match, behaviors: behaviors}
}

// AppliesTo implements Rule
func (r *TypeRule) AppliesTo(target reflect.Type) bool {
	return r.match(target)
}

// MatchesMethod implements Rule
func (r *TypeRule) MatchesMethod(method string) bool {
	return true
}

// Behaviors implements Rule
func (r *TypeRule) Behaviors() []Behavior {
	return r.behaviors
}

// Name implements Rule
func (r *TypeRule) Name() string {
	return r.name
}

// MethodRule narrows a type match down to individual methods
type MethodRule struct {
	name        string
	typeMatch   func(reflect.Type) bool
	methodMatch func(string) bool
	behaviors   []Behavior
}

// NewMethodRule creates a rule matched on target type and method name
func NewMethodRule(name string, typeMatch func(reflect.Type) bool, methodMatch func(string) bool, behaviors ...Behavior) *MethodRule {
	return &MethodRule{
		name:        name,
		typeMatch:   typeMatch,
		methodMatch: methodMatch,
		behaviors:   behaviors,
	}
}

// AppliesTo implements Rule
func (r *MethodRule) AppliesTo(target reflect.Type) bool {
	return r.typeMatch(target)
}

// MatchesMethod implements Rule
func (r *MethodRule) MatchesMethod(method string) bool {
	return r.methodMatch(method)
}

// Behaviors implements Rule
func (r *MethodRule) Behaviors() []Behavior {
	return r.behaviors
}

// Name implements Rule
func (r *MethodRule) Name() string {
	return r.name
}

// Type match helpers

// MatchAssignableTo matches any type assignable to iface, checking both the
// value and pointer forms of the candidate
func MatchAssignableTo(iface reflect.Type) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		if t == nil {
			return false
		}
		if t.AssignableTo(iface) {
			return true
		}
		if t.Kind() != reflect.Ptr {
			return reflect.PointerTo(t).AssignableTo(iface)
		}
		return false
	}
}

// MatchTypeName matches a type by its fully qualified or short name
func MatchTypeName(name string) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		if t == nil {
			return false
		}
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		return t.Name() == name || t.String() == name
	}
}

// MatchMethodPrefix matches method names beginning with prefix
func MatchMethodPrefix(prefix string) func(string) bool {
	return func(method string) bool {
		return strings.HasPrefix(method, prefix)
	}
}

// guardedBehavior defers a rule's method narrowing to invocation time: when
// the rule does not match the invoked method the behavior is a pass-through.
type guardedBehavior struct {
	rule  Rule
	inner Behavior
}

// Intercept implements Behavior
func (g *guardedBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	if !g.rule.MatchesMethod(inv.Method) {
		return next.Invoke(ctx, inv)
	}
	return g.inner.Intercept(ctx, inv, next)
}

// Name implements Behavior
func (g *guardedBehavior) Name() string {
	return g.inner.Name()
}
