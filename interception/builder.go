package interception

import (
	"log/slog"
	"reflect"
)

// Resolver resolves globally configured behaviors by name. It is the narrow
// view of the construction pipeline the builder needs: resolution plus the
// ability to ask whether a named source is itself mid-construction.
type Resolver interface {
	// Resolve returns the behavior registered under name
	Resolve(name string) (Behavior, error)

	// InCreation reports whether the named source is currently being constructed
	InCreation(name string) bool
}

// ChainBuilder computes the ordered behavior list for a target type, merging
// globally configured behaviors with the ones contributed by matching rules.
type ChainBuilder struct {
	globalNames      []string
	resolver         Resolver
	rules            []Rule
	applyGlobalFirst bool
	preFiltered      bool
	logger           *slog.Logger
}

// BuilderOption configures the ChainBuilder
type BuilderOption func(*ChainBuilder)

// WithResolver sets the resolver used for globally configured behaviors
func WithResolver(resolver Resolver) BuilderOption {
	return func(b *ChainBuilder) {
		b.resolver = resolver
	}
}

// WithGlobalBehaviors sets the names of globally configured behaviors, in
// application order
func WithGlobalBehaviors(names ...string) BuilderOption {
	return func(b *ChainBuilder) {
		b.globalNames = append(b.globalNames, names...)
	}
}

// WithRules adds rules to the builder
func WithRules(rules ...Rule) BuilderOption {
	return func(b *ChainBuilder) {
		b.rules = append(b.rules, rules...)
	}
}

// WithApplyGlobalFirst controls whether global behaviors precede rule-sourced
// ones. Default is false: rule-sourced behaviors run first.
func WithApplyGlobalFirst(first bool) BuilderOption {
	return func(b *ChainBuilder) {
		b.applyGlobalFirst = first
	}
}

// WithPreFiltered skips the per-rule type test, for callers that guarantee
// every configured rule already applies to the targets they build for. This
// is purely an optimization: for rule sets where the guarantee holds the
// resulting chains are identical with the flag on or off.
func WithPreFiltered(preFiltered bool) BuilderOption {
	return func(b *ChainBuilder) {
		b.preFiltered = preFiltered
	}
}

// WithBuilderLogger sets the logger
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *ChainBuilder) {
		b.logger = logger
	}
}

// NewChainBuilder creates a new chain builder
func NewChainBuilder(options ...BuilderOption) *ChainBuilder {
	b := &ChainBuilder{
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(b)
	}

	return b
}

// AddRule registers an additional rule
func (b *ChainBuilder) AddRule(rule Rule) {
	b.rules = append(b.rules, rule)
}

// Rules returns the configured rules in source order
func (b *ChainBuilder) Rules() []Rule {
	out := make([]Rule, len(b.rules))
	copy(out, b.rules)
	return out
}

// Build computes the ordered behaviors for the given target type. name is the
// target's logical name, used for resolution diagnostics only. The returned
// slice is empty, never nil, when nothing applies.
func (b *ChainBuilder) Build(target reflect.Type, name string) ([]Behavior, error) {
	global, err := b.resolveGlobal(name)
	if err != nil {
		return nil, err
	}

	specific := b.specificFor(target)

	merged := make([]Behavior, 0, len(global)+len(specific))
	if b.applyGlobalFirst {
		merged = append(merged, global...)
		merged = append(merged, specific...)
	} else {
		merged = append(merged, specific...)
		merged = append(merged, global...)
	}

	b.logger.Debug("built behavior chain",
		"target", target.String(),
		"name", name,
		"globalCount", len(global),
		"specificCount", len(specific),
	)

	return merged, nil
}

// resolveGlobal resolves the globally configured behaviors, skipping any
// source that is itself mid-construction. A source excluded by the guard is
// not an error; a source that fails to resolve is.
func (b *ChainBuilder) resolveGlobal(target string) ([]Behavior, error) {
	if len(b.globalNames) == 0 {
		return nil, nil
	}
	if b.resolver == nil {
		return nil, &ConfigurationError{
			Component: "chain builder",
			Reason:    "global behaviors configured but no resolver supplied",
		}
	}

	resolved := make([]Behavior, 0, len(b.globalNames))
	for _, name := range b.globalNames {
		if b.resolver.InCreation(name) {
			b.logger.Debug("skipping behavior source under construction",
				"behavior", name,
				"target", target,
			)
			continue
		}

		behavior, err := b.resolver.Resolve(name)
		if err != nil {
			return nil, &RuleEvaluationError{Source: name, Err: err}
		}
		resolved = append(resolved, behavior)
	}
	return resolved, nil
}

// specificFor gathers rule-sourced behaviors for the target type, wrapping
// each in a method guard so narrowing happens per invocation.
func (b *ChainBuilder) specificFor(target reflect.Type) []Behavior {
	var specific []Behavior
	for _, rule := range b.rules {
		if !b.preFiltered && !rule.AppliesTo(target) {
			continue
		}
		for _, behavior := range rule.Behaviors() {
			specific = append(specific, &guardedBehavior{rule: rule, inner: behavior})
		}
	}
	return specific
}
