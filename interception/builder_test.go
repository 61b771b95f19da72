package interception

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditedService struct{}

func (s *auditedService) Save(v string) string { return v }
func (s *auditedService) Load() string         { return "" }

type plainService struct{}

func (s *plainService) Ping() string { return "pong" }

// stub resolver
type stubResolver struct {
	behaviors  map[string]Behavior
	inCreation map[string]bool
	resolveErr map[string]error
	resolved   []string
}

func (r *stubResolver) Resolve(name string) (Behavior, error) {
	r.resolved = append(r.resolved, name)
	if err, ok := r.resolveErr[name]; ok {
		return nil, err
	}
	b, ok := r.behaviors[name]
	if !ok {
		return nil, errors.New("unknown behavior: " + name)
	}
	return b, nil
}

func (r *stubResolver) InCreation(name string) bool {
	return r.inCreation[name]
}

func passthrough(name string) Behavior {
	return NewBehaviorFunc(name, func(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
		return next.Invoke(ctx, inv)
	})
}

func names(behaviors []Behavior) []string {
	out := make([]string, len(behaviors))
	for i, b := range behaviors {
		out[i] = b.Name()
	}
	return out
}

func matchAudited(t reflect.Type) bool {
	return t == reflect.TypeOf(&auditedService{})
}

func TestChainBuilder(t *testing.T) {
	auditedType := reflect.TypeOf(&auditedService{})
	plainType := reflect.TypeOf(&plainService{})

	t.Run("Build returns empty non-nil slice when nothing applies", func(t *testing.T) {
		builder := NewChainBuilder()

		behaviors, err := builder.Build(plainType, "plain")

		require.NoError(t, err)
		assert.NotNil(t, behaviors)
		assert.Empty(t, behaviors)
	})

	t.Run("rule-sourced behaviors only apply to matching types", func(t *testing.T) {
		builder := NewChainBuilder(
			WithRules(NewTypeRule("audit", matchAudited, passthrough("audit"))),
		)

		audited, err := builder.Build(auditedType, "svc")
		require.NoError(t, err)
		assert.Equal(t, []string{"audit"}, names(audited))

		plain, err := builder.Build(plainType, "plain")
		require.NoError(t, err)
		assert.Empty(t, plain)
	})

	t.Run("specific behaviors precede global by default", func(t *testing.T) {
		resolver := &stubResolver{behaviors: map[string]Behavior{
			"g1": passthrough("g1"),
		}}
		builder := NewChainBuilder(
			WithRules(NewTypeRule("audit", matchAudited, passthrough("s1"), passthrough("s2"))),
			WithGlobalBehaviors("g1"),
			WithResolver(resolver),
		)

		behaviors, err := builder.Build(auditedType, "svc")

		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "s2", "g1"}, names(behaviors))
	})

	t.Run("apply global first reverses group order", func(t *testing.T) {
		resolver := &stubResolver{behaviors: map[string]Behavior{
			"g1": passthrough("g1"),
		}}
		builder := NewChainBuilder(
			WithRules(NewTypeRule("audit", matchAudited, passthrough("s1"))),
			WithGlobalBehaviors("g1"),
			WithResolver(resolver),
			WithApplyGlobalFirst(true),
		)

		behaviors, err := builder.Build(auditedType, "svc")

		require.NoError(t, err)
		assert.Equal(t, []string{"g1", "s1"}, names(behaviors))
	})

	t.Run("build order is deterministic", func(t *testing.T) {
		resolver := &stubResolver{behaviors: map[string]Behavior{
			"g1": passthrough("g1"),
			"g2": passthrough("g2"),
		}}
		builder := NewChainBuilder(
			WithRules(
				NewTypeRule("a", matchAudited, passthrough("a1")),
				NewTypeRule("b", matchAudited, passthrough("b1")),
			),
			WithGlobalBehaviors("g1", "g2"),
			WithResolver(resolver),
		)

		first, err := builder.Build(auditedType, "svc")
		require.NoError(t, err)
		second, err := builder.Build(auditedType, "svc")
		require.NoError(t, err)

		assert.Equal(t, names(first), names(second))
		assert.Equal(t, []string{"a1", "b1", "g1", "g2"}, names(first))
	})

	t.Run("source under construction is silently skipped", func(t *testing.T) {
		resolver := &stubResolver{
			behaviors:  map[string]Behavior{"g1": passthrough("g1"), "g2": passthrough("g2")},
			inCreation: map[string]bool{"g1": true},
		}
		builder := NewChainBuilder(
			WithGlobalBehaviors("g1", "g2"),
			WithResolver(resolver),
			WithRules(NewTypeRule("audit", matchAudited, passthrough("s1"))),
		)

		behaviors, err := builder.Build(auditedType, "svc")

		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "g2"}, names(behaviors))
		assert.NotContains(t, resolver.resolved, "g1")
	})

	t.Run("resolution failure propagates as rule evaluation error", func(t *testing.T) {
		resolver := &stubResolver{
			behaviors:  map[string]Behavior{},
			resolveErr: map[string]error{"g1": errors.New("construction failed")},
		}
		builder := NewChainBuilder(
			WithGlobalBehaviors("g1"),
			WithResolver(resolver),
		)

		_, err := builder.Build(auditedType, "svc")

		var ruleErr *RuleEvaluationError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "g1", ruleErr.Source)
	})

	t.Run("global behaviors without resolver is a configuration error", func(t *testing.T) {
		builder := NewChainBuilder(WithGlobalBehaviors("g1"))

		_, err := builder.Build(auditedType, "svc")

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("pre-filtered flag yields identical chains for applicable rules", func(t *testing.T) {
		rules := []Rule{
			NewTypeRule("a", matchAudited, passthrough("a1")),
			NewMethodRule("b", matchAudited, MatchMethodPrefix("Save"), passthrough("b1")),
		}

		plainBuilder := NewChainBuilder(WithRules(rules...))
		filteredBuilder := NewChainBuilder(WithRules(rules...), WithPreFiltered(true))

		plain, err := plainBuilder.Build(auditedType, "svc")
		require.NoError(t, err)
		filtered, err := filteredBuilder.Build(auditedType, "svc")
		require.NoError(t, err)

		assert.Equal(t, names(plain), names(filtered))
	})
}

func TestMethodRuleNarrowing(t *testing.T) {
	var intercepted []string
	record := NewBehaviorFunc("record", func(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
		intercepted = append(intercepted, inv.Method)
		return next.Invoke(ctx, inv)
	})

	builder := NewChainBuilder(
		WithRules(NewMethodRule("saves-only", matchAudited, MatchMethodPrefix("Save"), record)),
	)

	behaviors, err := builder.Build(reflect.TypeOf(&auditedService{}), "svc")
	require.NoError(t, err)
	chain := NewChain(nil, behaviors...)

	svc := &auditedService{}
	_, err = chain.Execute(context.Background(), NewInvocation(svc, "Save", "v"), ReflectiveInvoker{})
	require.NoError(t, err)
	_, err = chain.Execute(context.Background(), NewInvocation(svc, "Load"), ReflectiveInvoker{})
	require.NoError(t, err)

	// The behavior only ran for the matching method
	assert.Equal(t, []string{"Save"}, intercepted)
}

func TestTypeMatchHelpers(t *testing.T) {
	t.Run("MatchAssignableTo matches pointer receivers", func(t *testing.T) {
		match := MatchAssignableTo(reflect.TypeOf((*InvocationValidator)(nil)).Elem())

		assert.True(t, match(reflect.TypeOf(acceptAllValidator{})))
		assert.False(t, match(reflect.TypeOf(&plainService{})))
		assert.False(t, match(nil))
	})

	t.Run("MatchTypeName matches short and qualified names", func(t *testing.T) {
		match := MatchTypeName("plainService")

		assert.True(t, match(reflect.TypeOf(&plainService{})))
		assert.True(t, match(reflect.TypeOf(plainService{})))
		assert.False(t, match(reflect.TypeOf(&auditedService{})))
	})
}
