package proxy

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/glimte/weave-go/interception"
	"github.com/puzpuzpuz/xsync/v3"
)

// Infrastructure marks a type as belonging to the interception mechanism
// itself. Infrastructure objects are never wrapped.
type Infrastructure interface {
	InfrastructureRole()
}

var (
	behaviorType       = reflect.TypeOf((*interception.Behavior)(nil)).Elem()
	ruleType           = reflect.TypeOf((*interception.Rule)(nil)).Elem()
	chainType          = reflect.TypeOf((*interception.Chain)(nil))
	infrastructureType = reflect.TypeOf((*Infrastructure)(nil)).Elem()
)

// SkipFunc lets callers exclude objects from wrapping before rule evaluation
type SkipFunc func(t reflect.Type, name string) bool

// earlyExposure records one prematurely exposed instance together with what
// was handed out for it, so the normal post-initialization path can detect
// that wrapping already happened.
type earlyExposure struct {
	raw     any
	exposed any
}

// Registry decides per object whether to wrap and produces the wrapper at
// most once per identity key per construction cycle. It exposes the three
// hook points consumed by the construction pipeline.
type Registry struct {
	cache         *Cache
	builder       *interception.ChainBuilder
	earlyRefs     *xsync.MapOf[Key, earlyExposure]
	targetSourced *xsync.MapOf[string, struct{}]
	creators      []TargetProviderCreator
	skip          SkipFunc
	logger        *slog.Logger
}

// RegistryOption configures the proxy registry
type RegistryOption func(*Registry)

// WithCache sets the classification cache, shared when several registries
// must agree on decisions
func WithCache(cache *Cache) RegistryOption {
	return func(r *Registry) {
		r.cache = cache
	}
}

// WithTargetProviderCreators registers custom target provider creators
func WithTargetProviderCreators(creators ...TargetProviderCreator) RegistryOption {
	return func(r *Registry) {
		r.creators = append(r.creators, creators...)
	}
}

// WithSkipFunc sets an additional exclusion predicate evaluated before rule
// evaluation
func WithSkipFunc(skip SkipFunc) RegistryOption {
	return func(r *Registry) {
		r.skip = skip
	}
}

// WithRegistryLogger sets the logger
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a proxy registry around the given chain builder
func NewRegistry(builder *interception.ChainBuilder, options ...RegistryOption) *Registry {
	r := &Registry{
		builder:       builder,
		earlyRefs:     xsync.NewMapOf[Key, earlyExposure](),
		targetSourced: xsync.NewMapOf[string, struct{}](),
		logger:        slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	if r.cache == nil {
		r.cache = NewCache()
	}

	return r
}

// Cache returns the registry's classification cache
func (r *Registry) Cache() *Cache {
	return r.cache
}

// OnPreConstruction is called by the pipeline before normal instantiation.
// When a custom target provider applies, the wrapper is created eagerly and
// returned; the pipeline then skips instantiation, population and
// initialization entirely. Otherwise nil is returned and construction
// proceeds normally.
func (r *Registry) OnPreConstruction(t reflect.Type, name string) (any, error) {
	key := KeyFor(t, name)

	if name == "" || !r.isTargetSourced(name) {
		if r.cache.Classification(key) != ClassificationUnknown {
			return nil, nil
		}
		if r.isInfrastructure(t) || r.shouldSkip(t, name) {
			r.cache.SetClassification(key, ClassificationNoWrap)
			return nil, nil
		}
	}

	provider := r.customProviderFor(t, name)
	if provider == nil {
		return nil, nil
	}

	if name != "" {
		r.targetSourced.Store(name, struct{}{})
	}

	behaviors, err := r.builder.Build(t, name)
	if err != nil {
		return nil, err
	}

	wrapper := r.CreateWrapper(t, key, behaviors, provider)
	r.cache.SetClassification(key, ClassificationNeedsWrap)

	r.logger.Debug("created eager wrapper from custom target provider",
		"key", key.String(),
		"target", t.String(),
	)

	return wrapper, nil
}

// OnEarlyExposure is called when a dependency cycle forces premature
// visibility of a not-fully-populated instance. The instance is recorded so
// the later post-initialization hook can avoid wrapping it twice.
func (r *Registry) OnEarlyExposure(obj any, name string) (any, error) {
	key := KeyFor(reflect.TypeOf(obj), name)
	return r.EarlyReference(obj, key)
}

// EarlyReference records the exposed instance against key and immediately
// attempts classification and wrap with the current, possibly partial, state
func (r *Registry) EarlyReference(obj any, key Key) (any, error) {
	exposed, err := r.WrapIfEligible(obj, key)
	if err != nil {
		return nil, err
	}

	r.earlyRefs.Store(key, earlyExposure{raw: obj, exposed: exposed})
	return exposed, nil
}

// OnPostInitialization is the normal post-construction hook. When the same
// instance was already exposed early, the wrapper produced at exposure time
// is returned; a replaced instance is classified and wrapped afresh.
func (r *Registry) OnPostInitialization(obj any, name string) (any, error) {
	if obj == nil {
		return nil, nil
	}

	key := KeyFor(reflect.TypeOf(obj), name)
	if early, loaded := r.earlyRefs.LoadAndDelete(key); loaded {
		// Identity comparison: only the unchanged instance reuses the early
		// wrap result.
		if sameInstance(early.raw, obj) {
			return early.exposed, nil
		}
	}

	return r.WrapIfEligible(obj, key)
}

// WrapIfEligible classifies obj and wraps it when rule evaluation yields a
// non-empty chain. The no-wrap decision is cached and never revisited; rule
// evaluation errors propagate and are not cached.
func (r *Registry) WrapIfEligible(obj any, key Key) (any, error) {
	if key.Named() && r.isTargetSourced(key.name) {
		return obj, nil
	}
	if r.cache.Classification(key) == ClassificationNoWrap {
		return obj, nil
	}

	t := reflect.TypeOf(obj)
	if r.isInfrastructure(t) || r.shouldSkip(t, key.name) {
		r.cache.SetClassification(key, ClassificationNoWrap)
		return obj, nil
	}

	behaviors, err := r.builder.Build(t, key.name)
	if err != nil {
		return nil, fmt.Errorf("rule evaluation failed for %s: %w", key.String(), err)
	}

	if len(behaviors) == 0 {
		r.cache.SetClassification(key, ClassificationNoWrap)
		return obj, nil
	}

	wrapper := r.CreateWrapper(t, key, behaviors, NewSingletonTarget(obj))
	r.cache.SetClassification(key, ClassificationNeedsWrap)

	r.logger.Debug("wrapped object",
		"key", key.String(),
		"target", t.String(),
		"behaviorCount", len(behaviors),
	)

	return wrapper, nil
}

// CreateWrapper is the low-level construction entrypoint, also usable for
// explicit wrapping outside the normal lifecycle
func (r *Registry) CreateWrapper(t reflect.Type, key Key, behaviors []interception.Behavior, provider TargetProvider) *Wrapper {
	chain := interception.NewChain(r.logger, behaviors...)
	wrapper := NewWrapper(chain, provider)
	r.cache.SetWrapperType(key, reflect.TypeOf(wrapper))
	return wrapper
}

// isInfrastructure reports whether t belongs to the interception mechanism
// itself. Wrapping infrastructure would feed the mechanism back into itself.
func (r *Registry) isInfrastructure(t reflect.Type) bool {
	if t == nil {
		return false
	}

	for _, role := range []reflect.Type{behaviorType, ruleType, infrastructureType} {
		if t.AssignableTo(role) {
			return true
		}
		if t.Kind() != reflect.Ptr && reflect.PointerTo(t).AssignableTo(role) {
			return true
		}
	}
	return t == chainType || t == reflect.TypeOf((*Wrapper)(nil))
}

func (r *Registry) shouldSkip(t reflect.Type, name string) bool {
	return r.skip != nil && r.skip(t, name)
}

func (r *Registry) isTargetSourced(name string) bool {
	_, ok := r.targetSourced.Load(name)
	return ok
}

// sameInstance compares by identity, not equality: pointer instances compare
// by address, everything else is a different instance unless trivially equal.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return va.Type().Comparable() && a == b
}

func (r *Registry) customProviderFor(t reflect.Type, name string) TargetProvider {
	for _, creator := range r.creators {
		if provider := creator.ProviderFor(t, name); provider != nil {
			return provider
		}
	}
	return nil
}
