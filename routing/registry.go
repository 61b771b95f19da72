package routing

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// emptyHandler backs the pre-flight ambiguous-match sentinel
type emptyHandler struct{}

// Handle is intentionally a no-op
func (emptyHandler) Handle() {}

// PreflightAmbiguousHandler is returned for pre-flight requests whose best
// two matches tie: negotiation-only requests get a permissive answer instead
// of an ambiguity error.
var PreflightAmbiguousHandler = func() *Handler {
	h, err := NewHandler(emptyHandler{}, "Handle")
	if err != nil {
		panic(err)
	}
	return h
}()

// Match pairs a matched (possibly narrowed) key with its handler method
type Match[T RouteKey[T]] struct {
	Key     T
	Handler *Handler
}

// registration is the full record kept per mapping key
type registration[T RouteKey[T]] struct {
	key         T
	handler     *Handler
	directPaths []string
	name        string
}

// MappingRegistry is a concurrency-safe store of key to handler-method
// mappings with auxiliary indexes for fast lookup. The four core indexes are
// guarded as one atomic unit by a single reader-writer lock; the name and
// policy side tables are concurrent maps readable without the main lock,
// mutated only within register/unregister write-lock scope.
type MappingRegistry[T RouteKey[T]] struct {
	mu          sync.RWMutex
	registry    map[T]*registration[T]
	mappings    map[T]*Handler
	directIndex map[string][]T

	nameIndex *xsync.MapOf[string, []*Handler]
	policies  *xsync.MapOf[*Handler, *CorsPolicy]

	naming   NamingStrategy
	resolver InstanceResolver
	logger   *slog.Logger
}

// MappingOption configures the mapping registry
type MappingOption[T RouteKey[T]] func(*MappingRegistry[T])

// WithMappingLogger sets the logger
func WithMappingLogger[T RouteKey[T]](logger *slog.Logger) MappingOption[T] {
	return func(m *MappingRegistry[T]) {
		m.logger = logger
	}
}

// WithNamingStrategy sets the strategy assigning human-readable names to
// registered handlers
func WithNamingStrategy[T RouteKey[T]](naming NamingStrategy) MappingOption[T] {
	return func(m *MappingRegistry[T]) {
		m.naming = naming
	}
}

// WithInstanceResolver sets the resolver used for by-name handler references
func WithInstanceResolver[T RouteKey[T]](resolver InstanceResolver) MappingOption[T] {
	return func(m *MappingRegistry[T]) {
		m.resolver = resolver
	}
}

// NewMappingRegistry creates an empty mapping registry
func NewMappingRegistry[T RouteKey[T]](options ...MappingOption[T]) *MappingRegistry[T] {
	m := &MappingRegistry[T]{
		registry:    make(map[T]*registration[T]),
		mappings:    make(map[T]*Handler),
		directIndex: make(map[string][]T),
		nameIndex:   xsync.NewMapOf[string, []*Handler](),
		policies:    xsync.NewMapOf[*Handler, *CorsPolicy](),
		naming:      DefaultNamingStrategy,
		logger:      slog.Default(),
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// RegisterOption configures one registration
type RegisterOption func(*registerConfig)

type registerConfig struct {
	policy *CorsPolicy
	name   string
}

// WithCorsPolicy attaches a cross-origin policy to the registered handler
func WithCorsPolicy(policy *CorsPolicy) RegisterOption {
	return func(c *registerConfig) {
		c.policy = policy
	}
}

// WithMappingName overrides the name the naming strategy would assign
func WithMappingName(name string) RegisterOption {
	return func(c *registerConfig) {
		c.name = name
	}
}

// Register maps key to the named method on the referenced owner. A key
// already mapped to a different handler method is an ambiguous mapping
// error; re-registering the identical handler is a no-op. All indexes are
// consistent with each other when Register returns.
func (m *MappingRegistry[T]) Register(key T, ref HandlerRef, method string, options ...RegisterOption) error {
	cfg := &registerConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	owner, err := ref.resolve(m.resolver)
	if err != nil {
		return err
	}
	handler, err := NewHandler(owner, method)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.mappings[key]; ok {
		if existing.Equal(handler) {
			return nil
		}
		return &AmbiguousMappingError{Key: key.String(), First: existing.String()}
	}

	m.mappings[key] = handler

	directPaths := key.DirectPaths()
	for _, path := range directPaths {
		m.directIndex[path] = append(m.directIndex[path], key)
	}

	name := cfg.name
	if name == "" && m.naming != nil {
		name = m.naming(handler)
	}
	if name != "" {
		m.addMappingName(name, handler)
	}

	if cfg.policy != nil {
		m.policies.Store(handler, cfg.policy)
	}

	m.registry[key] = &registration[T]{
		key:         key,
		handler:     handler,
		directPaths: directPaths,
		name:        name,
	}

	m.logger.Info("mapped handler",
		"key", key.String(),
		"handler", handler.String(),
		"name", name,
	)

	return nil
}

func (m *MappingRegistry[T]) addMappingName(name string, handler *Handler) {
	existing, _ := m.nameIndex.Load(name)
	for _, h := range existing {
		if h == handler {
			return
		}
	}
	if len(existing) > 0 {
		m.logger.Warn("mapping name clash",
			"name", name,
			"count", len(existing)+1,
		)
	}

	updated := make([]*Handler, 0, len(existing)+1)
	updated = append(updated, existing...)
	updated = append(updated, handler)
	m.nameIndex.Store(name, updated)
}

// Unregister removes the mapping for key from every index. Unregistering an
// absent key is a no-op.
func (m *MappingRegistry[T]) Unregister(key T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registry[key]
	if !ok {
		return
	}

	delete(m.mappings, key)
	delete(m.registry, key)

	for _, path := range reg.directPaths {
		keys := m.directIndex[path]
		for i, k := range keys {
			if k == key {
				m.directIndex[path] = append(keys[:i], keys[i+1:]...)
				break
			}
		}
		if len(m.directIndex[path]) == 0 {
			delete(m.directIndex, path)
		}
	}

	if reg.name != "" {
		if handlers, ok := m.nameIndex.Load(reg.name); ok {
			remaining := make([]*Handler, 0, len(handlers))
			for _, h := range handlers {
				if h != reg.handler {
					remaining = append(remaining, h)
				}
			}
			if len(remaining) == 0 {
				m.nameIndex.Delete(reg.name)
			} else {
				m.nameIndex.Store(reg.name, remaining)
			}
		}
	}

	m.policies.Delete(reg.handler)

	m.logger.Info("unmapped handler",
		"key", key.String(),
		"handler", reg.handler.String(),
	)
}

// Lookup resolves a request to its best-matching handler. The direct-path
// index is consulted first; when it yields nothing every registered key is
// tested. A tie between the best two candidates is an ambiguity error,
// except for pre-flight requests which get the permissive sentinel.
func (m *MappingRegistry[T]) Lookup(req *Request) (*Match[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match[T]
	if keys, ok := m.directIndex[req.Path]; ok {
		matches = m.collectMatches(keys, req, matches)
	}
	if len(matches) == 0 {
		// No choice but to test every registered key
		all := make([]T, 0, len(m.mappings))
		for key := range m.mappings {
			all = append(all, key)
		}
		matches = m.collectMatches(all, req, matches)
	}

	if len(matches) == 0 {
		return nil, &NoMatchError{Method: req.Method, Path: req.Path}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Key.Compare(matches[j].Key, req) < 0
	})

	best := matches[0]
	if len(matches) > 1 {
		second := matches[1]
		if best.Key.Compare(second.Key, req) == 0 {
			if req.IsPreflight() {
				return &Match[T]{Key: best.Key, Handler: PreflightAmbiguousHandler}, nil
			}
			return nil, &AmbiguousMappingError{
				Key:    req.Method + " " + req.Path,
				First:  best.Handler.String(),
				Second: second.Handler.String(),
			}
		}
	}

	return &best, nil
}

func (m *MappingRegistry[T]) collectMatches(keys []T, req *Request, matches []Match[T]) []Match[T] {
	for _, key := range keys {
		if narrowed, ok := key.Match(req); ok {
			matches = append(matches, Match[T]{Key: narrowed, Handler: m.mappings[key]})
		}
	}
	return matches
}

// ByName returns the handlers registered under the given mapping name. It
// reads the concurrent name index and needs no lock.
func (m *MappingRegistry[T]) ByName(name string) []*Handler {
	handlers, _ := m.nameIndex.Load(name)
	out := make([]*Handler, len(handlers))
	copy(out, handlers)
	return out
}

// PolicyFor returns the cross-origin policy attached to the handler, if any.
// The pre-flight sentinel always resolves to the permissive policy.
func (m *MappingRegistry[T]) PolicyFor(handler *Handler) (*CorsPolicy, bool) {
	if handler == PreflightAmbiguousHandler {
		return AllowAllCorsPolicy, true
	}
	policy, ok := m.policies.Load(handler)
	return policy, ok
}

// All returns a snapshot of every mapping
func (m *MappingRegistry[T]) All() map[T]*Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[T]*Handler, len(m.mappings))
	for key, handler := range m.mappings {
		out[key] = handler
	}
	return out
}

// Len returns the number of registered mappings
func (m *MappingRegistry[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mappings)
}
