package routing

import (
	"context"
	"log/slog"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// MatchedHandlerKey is the context key carrying the dispatch result
	MatchedHandlerKey contextKey = "weave:routing:matched"
)

// Matched is the dispatch result recorded on the execution context for
// downstream consumers such as access-policy resolution
type Matched struct {
	Handler *Handler
	Key     string
}

// MatchedFromContext returns the dispatch result recorded on ctx
func MatchedFromContext(ctx context.Context) (*Matched, bool) {
	value := ctx.Value(MatchedHandlerKey)
	if value == nil {
		return nil, false
	}
	matched, ok := value.(*Matched)
	return matched, ok
}

// Dispatcher resolves a request descriptor to a handler method through the
// mapping registry. Resolution is a pure read; the only side effect is the
// context annotation carrying the matched key.
type Dispatcher[T RouteKey[T]] struct {
	registry *MappingRegistry[T]
	logger   *slog.Logger
}

// DispatcherOption configures the dispatcher
type DispatcherOption[T RouteKey[T]] func(*Dispatcher[T])

// WithDispatcherLogger sets the logger
func WithDispatcherLogger[T RouteKey[T]](logger *slog.Logger) DispatcherOption[T] {
	return func(d *Dispatcher[T]) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given registry
func NewDispatcher[T RouteKey[T]](registry *MappingRegistry[T], options ...DispatcherOption[T]) *Dispatcher[T] {
	d := &Dispatcher[T]{
		registry: registry,
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

// Registry returns the underlying mapping registry
func (d *Dispatcher[T]) Registry() *MappingRegistry[T] {
	return d.registry
}

// Resolve finds the handler for the request and annotates the context with
// the match. NoMatchError and AmbiguousMappingError are returned as distinct
// types so callers can map them to distinct outward responses.
func (d *Dispatcher[T]) Resolve(ctx context.Context, req *Request) (context.Context, *Handler, error) {
	match, err := d.registry.Lookup(req)
	if err != nil {
		if IsNoMatch(err) {
			d.logger.Debug("no handler found",
				"method", req.Method,
				"path", req.Path,
			)
		}
		return ctx, nil, err
	}

	ctx = context.WithValue(ctx, MatchedHandlerKey, &Matched{
		Handler: match.Handler,
		Key:     match.Key.String(),
	})

	d.logger.Debug("resolved handler",
		"method", req.Method,
		"path", req.Path,
		"handler", match.Handler.String(),
		"key", match.Key.String(),
	)

	return ctx, match.Handler, nil
}

// PolicyFor resolves the cross-origin policy for a dispatched handler
func (d *Dispatcher[T]) PolicyFor(handler *Handler) (*CorsPolicy, bool) {
	return d.registry.PolicyFor(handler)
}
