package routing

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Handler is a resolved handler method: a concrete owner instance plus the
// bound method invoked for matching requests
type Handler struct {
	owner  any
	method string
	fn     reflect.Value
}

// chainInvoker is implemented by wrapped owners whose method calls must run
// through a behavior chain. When the owner provides it, Call delegates to it
// instead of invoking the method directly.
type chainInvoker interface {
	Invoke(ctx context.Context, method string, args ...any) (any, error)
}

// NewHandler binds the named method on owner. The owner may be a plain
// object or a wrapper exposing the chain-invoking surface.
func NewHandler(owner any, method string) (*Handler, error) {
	if owner == nil {
		return nil, fmt.Errorf("handler owner cannot be nil")
	}
	if method == "" {
		return nil, fmt.Errorf("handler method cannot be empty")
	}

	h := &Handler{owner: owner, method: method}

	if _, ok := owner.(chainInvoker); ok {
		return h, nil
	}

	fn := reflect.ValueOf(owner).MethodByName(method)
	if !fn.IsValid() {
		return nil, fmt.Errorf("method %s not found on %T", method, owner)
	}
	h.fn = fn
	return h, nil
}

// Owner returns the owning instance
func (h *Handler) Owner() any {
	return h.owner
}

// Method returns the bound method name
func (h *Handler) Method() string {
	return h.method
}

// Call invokes the handler method. For wrapped owners the call runs through
// the owner's behavior chain.
func (h *Handler) Call(ctx context.Context, args ...any) (any, error) {
	if ci, ok := h.owner.(chainInvoker); ok {
		return ci.Invoke(ctx, h.method, args...)
	}

	mt := h.fn.Type()
	in := make([]reflect.Value, 0, mt.NumIn())
	if mt.NumIn() > 0 && mt.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
	}
	offset := len(in)
	if mt.NumIn()-offset != len(args) {
		return nil, fmt.Errorf("method %s expects %d arguments, got %d", h.method, mt.NumIn()-offset, len(args))
	}
	for i, a := range args {
		if a == nil {
			in = append(in, reflect.Zero(mt.In(i+offset)))
			continue
		}
		in = append(in, reflect.ValueOf(a))
	}

	out := h.fn.Call(in)

	var callErr error
	if n := len(out); n > 0 && out[n-1].Type().Implements(errorType) {
		if !out[n-1].IsNil() {
			callErr = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, callErr
	}
	return out[0].Interface(), callErr
}

// Equal reports whether other binds the same method on the same owner
// instance. Re-registering an equal handler under the same key is a no-op.
func (h *Handler) Equal(other *Handler) bool {
	if other == nil {
		return false
	}
	return h.method == other.method && sameOwner(h.owner, other.owner)
}

func sameOwner(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Ptr {
		return va.Pointer() == vb.Pointer()
	}
	return va.Type().Comparable() && a == b
}

// String returns a printable "Type.Method" form
func (h *Handler) String() string {
	t := reflect.TypeOf(h.owner)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	typeName := "?"
	if t != nil {
		typeName = t.Name()
	}
	return fmt.Sprintf("%s.%s", typeName, h.method)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// HandlerRef names a handler owner either by logical name, resolved through
// an InstanceResolver at registration time, or directly by instance
type HandlerRef struct {
	name     string
	instance any
}

// ByName references an owner by its logical name
func ByName(name string) HandlerRef {
	return HandlerRef{name: name}
}

// ByInstance references an owner directly
func ByInstance(ref any) HandlerRef {
	return HandlerRef{instance: ref}
}

// InstanceResolver resolves logical names to concrete instances
type InstanceResolver interface {
	Lookup(name string) (any, error)
}

// resolve turns the reference into a concrete instance
func (ref HandlerRef) resolve(resolver InstanceResolver) (any, error) {
	if ref.instance != nil {
		return ref.instance, nil
	}
	if resolver == nil {
		return nil, fmt.Errorf("handler referenced by name %q but no instance resolver configured", ref.name)
	}
	instance, err := resolver.Lookup(ref.name)
	if err != nil {
		return nil, fmt.Errorf("resolving handler %q: %w", ref.name, err)
	}
	return instance, nil
}

// NamingStrategy assigns a human-readable name to a registered handler
type NamingStrategy func(h *Handler) string

// DefaultNamingStrategy names handlers by the capital letters of the owner
// type followed by "#" and the method name, e.g. "OS#GetOrder" for
// OrderService.GetOrder.
func DefaultNamingStrategy(h *Handler) string {
	t := reflect.TypeOf(h.owner)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var initials strings.Builder
	if t != nil {
		for _, r := range t.Name() {
			if unicode.IsUpper(r) {
				initials.WriteRune(r)
			}
		}
	}
	return initials.String() + "#" + h.method
}
