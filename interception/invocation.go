package interception

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Invocation describes a single method call flowing through a behavior chain.
// The Target is the real object the call is ultimately delivered to; Args are
// the call arguments in declaration order.
type Invocation struct {
	ID     string
	Method string
	Args   []any
	Target any
}

// NewInvocation creates an invocation for a method call on target
func NewInvocation(target any, method string, args ...any) *Invocation {
	return &Invocation{
		ID:     uuid.New().String(),
		Method: method,
		Args:   args,
		Target: target,
	}
}

// TargetType returns the runtime type of the invocation target
func (inv *Invocation) TargetType() reflect.Type {
	return reflect.TypeOf(inv.Target)
}

// Invoker delivers an invocation to the next element in the chain or to the
// terminal target
type Invoker interface {
	Invoke(ctx context.Context, inv *Invocation) (any, error)
}

// InvokerFunc is a function adapter for Invoker
type InvokerFunc func(ctx context.Context, inv *Invocation) (any, error)

// Invoke implements Invoker
func (f InvokerFunc) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	return f(ctx, inv)
}

// ReflectiveInvoker is the terminal invoker: it calls the named method on the
// invocation target via reflection. It is used at the end of every chain when
// no custom terminal has been supplied.
type ReflectiveInvoker struct{}

// Invoke implements Invoker
func (ReflectiveInvoker) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	if inv.Target == nil {
		return nil, fmt.Errorf("invocation %s has no target", inv.ID)
	}

	m := reflect.ValueOf(inv.Target).MethodByName(inv.Method)
	if !m.IsValid() {
		return nil, fmt.Errorf("method %s not found on %T", inv.Method, inv.Target)
	}

	mt := m.Type()
	in := make([]reflect.Value, 0, mt.NumIn())
	args := inv.Args

	// A leading context.Context parameter is satisfied from the caller's ctx
	// rather than from Args.
	if mt.NumIn() > 0 && mt.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
	}

	offset := len(in)
	if mt.NumIn()-offset != len(args) {
		return nil, fmt.Errorf("method %s on %T expects %d arguments, got %d", inv.Method, inv.Target, mt.NumIn()-offset, len(args))
	}
	for i, a := range args {
		if a == nil {
			in = append(in, reflect.Zero(mt.In(i+offset)))
			continue
		}
		in = append(in, reflect.ValueOf(a))
	}

	out := m.Call(in)
	return splitResults(inv, out)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// splitResults maps a reflective call result onto the (value, error) contract:
// a trailing error return becomes the error, a single remaining value becomes
// the result, multiple remaining values are returned as a slice.
func splitResults(inv *Invocation, out []reflect.Value) (any, error) {
	var callErr error
	if n := len(out); n > 0 && out[n-1].Type().Implements(errorType) {
		if !out[n-1].IsNil() {
			callErr = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, callErr
	case 1:
		return out[0].Interface(), callErr
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, callErr
	}
}
