package proxy

import (
	"context"
	"fmt"
	"reflect"

	"github.com/glimte/weave-go/interception"
	"github.com/google/uuid"
)

// Wrapper is the runtime proxy: an explicit composition object holding a
// frozen behavior chain and a provider for the real target. Calls made
// through Invoke run the full chain before reaching the target method.
type Wrapper struct {
	id       string
	chain    *interception.Chain
	provider TargetProvider
	terminal interception.Invoker
}

// NewWrapper creates a wrapper over the given provider. The chain is frozen
// at construction; its composition cannot change afterwards.
func NewWrapper(chain *interception.Chain, provider TargetProvider) *Wrapper {
	chain.Freeze()
	return &Wrapper{
		id:       uuid.New().String(),
		chain:    chain,
		provider: provider,
		terminal: interception.ReflectiveInvoker{},
	}
}

// ID returns the wrapper's unique instance ID
func (w *Wrapper) ID() string {
	return w.id
}

// Chain returns the wrapper's behavior chain
func (w *Wrapper) Chain() *interception.Chain {
	return w.chain
}

// TargetType returns the type of the wrapped target
func (w *Wrapper) TargetType() reflect.Type {
	return w.provider.TargetType()
}

// Unwrap returns the current target instance
func (w *Wrapper) Unwrap() (any, error) {
	return w.provider.Target()
}

// Invoke delivers a method call through the behavior chain to the target
func (w *Wrapper) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	target, err := w.provider.Target()
	if err != nil {
		return nil, fmt.Errorf("target provider failed for method %s: %w", method, err)
	}

	inv := interception.NewInvocation(target, method, args...)
	ctx, _ = interception.EnsureInvocationContext(ctx)

	return w.chain.Execute(ctx, inv, w.terminal)
}
