package interception

import (
	"context"
	"log/slog"
)

// Behavior processes an invocation before it reaches the terminal target
type Behavior interface {
	// Intercept processes an invocation and calls the next invoker in the chain
	Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error)

	// Name returns the behavior name for logging and debugging
	Name() string
}

// BehaviorFunc is a function adapter for Behavior
type BehaviorFunc struct {
	name string
	fn   func(ctx context.Context, inv *Invocation, next Invoker) (any, error)
}

// NewBehaviorFunc creates a new function-based behavior
func NewBehaviorFunc(name string, fn func(ctx context.Context, inv *Invocation, next Invoker) (any, error)) *BehaviorFunc {
	return &BehaviorFunc{name: name, fn: fn}
}

// Intercept implements Behavior
func (b *BehaviorFunc) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	return b.fn(ctx, inv, next)
}

// Name implements Behavior
func (b *BehaviorFunc) Name() string {
	return b.name
}

// Chain manages an ordered sequence of behaviors. Once a chain is frozen its
// composition can no longer change; a frozen chain is safe to share across
// every wrapper built for the same target type.
type Chain struct {
	behaviors []Behavior
	frozen    bool
	logger    *slog.Logger
}

// NewChain creates a new behavior chain
func NewChain(logger *slog.Logger, behaviors ...Behavior) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Chain{
		behaviors: make([]Behavior, 0, len(behaviors)),
		logger:    logger,
	}
	c.behaviors = append(c.behaviors, behaviors...)
	return c
}

// Add appends a behavior to the chain. Adding to a frozen chain is a
// configuration error.
func (c *Chain) Add(behavior Behavior) error {
	if c.frozen {
		return &ConfigurationError{Component: "chain", Reason: "cannot add behavior to a frozen chain"}
	}
	c.behaviors = append(c.behaviors, behavior)
	return nil
}

// Freeze marks the chain immutable
func (c *Chain) Freeze() {
	c.frozen = true
}

// Frozen reports whether the chain has been frozen
func (c *Chain) Frozen() bool {
	return c.frozen
}

// Len returns the number of behaviors in the chain
func (c *Chain) Len() int {
	return len(c.behaviors)
}

// Behaviors returns a copy of the chain's behaviors in execution order
func (c *Chain) Behaviors() []Behavior {
	out := make([]Behavior, len(c.behaviors))
	copy(out, c.behaviors)
	return out
}

// Execute runs the invocation through every behavior in order, delivering it
// to terminal last
func (c *Chain) Execute(ctx context.Context, inv *Invocation, terminal Invoker) (any, error) {
	if len(c.behaviors) == 0 {
		return terminal.Invoke(ctx, inv)
	}

	// Build the chain in reverse order
	invoker := terminal
	for i := len(c.behaviors) - 1; i >= 0; i-- {
		behavior := c.behaviors[i]
		next := invoker
		invoker = InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return behavior.Intercept(ctx, inv, next)
		})
	}

	return invoker.Invoke(ctx, inv)
}
