package interception

import (
	"context"
	"sync"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// InvocationContextKey is the key for storing the invocation context
	InvocationContextKey contextKey = "weave:interception:context"
)

// InvocationContext holds shared data between behaviors for the duration of
// one invocation
type InvocationContext struct {
	values map[string]interface{}
	mu     sync.RWMutex
}

// NewInvocationContext creates a new invocation context
func NewInvocationContext() *InvocationContext {
	return &InvocationContext{
		values: make(map[string]interface{}),
	}
}

// Set stores a value in the invocation context
func (ic *InvocationContext) Set(key string, value interface{}) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.values[key] = value
}

// Get retrieves a value from the invocation context
func (ic *InvocationContext) Get(key string) (interface{}, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	value, exists := ic.values[key]
	return value, exists
}

// GetString retrieves a string value from the invocation context
func (ic *InvocationContext) GetString(key string) (string, bool) {
	value, exists := ic.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetInt retrieves an int value from the invocation context
func (ic *InvocationContext) GetInt(key string) (int, bool) {
	value, exists := ic.Get(key)
	if !exists {
		return 0, false
	}
	i, ok := value.(int)
	return i, ok
}

// Delete removes a value from the invocation context
func (ic *InvocationContext) Delete(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.values, key)
}

// Copy creates a copy of the invocation context
func (ic *InvocationContext) Copy() *InvocationContext {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	newContext := NewInvocationContext()
	for k, v := range ic.values {
		newContext.values[k] = v
	}
	return newContext
}

// GetInvocationContext retrieves the invocation context from the context
func GetInvocationContext(ctx context.Context) (*InvocationContext, bool) {
	value := ctx.Value(InvocationContextKey)
	if value == nil {
		return nil, false
	}
	ic, ok := value.(*InvocationContext)
	return ic, ok
}

// WithInvocationContext adds the invocation context to the context
func WithInvocationContext(ctx context.Context, ic *InvocationContext) context.Context {
	return context.WithValue(ctx, InvocationContextKey, ic)
}

// EnsureInvocationContext ensures an invocation context exists in the context
func EnsureInvocationContext(ctx context.Context) (context.Context, *InvocationContext) {
	ic, exists := GetInvocationContext(ctx)
	if !exists {
		ic = NewInvocationContext()
		ctx = WithInvocationContext(ctx, ic)
	}
	return ctx, ic
}
