package interception

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvocationContext(t *testing.T) {
	t.Run("Set and Get roundtrip", func(t *testing.T) {
		ic := NewInvocationContext()

		ic.Set("caller", "admin")
		value, ok := ic.Get("caller")

		assert.True(t, ok)
		assert.Equal(t, "admin", value)
	})

	t.Run("typed getters", func(t *testing.T) {
		ic := NewInvocationContext()
		ic.Set("name", "svc")
		ic.Set("count", 3)

		name, ok := ic.GetString("name")
		assert.True(t, ok)
		assert.Equal(t, "svc", name)

		count, ok := ic.GetInt("count")
		assert.True(t, ok)
		assert.Equal(t, 3, count)

		_, ok = ic.GetString("count")
		assert.False(t, ok)
		_, ok = ic.GetInt("missing")
		assert.False(t, ok)
	})

	t.Run("Delete removes values", func(t *testing.T) {
		ic := NewInvocationContext()
		ic.Set("k", "v")

		ic.Delete("k")

		_, ok := ic.Get("k")
		assert.False(t, ok)
	})

	t.Run("Copy is independent", func(t *testing.T) {
		ic := NewInvocationContext()
		ic.Set("k", "v")

		cp := ic.Copy()
		cp.Set("k", "changed")

		original, _ := ic.Get("k")
		assert.Equal(t, "v", original)
	})
}

func TestContextIntegration(t *testing.T) {
	t.Run("EnsureInvocationContext creates one when missing", func(t *testing.T) {
		ctx, ic := EnsureInvocationContext(context.Background())

		assert.NotNil(t, ic)
		found, ok := GetInvocationContext(ctx)
		assert.True(t, ok)
		assert.Same(t, ic, found)
	})

	t.Run("EnsureInvocationContext reuses an existing one", func(t *testing.T) {
		ctx, first := EnsureInvocationContext(context.Background())
		_, second := EnsureInvocationContext(ctx)

		assert.Same(t, first, second)
	})

	t.Run("behaviors share data through the invocation context", func(t *testing.T) {
		writer := NewBehaviorFunc("writer", func(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
			ctx, ic := EnsureInvocationContext(ctx)
			ic.Set("seen", inv.Method)
			return next.Invoke(ctx, inv)
		})

		var read string
		reader := NewBehaviorFunc("reader", func(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
			if ic, ok := GetInvocationContext(ctx); ok {
				read, _ = ic.GetString("seen")
			}
			return next.Invoke(ctx, inv)
		})

		chain := NewChain(nil, writer, reader)
		g := &greeter{}
		_, err := chain.Execute(context.Background(), NewInvocation(g, "Greet", "x"), ReflectiveInvoker{})

		assert.NoError(t, err)
		assert.Equal(t, "Greet", read)
	})
}
