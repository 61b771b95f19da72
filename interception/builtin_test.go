package interception

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glimte/weave-go/internal/reliability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock invoker
type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	args := m.Called(ctx, inv)
	return args.Get(0), args.Error(1)
}

// Mock collector
type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) IncrementInvocationCount(method string) {
	m.Called(method)
}

func (m *mockCollector) RecordInvocationTime(method string, duration time.Duration) {
	m.Called(method, duration)
}

func (m *mockCollector) IncrementErrorCount(method string, errorType string) {
	m.Called(method, errorType)
}

func TestLoggingBehavior(t *testing.T) {
	t.Run("passes result through on success", func(t *testing.T) {
		next := &mockInvoker{}
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next.On("Invoke", mock.Anything, inv).Return("ok", nil)

		result, err := NewLoggingBehavior(nil).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
		next.AssertExpectations(t)
	})

	t.Run("passes error through on failure", func(t *testing.T) {
		next := &mockInvoker{}
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next.On("Invoke", mock.Anything, inv).Return(nil, errors.New("fail"))

		result, err := NewLoggingBehavior(nil).Intercept(context.Background(), inv, next)

		assert.Nil(t, result)
		assert.EqualError(t, err, "fail")
	})
}

func TestRecoveryBehavior(t *testing.T) {
	t.Run("converts panic to error", func(t *testing.T) {
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			panic("bad state")
		})

		result, err := NewRecoveryBehavior(nil).Intercept(context.Background(), inv, next)

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Contains(t, err.Error(), "bad state")
	})

	t.Run("leaves normal results alone", func(t *testing.T) {
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return 7, nil
		})

		result, err := NewRecoveryBehavior(nil).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		assert.Equal(t, 7, result)
	})
}

func TestTimeoutBehavior(t *testing.T) {
	t.Run("fast invocation completes", func(t *testing.T) {
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return "done", nil
		})

		result, err := NewTimeoutBehavior(time.Second).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		assert.Equal(t, "done", result)
	})

	t.Run("slow invocation times out", func(t *testing.T) {
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			select {
			case <-time.After(5 * time.Second):
				return "late", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})

		start := time.Now()
		result, err := NewTimeoutBehavior(20 * time.Millisecond).Intercept(context.Background(), inv, next)

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
		assert.Less(t, time.Since(start), time.Second)
	})
}

type rejectAllValidator struct{}

func (rejectAllValidator) Validate(ctx context.Context, inv *Invocation) error {
	return errors.New("rejected")
}

type acceptAllValidator struct{}

func (acceptAllValidator) Validate(ctx context.Context, inv *Invocation) error {
	return nil
}

func TestValidationBehavior(t *testing.T) {
	t.Run("rejection stops the chain", func(t *testing.T) {
		next := &mockInvoker{}
		inv := NewInvocation(&greeter{}, "Greet", "x")

		result, err := NewValidationBehavior(rejectAllValidator{}).Intercept(context.Background(), inv, next)

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		next.AssertNotCalled(t, "Invoke")
	})

	t.Run("acceptance continues the chain", func(t *testing.T) {
		next := &mockInvoker{}
		inv := NewInvocation(&greeter{}, "Greet", "x")
		next.On("Invoke", mock.Anything, inv).Return("ok", nil)

		result, err := NewValidationBehavior(acceptAllValidator{}).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
	})
}

func TestMetricsBehavior(t *testing.T) {
	t.Run("records count and duration", func(t *testing.T) {
		collector := &mockCollector{}
		collector.On("IncrementInvocationCount", "Greet").Once()
		collector.On("RecordInvocationTime", "Greet", mock.Anything).Once()

		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return "ok", nil
		})

		_, err := NewMetricsBehavior(collector).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		collector.AssertExpectations(t)
	})

	t.Run("records errors", func(t *testing.T) {
		collector := &mockCollector{}
		collector.On("IncrementInvocationCount", "Greet").Once()
		collector.On("RecordInvocationTime", "Greet", mock.Anything).Once()
		collector.On("IncrementErrorCount", "Greet", "invocation_error").Once()

		inv := NewInvocation(&greeter{}, "Greet", "x")
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return nil, errors.New("fail")
		})

		_, err := NewMetricsBehavior(collector).Intercept(context.Background(), inv, next)

		assert.Error(t, err)
		collector.AssertExpectations(t)
	})
}

func TestRetryBehavior(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		attempts := 0
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		})

		policy := reliability.NewFixedDelay(time.Millisecond, 5)
		inv := NewInvocation(&greeter{}, "Greet", "x")

		result, err := NewRetryBehavior(policy).Intercept(context.Background(), inv, next)

		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		attempts := 0
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			attempts++
			return nil, reliability.RetryableError{Err: errors.New("fatal"), Retryable: false}
		})

		policy := reliability.NewFixedDelay(time.Millisecond, 5)
		inv := NewInvocation(&greeter{}, "Greet", "x")

		_, err := NewRetryBehavior(policy).Intercept(context.Background(), inv, next)

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestCircuitBreakerBehavior(t *testing.T) {
	t.Run("open breaker rejects invocations", func(t *testing.T) {
		breaker := reliability.NewCircuitBreaker(
			reliability.WithFailureThreshold(1),
			reliability.WithTimeout(time.Minute),
		)
		inv := NewInvocation(&greeter{}, "Greet", "x")
		behavior := NewCircuitBreakerBehavior(breaker)

		failing := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			return nil, errors.New("down")
		})
		_, err := behavior.Intercept(context.Background(), inv, failing)
		require.Error(t, err)

		called := false
		next := InvokerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
			called = true
			return "ok", nil
		})
		_, err = behavior.Intercept(context.Background(), inv, next)

		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestBehaviorNames(t *testing.T) {
	assert.Equal(t, "LoggingBehavior", NewLoggingBehavior(nil).Name())
	assert.Equal(t, "RecoveryBehavior", NewRecoveryBehavior(nil).Name())
	assert.Equal(t, "TimeoutBehavior", NewTimeoutBehavior(time.Second).Name())
	assert.Equal(t, "ValidationBehavior", NewValidationBehavior(acceptAllValidator{}).Name())
	assert.Equal(t, "MetricsBehavior", NewMetricsBehavior(&mockCollector{}).Name())
	assert.Equal(t, "RetryBehavior", NewRetryBehavior(nil).Name())
	assert.Equal(t, "CircuitBreakerBehavior", NewCircuitBreakerBehavior(nil).Name())
}
