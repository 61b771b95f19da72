package interception

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/weave-go/internal/reliability"
)

// Built-in behaviors

// LoggingBehavior logs invocations with timing information
type LoggingBehavior struct {
	logger *slog.Logger
}

// NewLoggingBehavior creates a new logging behavior
func NewLoggingBehavior(logger *slog.Logger) *LoggingBehavior {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingBehavior{logger: logger}
}

// Intercept implements Behavior
func (b *LoggingBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	start := time.Now()

	b.logger.Info("invoking method",
		"invocationId", inv.ID,
		"method", inv.Method,
		"target", fmt.Sprintf("%T", inv.Target),
	)

	result, err := next.Invoke(ctx, inv)
	duration := time.Since(start)

	if err != nil {
		b.logger.Error("invocation failed",
			"invocationId", inv.ID,
			"method", inv.Method,
			"duration", duration,
			"error", err,
		)
	} else {
		b.logger.Info("invocation completed",
			"invocationId", inv.ID,
			"method", inv.Method,
			"duration", duration,
		)
	}

	return result, err
}

// Name implements Behavior
func (b *LoggingBehavior) Name() string {
	return "LoggingBehavior"
}

// RecoveryBehavior converts panics in downstream behaviors or the target
// method into errors
type RecoveryBehavior struct {
	logger *slog.Logger
}

// NewRecoveryBehavior creates a new recovery behavior
func NewRecoveryBehavior(logger *slog.Logger) *RecoveryBehavior {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecoveryBehavior{logger: logger}
}

// Intercept implements Behavior
func (b *RecoveryBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("invocation panicked",
				"invocationId", inv.ID,
				"method", inv.Method,
				"panic", r,
			)
			result = nil
			err = fmt.Errorf("invocation of %s panicked: %v", inv.Method, r)
		}
	}()

	return next.Invoke(ctx, inv)
}

// Name implements Behavior
func (b *RecoveryBehavior) Name() string {
	return "RecoveryBehavior"
}

// TimeoutBehavior bounds the time an invocation may take
type TimeoutBehavior struct {
	timeout time.Duration
}

// NewTimeoutBehavior creates a new timeout behavior
func NewTimeoutBehavior(timeout time.Duration) *TimeoutBehavior {
	return &TimeoutBehavior{timeout: timeout}
}

type invocationResult struct {
	value any
	err   error
}

// Intercept implements Behavior
func (b *TimeoutBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan invocationResult, 1)
	go func() {
		value, err := next.Invoke(timeoutCtx, inv)
		done <- invocationResult{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-timeoutCtx.Done():
		return nil, fmt.Errorf("invocation timeout after %v for method %s", b.timeout, inv.Method)
	}
}

// Name implements Behavior
func (b *TimeoutBehavior) Name() string {
	return "TimeoutBehavior"
}

// InvocationValidator defines the interface for invocation validation
type InvocationValidator interface {
	Validate(ctx context.Context, inv *Invocation) error
}

// ValidationBehavior validates invocations before delivery
type ValidationBehavior struct {
	validator InvocationValidator
}

// NewValidationBehavior creates a new validation behavior
func NewValidationBehavior(validator InvocationValidator) *ValidationBehavior {
	return &ValidationBehavior{validator: validator}
}

// Intercept implements Behavior
func (b *ValidationBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	if err := b.validator.Validate(ctx, inv); err != nil {
		return nil, fmt.Errorf("invocation validation failed: %w", err)
	}

	return next.Invoke(ctx, inv)
}

// Name implements Behavior
func (b *ValidationBehavior) Name() string {
	return "ValidationBehavior"
}

// RetryBehavior retries failed invocations according to a retry policy.
// Invocations must be safe to replay before placing this behavior in a chain.
type RetryBehavior struct {
	policy reliability.RetryPolicy
}

// NewRetryBehavior creates a new retry behavior
func NewRetryBehavior(policy reliability.RetryPolicy) *RetryBehavior {
	if policy == nil {
		policy = reliability.NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, 3)
	}

	return &RetryBehavior{policy: policy}
}

// Intercept implements Behavior
func (b *RetryBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	var result any
	err := reliability.Retry(ctx, b.policy, func() error {
		var callErr error
		result, callErr = next.Invoke(ctx, inv)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Name implements Behavior
func (b *RetryBehavior) Name() string {
	return "RetryBehavior"
}

// CircuitBreakerBehavior stops delivering invocations to a failing target
type CircuitBreakerBehavior struct {
	breaker *reliability.CircuitBreaker
}

// NewCircuitBreakerBehavior creates a new circuit breaker behavior
func NewCircuitBreakerBehavior(breaker *reliability.CircuitBreaker) *CircuitBreakerBehavior {
	if breaker == nil {
		breaker = reliability.NewCircuitBreaker()
	}

	return &CircuitBreakerBehavior{breaker: breaker}
}

// Intercept implements Behavior
func (b *CircuitBreakerBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	var result any
	err := b.breaker.Execute(ctx, func() error {
		var callErr error
		result, callErr = next.Invoke(ctx, inv)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Name implements Behavior
func (b *CircuitBreakerBehavior) Name() string {
	return "CircuitBreakerBehavior"
}
