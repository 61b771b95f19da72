// Package reliability provides retry and circuit breaker primitives consumed
// by the interception behaviors.
//
// This package implements:
//   - Retry Policies: configurable retry strategies (exponential backoff, fixed delay)
//   - Circuit Breaker: stops delivering invocations to a failing target
//
// All implementations are safe for concurrent use; a single policy or breaker
// may be shared by every chain built for a target type.
//
// Example usage:
//
//	cb := NewCircuitBreaker(
//	    WithFailureThreshold(5),
//	    WithSuccessThreshold(3),
//	    WithTimeout(30 * time.Second),
//	)
//
//	err := cb.Execute(ctx, func() error {
//	    return riskyOperation()
//	})
package reliability
