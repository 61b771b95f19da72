// Package interception provides the behavior chain mechanism used to wrap
// method calls with cross-cutting concerns.
//
// A Behavior is a unit of cross-cutting logic (logging, metrics, retries)
// composed into a Chain. The chain delivers an Invocation through every
// behavior in order before reaching the terminal target. This package
// provides:
//   - Behavior interface and chain management
//   - ChainBuilder merging globally configured behaviors with rule-sourced ones
//   - Rule matching over target types and method names
//   - Built-in behaviors for common concerns
//
// Built-in behaviors:
//   - LoggingBehavior: logs invocations with timing information
//   - MetricsBehavior: collects invocation metrics (Prometheus-backed collector included)
//   - RecoveryBehavior: converts panics into errors
//   - TimeoutBehavior: bounds invocation time
//   - ValidationBehavior: validates invocations before delivery
//   - RetryBehavior: retries failed invocations per policy
//   - CircuitBreakerBehavior: stops delivery to failing targets
//
// Example usage:
//
//	builder := interception.NewChainBuilder(
//		interception.WithRules(interception.NewTypeRule("audited",
//			interception.MatchAssignableTo(auditedType),
//			interception.NewLoggingBehavior(logger),
//		)),
//		interception.WithGlobalBehaviors("metrics"),
//		interception.WithResolver(resolver),
//	)
//
//	behaviors, err := builder.Build(reflect.TypeOf(target), "orderService")
//
// Behaviors are executed in chain order, with the terminal invoker called
// last. A behavior shared across chains must be safe for concurrent use.
package interception
