package interception

import "fmt"

// ConfigurationError indicates a malformed rule or a missing required
// collaborator. It is fatal and surfaces at setup or first use.
type ConfigurationError struct {
	Component string
	Reason    string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Reason)
}

// RuleEvaluationError indicates that a behavior source or rule failed while a
// chain was being built. Construction of the owning object fails; the error
// is never cached as a no-wrap decision.
type RuleEvaluationError struct {
	Source string
	Err    error
}

// Error implements the error interface
func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("behavior source %s failed: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error
func (e *RuleEvaluationError) Unwrap() error {
	return e.Err
}
