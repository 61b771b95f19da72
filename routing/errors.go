package routing

import (
	"errors"
	"fmt"
)

// AmbiguousMappingError reports either a registration conflict (one key, two
// different handler methods) or a lookup tie between two equally ranked
// candidates. It is never resolved by an arbitrary tie-break.
type AmbiguousMappingError struct {
	Key    string
	First  string
	Second string
}

// Error implements the error interface
func (e *AmbiguousMappingError) Error() string {
	if e.Second == "" {
		return fmt.Sprintf("ambiguous mapping: %q is already mapped to %s", e.Key, e.First)
	}
	return fmt.Sprintf("ambiguous handler methods mapped for %q: {%s, %s}", e.Key, e.First, e.Second)
}

// NoMatchError reports that a lookup found no candidate. Routing layers may
// treat it as a pass-through to a fallback handler rather than a failure.
type NoMatchError struct {
	Method string
	Path   string
}

// Error implements the error interface
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no handler mapping found for %s %s", e.Method, e.Path)
}

// IsAmbiguous reports whether err is an ambiguous mapping error
func IsAmbiguous(err error) bool {
	var ae *AmbiguousMappingError
	return errors.As(err, &ae)
}

// IsNoMatch reports whether err is a no-match outcome
func IsNoMatch(err error) bool {
	var ne *NoMatchError
	return errors.As(err, &ne)
}
