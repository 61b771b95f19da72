package proxy

import (
	"reflect"
)

// TargetProvider supplies the real object a wrapper delivers invocations to.
// Static providers return the same instance for every call; non-static
// providers may produce a fresh target per invocation.
type TargetProvider interface {
	// Target returns the current target instance
	Target() (any, error)

	// TargetType returns the type of the provided targets
	TargetType() reflect.Type

	// IsStatic reports whether Target always returns the same instance
	IsStatic() bool
}

// SingletonTarget is a TargetProvider over one fixed instance
type SingletonTarget struct {
	target any
}

// NewSingletonTarget creates a provider returning the given instance
func NewSingletonTarget(target any) *SingletonTarget {
	return &SingletonTarget{target: target}
}

// Target implements TargetProvider
func (s *SingletonTarget) Target() (any, error) {
	return s.target, nil
}

// TargetType implements TargetProvider
func (s *SingletonTarget) TargetType() reflect.Type {
	return reflect.TypeOf(s.target)
}

// IsStatic implements TargetProvider
func (s *SingletonTarget) IsStatic() bool {
	return true
}

// FuncTarget is a TargetProvider producing a target per call
type FuncTarget struct {
	targetType reflect.Type
	fn         func() (any, error)
}

// NewFuncTarget creates a provider that calls fn for every target request
func NewFuncTarget(targetType reflect.Type, fn func() (any, error)) *FuncTarget {
	return &FuncTarget{targetType: targetType, fn: fn}
}

// Target implements TargetProvider
func (f *FuncTarget) Target() (any, error) {
	return f.fn()
}

// TargetType implements TargetProvider
func (f *FuncTarget) TargetType() reflect.Type {
	return f.targetType
}

// IsStatic implements TargetProvider
func (f *FuncTarget) IsStatic() bool {
	return false
}

// TargetProviderCreator supplies custom providers for selected objects. When
// a creator matches, the registry builds the wrapper eagerly at
// pre-construction and the normal construction pipeline is short-circuited
// for that object.
type TargetProviderCreator interface {
	// ProviderFor returns a provider for the given type and name, or nil when
	// the creator does not apply
	ProviderFor(t reflect.Type, name string) TargetProvider
}

// TargetProviderCreatorFunc is a function adapter for TargetProviderCreator
type TargetProviderCreatorFunc func(t reflect.Type, name string) TargetProvider

// ProviderFor implements TargetProviderCreator
func (f TargetProviderCreatorFunc) ProviderFor(t reflect.Type, name string) TargetProvider {
	return f(t, name)
}
