// Copyright 2025 Weave Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weave

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/glimte/weave-go/interception"
	"github.com/glimte/weave-go/proxy"
	"github.com/glimte/weave-go/routing"
)

// Container provides the main entry point for weave-go: it wires the chain
// builder, the proxy registry and a path-keyed dispatcher into one unit with
// explicit, process-long lifetime. All state lives on the container; there
// are no ambient singletons.
type Container struct {
	builder    *interception.ChainBuilder
	proxies    *proxy.Registry
	mappings   *routing.MappingRegistry[routing.PathKey]
	dispatcher *routing.Dispatcher[routing.PathKey]
	logger     *slog.Logger
}

// containerConfig holds container configuration
type containerConfig struct {
	logger           *slog.Logger
	rules            []interception.Rule
	globalBehaviors  []string
	behaviorResolver interception.Resolver
	applyGlobalFirst bool
	preFiltered      bool
	providerCreators []proxy.TargetProviderCreator
	instanceResolver routing.InstanceResolver
	skip             proxy.SkipFunc
}

// ContainerOption configures the container
type ContainerOption func(*containerConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithRules adds interception rules
func WithRules(rules ...interception.Rule) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.rules = append(cfg.rules, rules...)
	}
}

// WithGlobalBehaviors configures globally applied behaviors, resolved by
// name through the given resolver at chain-build time
func WithGlobalBehaviors(resolver interception.Resolver, names ...string) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.behaviorResolver = resolver
		cfg.globalBehaviors = append(cfg.globalBehaviors, names...)
	}
}

// WithApplyGlobalFirst makes global behaviors precede rule-sourced ones
func WithApplyGlobalFirst(first bool) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.applyGlobalFirst = first
	}
}

// WithPreFilteredRules marks the configured rules as pre-matched to every
// target the container builds chains for
func WithPreFilteredRules(preFiltered bool) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.preFiltered = preFiltered
	}
}

// WithTargetProviderCreators registers custom target provider creators
func WithTargetProviderCreators(creators ...proxy.TargetProviderCreator) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.providerCreators = append(cfg.providerCreators, creators...)
	}
}

// WithInstanceResolver sets the resolver used for by-name handler references
func WithInstanceResolver(resolver routing.InstanceResolver) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.instanceResolver = resolver
	}
}

// WithSkipFunc excludes objects from wrapping before rule evaluation
func WithSkipFunc(skip proxy.SkipFunc) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.skip = skip
	}
}

// NewContainer creates a new container
func NewContainer(options ...ContainerOption) *Container {
	cfg := &containerConfig{
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(cfg)
	}

	builder := interception.NewChainBuilder(
		interception.WithRules(cfg.rules...),
		interception.WithGlobalBehaviors(cfg.globalBehaviors...),
		interception.WithResolver(cfg.behaviorResolver),
		interception.WithApplyGlobalFirst(cfg.applyGlobalFirst),
		interception.WithPreFiltered(cfg.preFiltered),
		interception.WithBuilderLogger(cfg.logger),
	)

	proxies := proxy.NewRegistry(builder,
		proxy.WithTargetProviderCreators(cfg.providerCreators...),
		proxy.WithSkipFunc(cfg.skip),
		proxy.WithRegistryLogger(cfg.logger),
	)

	mappings := routing.NewMappingRegistry[routing.PathKey](
		routing.WithMappingLogger[routing.PathKey](cfg.logger),
		routing.WithInstanceResolver[routing.PathKey](cfg.instanceResolver),
	)

	dispatcher := routing.NewDispatcher(mappings,
		routing.WithDispatcherLogger[routing.PathKey](cfg.logger),
	)

	return &Container{
		builder:    builder,
		proxies:    proxies,
		mappings:   mappings,
		dispatcher: dispatcher,
		logger:     cfg.logger,
	}
}

// ChainBuilder returns the chain builder
func (c *Container) ChainBuilder() *interception.ChainBuilder {
	return c.builder
}

// Proxies returns the proxy registry
func (c *Container) Proxies() *proxy.Registry {
	return c.proxies
}

// Mappings returns the handler mapping registry
func (c *Container) Mappings() *routing.MappingRegistry[routing.PathKey] {
	return c.mappings
}

// Dispatcher returns the request dispatcher
func (c *Container) Dispatcher() *routing.Dispatcher[routing.PathKey] {
	return c.dispatcher
}

// Construction pipeline hooks, delegated to the proxy registry

// OnPreConstruction is called before normal instantiation of (type, name);
// a non-nil result short-circuits construction entirely
func (c *Container) OnPreConstruction(t reflect.Type, name string) (any, error) {
	return c.proxies.OnPreConstruction(t, name)
}

// OnEarlyExposure is called when a dependency cycle forces premature
// visibility of a not-fully-populated instance
func (c *Container) OnEarlyExposure(obj any, name string) (any, error) {
	return c.proxies.OnEarlyExposure(obj, name)
}

// OnPostInitialization is called after population and initialization
// complete; the returned value is the original instance or its wrapper
func (c *Container) OnPostInitialization(obj any, name string) (any, error) {
	return c.proxies.OnPostInitialization(obj, name)
}

// RegisterMapping maps verb+pattern to the named method on the referenced
// owner. Mappings may be registered and removed at any time after setup.
func (c *Container) RegisterMapping(verb, pattern string, ref routing.HandlerRef, method string, options ...routing.RegisterOption) error {
	return c.mappings.Register(routing.NewPathKey(verb, pattern), ref, method, options...)
}

// UnregisterMapping removes the mapping for verb+pattern
func (c *Container) UnregisterMapping(verb, pattern string) {
	c.mappings.Unregister(routing.NewPathKey(verb, pattern))
}

// Dispatch resolves the request to a handler and calls it with the given
// arguments. Calls on wrapped owners run through their behavior chains.
func (c *Container) Dispatch(ctx context.Context, req *routing.Request, args ...any) (any, error) {
	ctx, handler, err := c.dispatcher.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return handler.Call(ctx, args...)
}
