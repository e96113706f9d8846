package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ConfigureFunc is a resource module's entry point. It registers the
// module's service and resource-scoped hooks on r.
type ConfigureFunc func(r *Registry) error

type registration struct {
	path  string
	svc   any
	hooks Hooks
}

// Registry collects services and hooks during start-up. It is not safe
// for concurrent use; Build freezes it.
type Registry struct {
	log      *zap.Logger
	global   Hooks
	services map[string]*registration
	order    []string
	frozen   bool
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		log:      logger,
		global:   Hooks{Before: HookMap{}, After: HookMap{}},
		services: make(map[string]*registration),
	}
}

// Logger returns the registry's logger for modules to derive from.
func (r *Registry) Logger() *zap.Logger {
	return r.log
}

// RegisterGlobalHook adds h to every service for the given phase and
// method (MethodAll for every method).
func (r *Registry) RegisterGlobalHook(phase Phase, method Method, h Hook) error {
	var hooks Hooks
	switch phase {
	case PhaseBefore:
		hooks.Before = HookMap{method: {h}}
	case PhaseAfter:
		hooks.After = HookMap{method: {h}}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	return r.Hooks(hooks)
}

// AddBeforeAllHook adds h in front of every method of every service.
func (r *Registry) AddBeforeAllHook(h Hook) error {
	return r.RegisterGlobalHook(PhaseBefore, MethodAll, h)
}

// Hooks appends global hooks.
func (r *Registry) Hooks(h Hooks) error {
	if r.frozen {
		return ErrFrozen
	}
	if err := h.validate(); err != nil {
		return err
	}
	r.global = r.global.merge(h)
	return nil
}

// RegisterResource runs a module's configuration function against r.
func (r *Registry) RegisterResource(fn ConfigureFunc) error {
	if r.frozen {
		return ErrFrozen
	}
	return fn(r)
}

// Use registers svc at path with optional resource-scoped hooks.
func (r *Registry) Use(path string, svc any, hooks ...Hooks) error {
	if r.frozen {
		return ErrFrozen
	}
	path = cleanPath(path)
	if path == "" {
		return ErrEmptyPath
	}
	if _, dup := r.services[path]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	methods := implemented(svc)
	if len(methods) == 0 {
		return fmt.Errorf("%w: %s", ErrNoMethods, path)
	}

	reg := &registration{path: path, svc: svc, hooks: Hooks{Before: HookMap{}, After: HookMap{}}}
	for _, h := range hooks {
		if err := h.validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		reg.hooks = reg.hooks.merge(h)
	}
	r.services[path] = reg
	r.order = append(r.order, path)

	r.log.Info("service registered",
		zap.String("path", path),
		zap.Strings("methods", methodNames(methods)))
	return nil
}

// ServiceHooks appends resource-scoped hooks to an already registered path.
func (r *Registry) ServiceHooks(path string, h Hooks) error {
	if r.frozen {
		return ErrFrozen
	}
	reg, ok := r.services[cleanPath(path)]
	if !ok {
		return fmt.Errorf("no service registered at %q", path)
	}
	if err := h.validate(); err != nil {
		return err
	}
	reg.hooks = reg.hooks.merge(h)
	return nil
}

// Build composes every chain and freezes the registry.
func (r *Registry) Build() (*App, error) {
	if r.frozen {
		return nil, ErrFrozen
	}
	r.frozen = true

	app := &App{
		log:      r.log,
		paths:    append([]string(nil), r.order...),
		services: make(map[string]*endpoint, len(r.services)),
	}
	for _, path := range r.order {
		reg := r.services[path]
		ep := &endpoint{path: path, chains: make(map[Method]*chain)}
		for _, m := range implemented(reg.svc) {
			ep.chains[m] = &chain{
				before: concat(r.global.Before.For(m), reg.hooks.Before.For(m)),
				after:  concat(reg.hooks.After.For(m), r.global.After.For(m)),
				handle: handlerFor(reg.svc, m),
			}
		}
		app.services[path] = ep
	}
	return app, nil
}

// Configure installs the global before-all hooks, registers each module in
// the given order and builds the App.
func Configure(logger *zap.Logger, globalBefore []Hook, modules ...ConfigureFunc) (*App, error) {
	r := NewRegistry(logger)
	for _, h := range globalBefore {
		if err := r.AddBeforeAllHook(h); err != nil {
			return nil, err
		}
	}
	for _, fn := range modules {
		if err := r.RegisterResource(fn); err != nil {
			return nil, err
		}
	}
	return r.Build()
}

func cleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

func concat(a, b []Hook) []Hook {
	out := make([]Hook, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func methodNames(ms []Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}
