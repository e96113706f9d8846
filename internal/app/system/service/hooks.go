package service

import "context"

// Hook is one step of a chain. It may mutate hc; returning an error ends
// the call.
type Hook interface {
	Run(ctx context.Context, hc *Context) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, hc *Context) error

func (f HookFunc) Run(ctx context.Context, hc *Context) error {
	return f(ctx, hc)
}

// HookMap maps a method, or MethodAll, to its ordered hooks.
type HookMap map[Method][]Hook

// Hooks groups the before and after hook maps of one scope.
type Hooks struct {
	Before HookMap
	After  HookMap
}

// For returns the hooks that apply to method: MethodAll entries first.
func (m HookMap) For(method Method) []Hook {
	out := make([]Hook, 0, len(m[MethodAll])+len(m[method]))
	out = append(out, m[MethodAll]...)
	return append(out, m[method]...)
}

func (m HookMap) merge(other HookMap) HookMap {
	if m == nil {
		m = make(HookMap)
	}
	for method, hooks := range other {
		m[method] = append(m[method], hooks...)
	}
	return m
}

func (h Hooks) merge(other Hooks) Hooks {
	return Hooks{
		Before: h.Before.merge(other.Before),
		After:  h.After.merge(other.After),
	}
}

func (h Hooks) validate() error {
	for _, m := range []HookMap{h.Before, h.After} {
		for method, hooks := range m {
			if method != MethodAll && !method.Valid() {
				return errInvalidMethod(method)
			}
			for _, hk := range hooks {
				if hk == nil {
					return ErrNilHook
				}
			}
		}
	}
	return nil
}

// When runs hooks only for calls matching pred.
func When(pred func(hc *Context) bool, hooks ...Hook) Hook {
	return HookFunc(func(ctx context.Context, hc *Context) error {
		if !pred(hc) {
			return nil
		}
		for _, h := range hooks {
			if err := h.Run(ctx, hc); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsExternal matches calls made through a transport.
func IsExternal(hc *Context) bool {
	return hc.Params.External()
}
